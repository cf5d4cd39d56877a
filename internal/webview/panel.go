package webview

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sharext-labs/sharext/internal/log"
	"github.com/sharext-labs/sharext/internal/viewer"
)

// Panel is one open view. It implements viewer.Surface.
type Panel struct {
	server   *Server
	handlers viewer.Handlers

	mu       sync.Mutex
	page     []byte
	clients  map[*websocket.Conn]bool
	disposed bool
	revealed bool
	expiry   *time.Timer

	// writeMu serializes writes; a websocket connection allows one writer.
	writeMu sync.Mutex
}

func newPanel(s *Server, h viewer.Handlers) *Panel {
	return &Panel{
		server:   s,
		handlers: h,
		clients:  make(map[*websocket.Conn]bool),
	}
}

// Render replaces the page and tells connected tabs to reload. The first
// render reveals the page through the server's reveal hook.
func (p *Panel) Render(ctx context.Context, page viewer.Page) error {
	html, err := renderPage(page)
	if err != nil {
		return err
	}

	p.mu.Lock()
	if p.disposed {
		p.mu.Unlock()
		return nil
	}
	p.page = html
	reveal := !p.revealed
	p.revealed = true
	conns := p.connsLocked()
	p.mu.Unlock()

	p.broadcast(conns, noticeReload)

	if reveal && p.server.reveal != nil {
		url := p.server.URL()
		if err := p.server.reveal(url); err != nil {
			log.Warn().Err(err).Str("url", url).Msg("could not open the view, browse to it manually")
		}
	}
	return nil
}

// Dispose closes the panel and every tab showing it. It does not report a
// dismissal.
func (p *Panel) Dispose() error {
	p.mu.Lock()
	if p.disposed {
		p.mu.Unlock()
		return nil
	}
	p.disposed = true
	p.stopExpiryLocked()
	conns := p.connsLocked()
	clear(p.clients)
	p.mu.Unlock()

	p.server.detach(p)
	p.broadcast(conns, noticeDispose)
	for _, c := range conns {
		c.Close()
	}
	return nil
}

func (p *Panel) html() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.page
}

// addClient registers a tab. It returns false once the panel is disposed.
func (p *Panel) addClient(conn *websocket.Conn) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.disposed {
		return false
	}
	p.stopExpiryLocked()
	p.clients[conn] = true
	return true
}

// removeClient forgets a tab and arms the dismissal timer when it was the
// last one.
func (p *Panel) removeClient(conn *websocket.Conn) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.clients, conn)
	if p.disposed || len(p.clients) > 0 {
		return
	}
	p.stopExpiryLocked()
	p.expiry = time.AfterFunc(p.server.grace, p.expire)
}

// expire reports a dismissal unless a tab reconnected in the meantime.
func (p *Panel) expire() {
	p.mu.Lock()
	if p.disposed || len(p.clients) > 0 {
		p.mu.Unlock()
		return
	}
	p.disposed = true
	p.expiry = nil
	p.mu.Unlock()

	p.server.detach(p)
	log.Debug().Msg("all view tabs closed")
	if p.handlers.OnDispose != nil {
		p.handlers.OnDispose()
	}
}

func (p *Panel) forward(ctx context.Context, msg viewer.Message) {
	p.mu.Lock()
	disposed := p.disposed
	p.mu.Unlock()
	if disposed || p.handlers.OnMessage == nil {
		return
	}
	p.handlers.OnMessage(ctx, msg)
}

func (p *Panel) stopExpiryLocked() {
	if p.expiry != nil {
		p.expiry.Stop()
		p.expiry = nil
	}
}

func (p *Panel) connsLocked() []*websocket.Conn {
	conns := make([]*websocket.Conn, 0, len(p.clients))
	for c := range p.clients {
		conns = append(conns, c)
	}
	return conns
}

func (p *Panel) broadcast(conns []*websocket.Conn, n notice) {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	for _, c := range conns {
		if err := writeNotice(c, n); err != nil {
			log.Debug().Err(err).Str("type", n.Type).Str("remote", c.RemoteAddr().String()).Msg("dropping view tab")
			c.Close()
		}
	}
}
