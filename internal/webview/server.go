package webview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/sharext-labs/sharext/internal/log"
	"github.com/sharext-labs/sharext/internal/viewer"
)

// DefaultGracePeriod is how long a panel waits for a browser tab to
// reconnect before treating the view as dismissed.
const DefaultGracePeriod = 3 * time.Second

// ErrPanelOpen is returned by Open while another panel is still showing.
var ErrPanelOpen = errors.New("a view panel is already open")

// notice is pushed from the server to the page.
type notice struct {
	Type string `json:"type"`
}

var (
	noticeReload  = notice{Type: "reload"}
	noticeDispose = notice{Type: "dispose"}
)

// Option configures a Server.
type Option func(*Server)

// WithGracePeriod sets how long a panel without browser tabs stays open.
func WithGracePeriod(d time.Duration) Option {
	return func(s *Server) { s.grace = d }
}

// WithReveal sets a hook that is called with the page URL the first time a
// panel is rendered, typically to open a browser tab.
func WithReveal(fn func(url string) error) Option {
	return func(s *Server) { s.reveal = fn }
}

// Server serves the current panel over HTTP.
type Server struct {
	addr     string
	grace    time.Duration
	reveal   func(url string) error
	upgrader websocket.Upgrader
	router   chi.Router

	mu      sync.Mutex
	panel   *Panel
	url     string
	httpSrv *http.Server
	baseCtx context.Context
}

// NewServer returns a server that will listen on addr once started.
func NewServer(addr string, opts ...Option) *Server {
	s := &Server{
		addr:  addr,
		grace: DefaultGracePeriod,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		baseCtx: context.Background(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(middleware.NoCache)
	r.Get("/", s.handlePage)
	r.Get("/ws", s.handleSocket)
	s.router = r
	return s
}

// Handler returns the HTTP handler, for embedding or tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on the configured address and serves in the background.
// ctx is passed to message handlers for actions requested by the page.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.addr, err)
	}

	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.mu.Lock()
	s.httpSrv = srv
	s.url = "http://" + ln.Addr().String() + "/"
	s.baseCtx = ctx
	s.mu.Unlock()

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("view server stopped")
		}
	}()
	log.Info().Str("url", s.URL()).Msg("view server listening")
	return nil
}

// URL returns the page address, or "" before Start.
func (s *Server) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.url
}

// Shutdown disposes any open panel and stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	panel := s.panel
	srv := s.httpSrv
	s.mu.Unlock()

	if panel != nil {
		panel.Dispose()
	}
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// Open creates the panel that GET / will show. It satisfies viewer.Opener.
func (s *Server) Open(h viewer.Handlers) (viewer.Surface, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.panel != nil {
		return nil, ErrPanelOpen
	}
	s.panel = newPanel(s, h)
	return s.panel, nil
}

func (s *Server) current() *Panel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.panel
}

func (s *Server) baseContext() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.baseCtx
}

// detach forgets p if it is still the current panel.
func (s *Server) detach(p *Panel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.panel == p {
		s.panel = nil
	}
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	body := closedPage
	if p := s.current(); p != nil {
		if html := p.html(); html != nil {
			body = html
		}
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(body)
}

func (s *Server) handleSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}

	p := s.current()
	if p == nil || !p.addClient(conn) {
		writeNotice(conn, noticeDispose)
		conn.Close()
		return
	}
	defer func() {
		p.removeClient(conn)
		conn.Close()
	}()

	ctx := s.baseContext()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg viewer.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Warn().Err(err).Msg("ignoring malformed view message")
			continue
		}
		p.forward(ctx, msg)
	}
}

func writeNotice(conn *websocket.Conn, n notice) error {
	conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteJSON(n)
}

// requestLogger logs each request at debug level.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("view request")
	})
}
