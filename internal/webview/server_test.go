package webview

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sharext-labs/sharext/internal/extension"
	"github.com/sharext-labs/sharext/internal/viewer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu        sync.Mutex
	messages  []viewer.Message
	dismissed atomic.Int32
}

func (r *recorder) handlers() viewer.Handlers {
	return viewer.Handlers{
		OnMessage: func(ctx context.Context, msg viewer.Message) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.messages = append(r.messages, msg)
		},
		OnDispose: func() { r.dismissed.Add(1) },
	}
}

func (r *recorder) received() []viewer.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]viewer.Message(nil), r.messages...)
}

func startTestServer(t *testing.T, opts ...Option) (*Server, *httptest.Server) {
	t.Helper()
	s := NewServer("127.0.0.1:0", opts...)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func getPage(t *testing.T, ts *httptest.Server) string {
	t.Helper()
	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func clientCount(p *Panel) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.clients)
}

func readNotice(t *testing.T, conn *websocket.Conn) notice {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var n notice
	require.NoError(t, conn.ReadJSON(&n))
	return n
}

func openPanel(t *testing.T, s *Server, rec *recorder) *Panel {
	t.Helper()
	surface, err := s.Open(rec.handlers())
	require.NoError(t, err)
	return surface.(*Panel)
}

func samplePage() viewer.Page {
	return viewer.Page{
		Title:  "Extensions Viewer | team",
		Source: "/work/team.sharext.json",
		Records: []extension.Record{
			extension.Record{
				ID:          "pub.alpha",
				Name:        "Alpha",
				Author:      "Pub",
				Description: "uses <b>tags</b>",
				IconSource:  "https://cdn.example.com/alpha.png",
			}.WithInstalled(true),
			extension.Record{ID: "pub.zeta", Name: "Zeta", Author: "Pub"}.WithInstalled(false),
		},
		Problems: []string{"record 2 is malformed: missing property 'id'"},
	}
}

func TestPageWithoutPanel(t *testing.T) {
	_, ts := startTestServer(t)
	assert.Contains(t, getPage(t, ts), "No extension list is open")
}

func TestRenderServesPage(t *testing.T) {
	s, ts := startTestServer(t)
	p := openPanel(t, s, &recorder{})

	require.NoError(t, p.Render(context.Background(), samplePage()))

	body := getPage(t, ts)
	assert.Contains(t, body, "<title>Extensions Viewer | team</title>")
	assert.Contains(t, body, "Alpha")
	assert.Contains(t, body, "uses &lt;b&gt;tags&lt;/b&gt;")
	assert.Contains(t, body, `src="https://cdn.example.com/alpha.png"`)
	assert.Contains(t, body, "record 2 is malformed")
	assert.Contains(t, body, `data-command="installExtension" data-id="pub.zeta"`)
	assert.NotContains(t, body, `data-command="installExtension" data-id="pub.alpha"`)
	assert.Less(t, strings.Index(body, "Alpha"), strings.Index(body, "Zeta"))
}

func TestRenderEmptyList(t *testing.T) {
	s, ts := startTestServer(t)
	p := openPanel(t, s, &recorder{})

	require.NoError(t, p.Render(context.Background(), viewer.Page{Title: "Extensions Viewer | empty"}))

	assert.Contains(t, getPage(t, ts), "This list has no extensions.")
}

func TestIconURLRejectsScripts(t *testing.T) {
	assert.Empty(t, string(iconURL("javascript:alert(1)")))
	assert.Empty(t, string(iconURL("")))
	assert.Equal(t, "https://x/y.png", string(iconURL("https://x/y.png")))
}

func TestOpenWhileOpen(t *testing.T) {
	s, _ := startTestServer(t)
	openPanel(t, s, &recorder{})

	_, err := s.Open(viewer.Handlers{})
	assert.ErrorIs(t, err, ErrPanelOpen)
}

func TestRenderNotifiesTabs(t *testing.T) {
	s, ts := startTestServer(t)
	p := openPanel(t, s, &recorder{})
	conn := dial(t, ts)
	require.Eventually(t, func() bool { return clientCount(p) == 1 }, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, p.Render(context.Background(), samplePage()))

	assert.Equal(t, noticeReload, readNotice(t, conn))
}

func TestMessagesForwarded(t *testing.T) {
	s, ts := startTestServer(t)
	rec := &recorder{}
	openPanel(t, s, rec)
	conn := dial(t, ts)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	require.NoError(t, conn.WriteJSON(viewer.Message{Command: viewer.CommandOpen, ID: "pub.alpha"}))
	require.NoError(t, conn.WriteJSON(viewer.Message{Command: viewer.CommandInstall, ID: "pub.zeta"}))

	require.Eventually(t, func() bool { return len(rec.received()) == 2 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, []viewer.Message{
		{Command: viewer.CommandOpen, ID: "pub.alpha"},
		{Command: viewer.CommandInstall, ID: "pub.zeta"},
	}, rec.received())
}

func TestDisposeClosesTabs(t *testing.T) {
	s, ts := startTestServer(t)
	rec := &recorder{}
	p := openPanel(t, s, rec)
	require.NoError(t, p.Render(context.Background(), samplePage()))
	conn := dial(t, ts)
	require.Eventually(t, func() bool { return clientCount(p) == 1 }, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, p.Dispose())

	assert.Equal(t, noticeDispose, readNotice(t, conn))
	assert.Contains(t, getPage(t, ts), "No extension list is open")
	assert.Zero(t, rec.dismissed.Load(), "Dispose is not a user dismissal")

	require.NoError(t, p.Render(context.Background(), samplePage()), "render after dispose is a no-op")
	assert.Contains(t, getPage(t, ts), "No extension list is open")
	require.NoError(t, p.Dispose())

	_, err := s.Open(viewer.Handlers{})
	assert.NoError(t, err)
}

func TestSocketWithoutPanel(t *testing.T) {
	_, ts := startTestServer(t)
	conn := dial(t, ts)
	assert.Equal(t, noticeDispose, readNotice(t, conn))
}

func TestLastTabClosedDismisses(t *testing.T) {
	s, ts := startTestServer(t, WithGracePeriod(20*time.Millisecond))
	rec := &recorder{}
	p := openPanel(t, s, rec)
	conn := dial(t, ts)
	require.Eventually(t, func() bool { return clientCount(p) == 1 }, 2*time.Second, 5*time.Millisecond)

	conn.Close()

	require.Eventually(t, func() bool { return rec.dismissed.Load() == 1 }, 2*time.Second, 5*time.Millisecond)
	assert.Nil(t, s.current())
	require.NoError(t, p.Render(context.Background(), samplePage()))
	assert.Nil(t, p.html())
}

func TestRemainingTabKeepsPanel(t *testing.T) {
	s, ts := startTestServer(t, WithGracePeriod(20*time.Millisecond))
	rec := &recorder{}
	p := openPanel(t, s, rec)
	first := dial(t, ts)
	dial(t, ts)
	require.Eventually(t, func() bool { return clientCount(p) == 2 }, 2*time.Second, 5*time.Millisecond)

	first.Close()
	require.Eventually(t, func() bool { return clientCount(p) == 1 }, 2*time.Second, 5*time.Millisecond)
	time.Sleep(100 * time.Millisecond)

	assert.Zero(t, rec.dismissed.Load())
	assert.Same(t, p, s.current())
}

func TestRevealOnFirstRender(t *testing.T) {
	var mu sync.Mutex
	var revealed []string
	s := NewServer("127.0.0.1:0", WithReveal(func(url string) error {
		mu.Lock()
		defer mu.Unlock()
		revealed = append(revealed, url)
		return nil
	}))
	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(func() { s.Shutdown(context.Background()) })

	p := openPanel(t, s, &recorder{})
	require.NoError(t, p.Render(context.Background(), samplePage()))
	require.NoError(t, p.Render(context.Background(), samplePage()))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, revealed, 1)
	assert.Equal(t, s.URL(), revealed[0])
	assert.True(t, strings.HasPrefix(s.URL(), "http://127.0.0.1:"))
}
