package devserver

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/adnsv/sitepipe/logging"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func newTestSite(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "css"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "index.html"),
		[]byte("<html><body><h1>hi</h1></body></html>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "css", "main.min.css"),
		[]byte("h1{color:red}"), 0o644))
	return root
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	resp, err := client.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestInjectClient(t *testing.T) {
	out := string(InjectClient([]byte("<html><BODY>x</BODY></html>")))
	assert.Equal(t, `<html><BODY>x<script async src="/__sitepipe/client.js"></script></BODY></html>`, out)

	out = string(InjectClient([]byte("<p>fragment</p>")))
	assert.True(t, strings.HasSuffix(out, string(clientSnippet)))
}

func TestServeFiles(t *testing.T) {
	root := newTestSite(t)
	hub := NewHub(logging.Discard())
	defer hub.Close()
	ts := httptest.NewServer(New(Options{Root: root}, hub, logging.Discard()).Handler())
	defer ts.Close()

	code, body := get(t, ts.URL+"/")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "<h1>hi</h1>"+string(clientSnippet)+"</body>")

	code, body = get(t, ts.URL+"/css/main.min.css")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "h1{color:red}", body)

	code, body = get(t, ts.URL+clientPath)
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "/__sitepipe/ws")

	code, _ = get(t, ts.URL+"/missing.html")
	assert.Equal(t, http.StatusNotFound, code)
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, buf, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg Message
	require.NoError(t, json.Unmarshal(buf, &msg))
	return msg
}

func TestHubBroadcastsReload(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	hub := NewHub(logging.Discard())
	ts := httptest.NewServer(New(Options{Root: newTestSite(t)}, hub, logging.Discard()).Handler())
	defer ts.Close()

	// no clients, nothing to deliver
	hub.Reload("index.html")

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+wsPath, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	hub.Reload("css/main.min.css")
	msg := readMessage(t, conn)
	assert.Equal(t, "reload", msg.Command)
	assert.True(t, msg.CSS)
	assert.Equal(t, []string{"css/main.min.css"}, msg.Paths)

	hub.Reload("css/main.min.css", "js/main.min.js")
	msg = readMessage(t, conn)
	assert.False(t, msg.CSS)

	hub.Reload()
	msg = readMessage(t, conn)
	assert.False(t, msg.CSS, "a bare reload refreshes the page")

	hub.Close()
	assert.Equal(t, 0, hub.Clients())
	hub.Reload("index.html")
}

func TestRunStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	hub := NewHub(logging.Discard())
	srv := New(Options{Host: "127.0.0.1", Port: 0, Root: t.TempDir()}, hub, logging.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
