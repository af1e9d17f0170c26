package server

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func dialLocation(t *testing.T, ts *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	u := "ws" + strings.TrimPrefix(ts.URL, "http") + "/v1/location" + query
	conn, resp, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	resp.Body.Close()
	return conn
}

func readMsg(t *testing.T, conn *websocket.Conn) ServerMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg ServerMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func waitSessions(t *testing.T, s *Server, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return s.SessionCount() == n }, 5*time.Second, 10*time.Millisecond)
}

func TestLocationSession(t *testing.T) {
	s := newTestServer(t)
	ts := httptest.NewServer(s)
	defer ts.Close()

	conn := dialLocation(t, ts, "?path=/search/")
	defer conn.Close()

	first := readMsg(t, conn)
	require.Equal(t, MsgLocation, first.Type)
	require.Equal(t, "/search", first.URL)
	require.NotEmpty(t, first.Session)
	require.Equal(t, 1, first.Length)
	waitSessions(t, s, 1)

	steps := []struct {
		send   string
		url    string
		index  int
		length int
	}{
		{`{"type":"set","key":"q","value":"go","mode":"replace"}`, "/search?q=go", 0, 1},
		{`{"type":"set","key":"page","value":"2"}`, "/search?q=go&page=2", 1, 2},
		{`{"type":"set","key":"tag","value":["a","b"],"mode":"replace"}`, "/search?q=go&page=2&tag=a&tag=b", 1, 2},
		{`{"type":"delete","key":"page","mode":"replace"}`, "/search?q=go&tag=a&tag=b", 1, 2},
		{`{"type":"hash","value":"results","mode":"replace"}`, "/search?q=go&tag=a&tag=b#results", 1, 2},
		{`{"type":"back"}`, "/search?q=go", 0, 2},
		{`{"type":"forward"}`, "/search?q=go&tag=a&tag=b#results", 1, 2},
		{`{"type":"navigate","url":"/docs/./intro?lang=en"}`, "/docs/intro?lang=en", 2, 3},
	}
	for _, step := range steps {
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(step.send)))
		msg := readMsg(t, conn)
		require.Equal(t, MsgLocation, msg.Type, step.send)
		require.Equal(t, step.url, msg.URL, step.send)
		require.Equal(t, step.index, msg.Index, step.send)
		require.Equal(t, step.length, msg.Length, step.send)
		require.Equal(t, first.Session, msg.Session)
	}

	last := readMsgAfter(t, conn, `{"type":"hash","value":"top","mode":"replace"}`)
	require.NotNil(t, last.Segments)
	require.Equal(t, "/docs/intro", last.Segments.Pathname)
	require.Equal(t, "top", last.Segments.Hash)
	require.Equal(t, "replace", last.Mode)
}

func readMsgAfter(t *testing.T, conn *websocket.Conn, send string) ServerMessage {
	t.Helper()
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(send)))
	return readMsg(t, conn)
}

func TestLocationErrors(t *testing.T) {
	s := newTestServer(t)
	ts := httptest.NewServer(s)
	defer ts.Close()

	conn := dialLocation(t, ts, "")
	defer conn.Close()
	require.Equal(t, "/", readMsg(t, conn).URL)

	tests := []struct {
		send string
		code string
	}{
		{`{"type":"back"}`, "U004"},
		{`{"type":"forward"}`, "U004"},
		{`{"type":"navigate","url":"https://evil.example/"}`, "U003"},
		{`{"type":"navigate","url":"/a/../../b"}`, "U003"},
		{`{"type":"navigate"}`, "U042"},
		{`{"type":"set","value":"x"}`, "U042"},
		{`{"type":"set","key":"a","value":5}`, "U002"},
		{`{"type":"hash","value":7}`, "U042"},
		{`{"type":"jump"}`, "U042"},
		{`not json`, "U042"},
	}
	for _, tt := range tests {
		msg := readMsgAfter(t, conn, tt.send)
		require.Equal(t, MsgError, msg.Type, tt.send)
		require.NotNil(t, msg.Error, tt.send)
		require.Equal(t, tt.code, msg.Error.Code, tt.send)
	}

	// The session survives errors.
	msg := readMsgAfter(t, conn, `{"type":"set","key":"ok","value":"1"}`)
	require.Equal(t, "/?ok=1", msg.URL)
}

func TestLocationRejectsBadStartPath(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/v1/location?path="+"%2F%2Fevil.example", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "U003")
}

func TestLocationDebounce(t *testing.T) {
	s := newTestServer(t, func(c *Config) { c.HistoryDebounce = 100 * time.Millisecond })
	ts := httptest.NewServer(s)
	defer ts.Close()

	conn := dialLocation(t, ts, "?path=/s")
	defer conn.Close()
	readMsg(t, conn)

	for _, q := range []string{"g", "go", "gol", "golang"} {
		require.NoError(t, conn.WriteMessage(websocket.TextMessage,
			[]byte(`{"type":"set","key":"q","value":"`+q+`","mode":"replace"}`)))
	}
	msg := readMsg(t, conn)
	require.Equal(t, "/s?q=golang", msg.URL)
}

func TestSessionsClosedOnDisconnect(t *testing.T) {
	s := newTestServer(t)
	ts := httptest.NewServer(s)
	defer ts.Close()

	a := dialLocation(t, ts, "")
	b := dialLocation(t, ts, "")
	readMsg(t, a)
	readMsg(t, b)
	waitSessions(t, s, 2)

	a.Close()
	waitSessions(t, s, 1)
	b.Close()
	waitSessions(t, s, 0)
}

func TestListenAndServeShutdown(t *testing.T) {
	s := newTestServer(t, func(c *Config) { c.Address = "127.0.0.1:0" })

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	var resp *http.Response
	require.Eventually(t, func() bool {
		resp, err = http.Get("http://" + addr + "/healthz")
		return err == nil
	}, 5*time.Second, 10*time.Millisecond)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+addr+"/v1/location", nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var hello ServerMessage
	require.NoError(t, conn.ReadJSON(&hello))

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}

	// The session received a going-away close frame.
	_, _, err = conn.ReadMessage()
	require.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "err = %v", err)
	waitSessions(t, s, 0)
	http.DefaultClient.CloseIdleConnections()
}

func TestListenAndServeBadAddress(t *testing.T) {
	s := newTestServer(t, func(c *Config) { c.Address = "256.0.0.1:99999" })
	err := s.ListenAndServe(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "U040")
}
