package hub

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	ws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testHub wires a Hub into a test HTTP server the way the real /ws
// handler does: upgrade, register, read until error, unregister.
func testHub(t *testing.T) (*Hub, func() *ws.Conn) {
	t.Helper()

	h := New()
	t.Cleanup(h.Close)

	upgrader := ws.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		h.Register(conn)

		go func() {
			defer h.Unregister(conn)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					break
				}
			}
		}()
	}))
	t.Cleanup(server.Close)

	dial := func() *ws.Conn {
		t.Helper()
		url := "ws" + strings.TrimPrefix(server.URL, "http")
		conn, _, err := ws.DefaultDialer.Dial(url, nil)
		require.NoError(t, err)
		t.Cleanup(func() { conn.Close() })
		return conn
	}

	return h, dial
}

func waitForLen(h *Hub, expected int) bool {
	for range 100 {
		if h.Len() == expected {
			return true
		}
		time.Sleep(time.Millisecond)
	}
	return false
}

func TestNotifyAllDeliversToEveryClient(t *testing.T) {
	h, dial := testHub(t)

	conn1 := dial()
	conn2 := dial()
	require.True(t, waitForLen(h, 2))

	h.NotifyAll()

	for _, conn := range []*ws.Conn{conn1, conn2} {
		conn.SetReadDeadline(time.Now().Add(time.Second))
		kind, msg, err := conn.ReadMessage()
		require.NoError(t, err)
		assert.Equal(t, ws.TextMessage, kind)
		assert.Equal(t, "update", string(msg))
	}
}

func TestLateClientMissesEarlierNotify(t *testing.T) {
	h, dial := testHub(t)

	conn1 := dial()
	require.True(t, waitForLen(h, 1))

	h.NotifyAll()

	late := dial()
	require.True(t, waitForLen(h, 2))

	conn1.SetReadDeadline(time.Now().Add(time.Second))
	_, msg, err := conn1.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "update", string(msg))

	// No replay: the late client sees nothing from the earlier pass.
	late.SetReadDeadline(time.Now().Add(150 * time.Millisecond))
	_, _, err = late.ReadMessage()
	assert.Error(t, err)
}

func TestNotifyAllDropsFailedConnections(t *testing.T) {
	h := New()
	t.Cleanup(h.Close)

	healthy, healthyClient := newTestConnPair(t)
	dead, _ := newTestConnPair(t)
	h.Register(healthy)
	h.Register(dead)
	require.Equal(t, 2, h.Len())

	// Closing the server side makes the next write fail immediately.
	require.NoError(t, dead.Close())

	h.NotifyAll()

	assert.Equal(t, 1, h.Len(), "failed connection is removed after the pass")

	healthyClient.SetReadDeadline(time.Now().Add(time.Second))
	_, msg, err := healthyClient.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "update", string(msg), "other clients are unaffected")
}

func TestUnregisterAbsentIsNoOp(t *testing.T) {
	h := New()
	t.Cleanup(h.Close)

	conn, _ := newTestConnPair(t)
	h.Unregister(conn)
	assert.Equal(t, 0, h.Len())

	h.Register(conn)
	h.Unregister(conn)
	h.Unregister(conn)
	assert.Equal(t, 0, h.Len())
}

func TestRegisterTwiceCountsOnce(t *testing.T) {
	h := New()
	t.Cleanup(h.Close)

	conn, _ := newTestConnPair(t)
	h.Register(conn)
	h.Register(conn)
	assert.Equal(t, 1, h.Len())
}

func TestConcurrentRegisterUnregisterNotify(t *testing.T) {
	h := New()
	t.Cleanup(h.Close)

	var wg sync.WaitGroup
	for range 8 {
		conn, _ := newTestConnPair(t)
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.Register(conn)
			h.NotifyAll()
			h.Unregister(conn)
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for range 20 {
			h.NotifyAll()
		}
	}()

	wg.Wait()
	assert.Equal(t, 0, h.Len())
}

func newTestConnPair(t *testing.T) (server *ws.Conn, client *ws.Conn) {
	t.Helper()
	upgrader := ws.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	ready := make(chan *ws.Conn, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		ready <- conn
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	clientConn, _, err := ws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { clientConn.Close() })

	serverConn := <-ready
	t.Cleanup(func() { serverConn.Close() })

	return serverConn, clientConn
}
