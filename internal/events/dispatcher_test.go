package events

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	ws "github.com/gorilla/websocket"
	"github.com/shoptrack/apiserver/internal/hub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type publishedMessage struct {
	channel string
	data    []byte
	attrs   map[string]string
}

type fakeBackend struct {
	mu         sync.Mutex
	published  []publishedMessage
	publishErr error
	handler    Handler
	started    chan struct{}
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{started: make(chan struct{})}
}

func (f *fakeBackend) Publish(_ context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.publishErr != nil {
		return "", f.publishErr
	}
	f.published = append(f.published, publishedMessage{channel: channel, data: data, attrs: attrs})
	return "msg-1", nil
}

func (f *fakeBackend) Subscribe(ctx context.Context, _ string, handler Handler) error {
	f.mu.Lock()
	f.handler = handler
	f.mu.Unlock()
	close(f.started)
	<-ctx.Done()
	return ctx.Err()
}

func (f *fakeBackend) Close() error { return nil }

func (f *fakeBackend) deliver(t *testing.T, msg Message) {
	t.Helper()
	f.mu.Lock()
	handler := f.handler
	f.mu.Unlock()
	require.NotNil(t, handler, "subscription not started")
	require.NoError(t, handler(context.Background(), msg))
}

func TestOrderChangedPublishesWithOrigin(t *testing.T) {
	liveHub := hub.New()
	t.Cleanup(liveHub.Close)

	backend := newFakeBackend()
	dispatcher := NewDispatcher(liveHub, backend)

	dispatcher.OrderChanged(context.Background(), 42, "status")

	require.Len(t, backend.published, 1)
	msg := backend.published[0]
	assert.Equal(t, Channel, msg.channel)
	assert.NotEmpty(t, msg.attrs[originAttribute])

	var event ChangeEvent
	require.NoError(t, json.Unmarshal(msg.data, &event))
	assert.Equal(t, ChangeEvent{Entity: "repair_order", ID: 42, Action: "status"}, event)
}

func TestOrderChangedSwallowsPublishFailure(t *testing.T) {
	liveHub := hub.New()
	t.Cleanup(liveHub.Close)

	backend := newFakeBackend()
	backend.publishErr = errors.New("broker down")
	dispatcher := NewDispatcher(liveHub, backend)

	// Must not panic or surface the error to the caller.
	dispatcher.OrderChanged(context.Background(), 1, "created")
}

func TestOrderChangedWithoutBackend(t *testing.T) {
	liveHub := hub.New()
	t.Cleanup(liveHub.Close)

	dispatcher := NewDispatcher(liveHub, nil)
	dispatcher.OrderChanged(context.Background(), 1, "created")
	assert.NoError(t, dispatcher.Close())
}

func TestRunSkipsOwnEvents(t *testing.T) {
	liveHub := hub.New()
	t.Cleanup(liveHub.Close)

	serverConn, clientConn := newNotifyProbe(t, liveHub)
	_ = serverConn

	backend := newFakeBackend()
	dispatcher := NewDispatcher(liveHub, backend)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	done := make(chan error, 1)
	go func() { done <- dispatcher.Run(ctx) }()
	<-backend.started

	// Foreign event: wakes local clients.
	backend.deliver(t, Message{Attributes: map[string]string{originAttribute: "other-instance"}})
	assertUpdateFrame(t, clientConn)

	// Own event: filtered, the local hub was already notified at publish
	// time by OrderChanged. Checked last since the timed-out read leaves
	// the client connection unusable.
	backend.deliver(t, Message{Attributes: map[string]string{originAttribute: dispatcher.instanceID}})
	assertNoFrame(t, clientConn)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

// newNotifyProbe registers one real WebSocket connection with the hub so
// tests can observe whether NotifyAll ran.
func newNotifyProbe(t *testing.T, h *hub.Hub) (server *ws.Conn, client *ws.Conn) {
	t.Helper()
	upgrader := ws.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	ready := make(chan *ws.Conn, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		h.Register(conn)
		ready <- conn
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	clientConn, _, err := ws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { clientConn.Close() })

	serverConn := <-ready
	return serverConn, clientConn
}

func assertUpdateFrame(t *testing.T, conn *ws.Conn) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "update", string(msg))
}

func assertNoFrame(t *testing.T, conn *ws.Conn) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(150*time.Millisecond)))
	_, _, err := conn.ReadMessage()
	require.Error(t, err, "no frame expected")
}
