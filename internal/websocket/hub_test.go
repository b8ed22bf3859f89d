package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	ws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social-scheduler/internal/event"
)

func TestHub_RoutesEventsToOwner(t *testing.T) {
	bus := event.NewBus()
	hub := NewHub(bus)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	upgrader := Upgrader(nil)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, hub.Serve(upgrader, w, r, r.URL.Query().Get("user")))
	}))
	defer server.Close()

	dial := func(user string) *ws.Conn {
		url := "ws" + strings.TrimPrefix(server.URL, "http") + "?user=" + user
		conn, _, err := ws.DefaultDialer.Dial(url, nil)
		require.NoError(t, err)
		return conn
	}

	alice := dial("alice")
	defer alice.Close()
	bob := dial("bob")
	defer bob.Close()

	// Give the hub a moment to register both clients.
	time.Sleep(50 * time.Millisecond)

	bus.Publish(event.Event{Type: event.TypePostPublished, ActorID: "alice", Payload: map[string]string{"id": "p1"}})

	require.NoError(t, alice.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := alice.ReadMessage()
	require.NoError(t, err)

	var got event.Event
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, event.TypePostPublished, got.Type)
	assert.Equal(t, "alice", got.ActorID)

	require.NoError(t, bob.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err = bob.ReadMessage()
	assert.Error(t, err, "bob must not receive alice's event")
}

func TestUpgrader_CheckOrigin(t *testing.T) {
	t.Parallel()

	upgrader := Upgrader([]string{"https://app.example.com"})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://app.example.com")
	assert.True(t, upgrader.CheckOrigin(req))

	req.Header.Set("Origin", "https://evil.example.com")
	assert.False(t, upgrader.CheckOrigin(req))
}

func newRunningHub(t *testing.T) (*Hub, *event.InMemoryBus, context.CancelFunc) {
	t.Helper()
	bus := event.NewBus()
	hub := NewHub(bus)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)
	return hub, bus, cancel
}

func testClient(userID string, buffer int) *Client {
	return &Client{id: userID + "-" + time.Now().Format("150405.000000000"), userID: userID, send: make(chan []byte, buffer)}
}

func TestHub_EvictsOldestConnection(t *testing.T) {
	t.Parallel()

	hub, _, _ := newRunningHub(t)

	clients := make([]*Client, 0, MaxConnectionsPerUser+1)
	for i := 0; i <= MaxConnectionsPerUser; i++ {
		c := testClient("alice", 1)
		require.NoError(t, hub.join(c))
		clients = append(clients, c)
	}

	require.Eventually(t, func() bool { return hub.Connected("alice") == MaxConnectionsPerUser }, time.Second, 10*time.Millisecond)

	_, open := <-clients[0].send
	assert.False(t, open, "oldest connection should be closed")
}

func TestHub_BroadcastsUnownedEvents(t *testing.T) {
	t.Parallel()

	hub, bus, _ := newRunningHub(t)
	alice := testClient("alice", 4)
	bob := testClient("bob", 4)
	require.NoError(t, hub.join(alice))
	require.NoError(t, hub.join(bob))

	require.Eventually(t, func() bool { return hub.Connected("alice") == 1 && hub.Connected("bob") == 1 }, time.Second, 10*time.Millisecond)
	bus.Publish(event.Event{Type: event.TypePostCreated})

	for _, c := range []*Client{alice, bob} {
		select {
		case msg := <-c.send:
			assert.Contains(t, string(msg), string(event.TypePostCreated))
		case <-time.After(time.Second):
			t.Fatalf("%s did not receive broadcast", c.userID)
		}
	}
}

func TestHub_LeaveAndShutdown(t *testing.T) {
	t.Parallel()

	hub, _, cancel := newRunningHub(t)
	c := testClient("alice", 1)
	require.NoError(t, hub.join(c))
	require.Eventually(t, func() bool { return hub.Connected("alice") == 1 }, time.Second, 10*time.Millisecond)

	hub.leave(c)
	require.Eventually(t, func() bool { return hub.Connected("alice") == 0 }, time.Second, 10*time.Millisecond)

	cancel()
	require.Eventually(t, func() bool {
		return errors.Is(hub.join(testClient("bob", 1)), ErrHubClosed)
	}, time.Second, 10*time.Millisecond)
}
