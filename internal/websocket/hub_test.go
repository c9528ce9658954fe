package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camp-rental/backend/internal/storage/models"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	hub := NewHub()
	go hub.Run(ctx)
	return hub
}

func receive(t *testing.T, c *Client) Message {
	t.Helper()
	select {
	case data := <-c.Send():
		var raw struct {
			Type    MessageType     `json:"type"`
			Payload json.RawMessage `json:"payload"`
		}
		require.NoError(t, json.Unmarshal(data, &raw))
		return Message{Type: raw.Type, Payload: raw.Payload}
	case <-time.After(time.Second):
		t.Fatal("no message received")
		return Message{}
	}
}

func assertSilent(t *testing.T, c *Client) {
	t.Helper()
	select {
	case data := <-c.Send():
		t.Fatalf("unexpected message: %s", data)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestAvailabilityChangedReachesSubscribers(t *testing.T) {
	hub := startHub(t)
	broadcaster := NewEventBroadcaster(hub)

	all := NewClient(hub)
	campA := NewClient(hub)
	campA.Subscribe([]string{"camp-a"})
	campB := NewClient(hub)
	campB.Subscribe([]string{"camp-b"})
	for _, c := range []*Client{all, campA, campB} {
		hub.Register(c)
	}

	day := models.MustParseDate("2026-08-14")
	broadcaster.BroadcastAvailabilityChanged("camp-a", day, day, "booking_created")

	msg := receive(t, campA)
	assert.Equal(t, TypeAvailabilityChanged, msg.Type)
	var payload AvailabilityChangedPayload
	require.NoError(t, json.Unmarshal(msg.Payload.(json.RawMessage), &payload))
	assert.Equal(t, "camp-a", payload.CampID)
	assert.True(t, payload.StartDate.Equal(day))
	assert.Equal(t, "booking_created", payload.Cause)

	assert.Equal(t, TypeAvailabilityChanged, receive(t, all).Type)
	assertSilent(t, campB)
}

func TestNotificationReachesEveryone(t *testing.T) {
	hub := startHub(t)
	c := NewClient(hub)
	c.Subscribe([]string{"camp-a"})
	hub.Register(c)

	NewEventBroadcaster(hub).BroadcastNotification("info", "Import", "done")

	assert.Equal(t, TypeNotification, receive(t, c).Type)
}

func TestClientCommands(t *testing.T) {
	c := NewClient(NewHub())

	reply := c.handle([]byte(`{"type":"ping"}`))
	require.NotNil(t, reply)
	assert.Equal(t, TypePong, reply.Type)

	reply = c.handle([]byte(`{"type":"subscribe","payload":{"camp_ids":["x"]}}`))
	require.NotNil(t, reply)
	assert.Equal(t, TypeSubscribeAck, reply.Type)
	assert.True(t, c.Wants("x"))
	assert.False(t, c.Wants("y"))
	assert.True(t, c.Wants(""))

	c.handle([]byte(`{"type":"unsubscribe","payload":{"camp_ids":["x"]}}`))
	assert.True(t, c.Wants("y"))

	reply = c.handle([]byte(`{"type":"teleport"}`))
	require.NotNil(t, reply)
	assert.Equal(t, TypeError, reply.Type)

	reply = c.handle([]byte(`not json`))
	require.NotNil(t, reply)
	assert.Equal(t, TypeError, reply.Type)
}

func TestHubStopClosesClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub()
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()

	c := NewClient(hub)
	hub.Register(c)
	cancel()
	<-done

	_, ok := <-c.Send()
	assert.False(t, ok)
	assert.Equal(t, 0, hub.ClientCount())

	// Unregister after shutdown must not block.
	hub.Unregister(c)
}

func TestRepliesDuringShutdownAreDropped(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub()
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	c := NewClient(hub)
	hub.Register(c)

	replying := make(chan struct{})
	go func() {
		defer close(replying)
		for range 500 {
			c.reply(NewMessage(TypePong, nil))
		}
	}()
	go func() {
		// Drain like the write pump until the hub closes the channel.
		for range c.Send() {
		}
	}()

	cancel()
	<-stopped
	<-replying

	assert.False(t, c.trySend([]byte(`{}`)))
	c.close()
}
