package hub

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/go-camsettings/internal/log"
)

func startHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()
	h := New("test")
	h.SetLogger(log.Discard())
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)
	require.Eventually(t, h.IsRunning, time.Second, 5*time.Millisecond)
	t.Cleanup(cancel)
	return h, cancel
}

func receive(t *testing.T, c *Client) (Message, bool) {
	t.Helper()
	select {
	case msg, ok := <-c.send:
		return msg, ok
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return Message{}, false
	}
}

func TestHub_Broadcast(t *testing.T) {
	h, _ := startHub(t)
	a := NewClient(h, nil)
	b := NewClient(h, nil)
	require.Eventually(t, func() bool { return h.ClientCount() == 2 }, time.Second, 5*time.Millisecond)

	require.NoError(t, h.Publish(NewEvent(EventPreset, "night")))

	for _, c := range []*Client{a, b} {
		msg, ok := receive(t, c)
		require.True(t, ok)

		var e Event
		require.NoError(t, json.Unmarshal(msg.Data, &e))
		assert.Equal(t, EventPreset, e.Type)
		assert.Equal(t, "night", e.Data)
		assert.NotEmpty(t, e.ID)
	}
}

func TestHub_Welcome(t *testing.T) {
	h := New("welcome")
	h.SetLogger(log.Discard())
	h.Welcome = func() (Message, error) {
		return Encode(NewEvent(EventSnapshot, []string{"a", "b"}))
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	c := NewClient(h, nil)
	msg, ok := receive(t, c)
	require.True(t, ok)

	var e struct {
		Type string   `json:"type"`
		Data []string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(msg.Data, &e))
	assert.Equal(t, EventSnapshot, e.Type)
	assert.Equal(t, []string{"a", "b"}, e.Data)
}

func TestHub_Unregister(t *testing.T) {
	h, _ := startHub(t)
	c := NewClient(h, nil)
	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	h.unregister <- c
	_, ok := receive(t, c)
	assert.False(t, ok, "send channel closed on unregister")
	assert.Equal(t, 0, h.ClientCount())
}

func TestHub_DropsSlowClient(t *testing.T) {
	h, _ := startHub(t)
	c := NewClient(h, nil)
	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	for i := 0; i < cap(c.send)+1; i++ {
		h.Broadcast(Message{Data: []byte("x")})
	}
	require.Eventually(t, func() bool { return h.ClientCount() == 0 }, time.Second, 5*time.Millisecond)
}

func TestHub_StopClosesClients(t *testing.T) {
	h, cancel := startHub(t)
	c := NewClient(h, nil)
	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	require.Eventually(t, func() bool { return !h.IsRunning() }, time.Second, 5*time.Millisecond)
	_, ok := receive(t, c)
	assert.False(t, ok)

	late := NewClient(h, nil)
	_, ok = receive(t, late)
	assert.False(t, ok, "client created after stop starts closed")
}
