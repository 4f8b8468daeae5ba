package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testEventuallyTimeout = time.Second
	testPollInterval      = 10 * time.Millisecond
)

func receive(t *testing.T, c *Client) string {
	t.Helper()
	select {
	case msg, ok := <-c.Send:
		require.True(t, ok, "send channel closed")
		return string(msg)
	case <-time.After(testEventuallyTimeout):
		t.Fatal("no message delivered")
		return ""
	}
}

func TestHub_RegisterAndBroadcast(t *testing.T) {
	hub := NewHub()

	a1, err := hub.Register(1, nil)
	require.NoError(t, err)
	a2, err := hub.Register(1, nil)
	require.NoError(t, err)
	b, err := hub.Register(2, nil)
	require.NoError(t, err)

	assert.Equal(t, 3, hub.ConnectionCount())
	assert.True(t, hub.IsOnline(1))
	assert.False(t, hub.IsOnline(9))

	hub.Broadcast(1, "hello")
	assert.Equal(t, "hello", receive(t, a1))
	assert.Equal(t, "hello", receive(t, a2))
	assert.Empty(t, b.Send)

	hub.BroadcastAll("all")
	assert.Equal(t, "all", receive(t, a1))
	assert.Equal(t, "all", receive(t, b))
}

func TestHub_UnregisterIsIdempotent(t *testing.T) {
	hub := NewHub()

	c, err := hub.Register(4, nil)
	require.NoError(t, err)

	hub.UnregisterClient(c)
	hub.UnregisterClient(c)

	assert.Equal(t, 0, hub.ConnectionCount())
	assert.False(t, hub.IsOnline(4))
	_, ok := <-c.Send
	assert.False(t, ok)
}

func TestHub_PerUserLimit(t *testing.T) {
	hub := NewHub()
	for i := 0; i < maxConnsPerUser; i++ {
		_, err := hub.Register(5, nil)
		require.NoError(t, err)
	}
	_, err := hub.Register(5, nil)
	assert.ErrorIs(t, err, ErrUserFull)

	_, err = hub.Register(6, nil)
	assert.NoError(t, err)
}

func TestHub_Shutdown(t *testing.T) {
	hub := NewHub()
	c, err := hub.Register(1, nil)
	require.NoError(t, err)

	require.NoError(t, hub.Shutdown(context.Background()))
	require.NoError(t, hub.Shutdown(context.Background()))

	_, ok := <-c.Send
	assert.False(t, ok)
	assert.Equal(t, 0, hub.ConnectionCount())

	// A late unregister from the read pump must not close the channel twice.
	hub.UnregisterClient(c)

	_, err = hub.Register(1, nil)
	assert.ErrorIs(t, err, ErrServerFull)
}

func TestClient_TrySendDropsWhenFull(t *testing.T) {
	hub := NewHub()
	c, err := hub.Register(1, nil)
	require.NoError(t, err)

	for i := 0; i < sendBuffer; i++ {
		require.True(t, c.TrySend([]byte("x")))
	}
	assert.False(t, c.TrySend([]byte("overflow")))

	hub.UnregisterClient(c)
	assert.False(t, c.TrySend([]byte("after close")))
}
