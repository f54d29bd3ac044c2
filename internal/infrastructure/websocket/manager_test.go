package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_RegisterCountUnregister(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := NewManager()
	m.Start(ctx)

	listenerCtx, stop := context.WithCancel(context.Background())
	a := NewClient(nil, "u1", TopicSocialFeed, stop)
	b := NewClient(nil, "u2", TopicAdminGrievances, nil)
	m.Register <- a
	m.Register <- b

	assert.Eventually(t, func() bool { return m.Count("") == 2 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, m.Count(TopicSocialFeed))

	m.Unregister <- a
	assert.Eventually(t, func() bool { return m.Count("") == 1 }, time.Second, 10*time.Millisecond)
	assert.Error(t, listenerCtx.Err(), "unregister stops the client's listener")
}

func TestClient_PushAfterCloseDoesNotPanic(t *testing.T) {
	c := NewClient(nil, "u1", TopicSocialFeed, nil)
	c.Push(MessageTypeSocialPosts, []string{"a"})

	frame := <-c.Send
	var msg WSMessage
	require.NoError(t, json.Unmarshal(frame, &msg))
	assert.Equal(t, MessageTypeSocialPosts, msg.Type)

	c.close()
	assert.NotPanics(t, func() {
		for i := 0; i < 32; i++ {
			c.Push(MessageTypeSocialPosts, nil)
		}
	})
}

func TestManager_RemoveAfterStopDoesNotBlock(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	m := NewManager()
	m.Start(ctx)
	cancel()

	c := NewClient(nil, "u1", TopicSocialFeed, nil)
	done := make(chan struct{})
	go func() {
		m.Remove(c)
		m.Remove(c)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Remove blocked after manager stopped")
	}
}

func TestManager_AddAfterStopDoesNotBlock(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	m := NewManager()
	m.Start(ctx)
	cancel()
	<-m.stopped

	listenerCtx, stop := context.WithCancel(context.Background())
	c := NewClient(nil, "u1", TopicSocialFeed, stop)

	added := make(chan bool, 1)
	go func() { added <- m.Add(c) }()

	select {
	case ok := <-added:
		assert.False(t, ok)
		assert.Error(t, listenerCtx.Err(), "a rejected client has its listener cancelled")
	case <-time.After(time.Second):
		t.Fatal("Add blocked after manager stopped")
	}
}

func TestManager_AddWhileRunning(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m := NewManager()
	m.Start(ctx)

	assert.True(t, m.Add(NewClient(nil, "u1", TopicMyGrievances, nil)))
	assert.Eventually(t, func() bool { return m.Count(TopicMyGrievances) == 1 }, time.Second, 10*time.Millisecond)
}
