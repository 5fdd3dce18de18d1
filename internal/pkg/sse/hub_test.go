package sse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(ch chan Event) (Event, bool) {
	select {
	case e := <-ch:
		return e, true
	default:
		return Event{}, false
	}
}

func TestHub_PublishReachesOwnerAndAdmins(t *testing.T) {
	hub := NewHub()

	owner, closeOwner := hub.Subscribe("u1", false)
	defer closeOwner()
	other, closeOther := hub.Subscribe("u2", false)
	defer closeOther()
	admin, closeAdmin := hub.Subscribe("a1", true)
	defer closeAdmin()

	hub.Publish("u1", Event{ID: "1", Event: "vacation.updated"})

	e, ok := receive(owner)
	require.True(t, ok)
	assert.Equal(t, "vacation.updated", e.Event)

	_, ok = receive(admin)
	assert.True(t, ok)

	_, ok = receive(other)
	assert.False(t, ok)
}

func TestHub_AdminPublishingForSelfGetsOneCopy(t *testing.T) {
	hub := NewHub()
	admin, cleanup := hub.Subscribe("a1", true)
	defer cleanup()

	hub.Publish("a1", Event{ID: "1"})

	_, ok := receive(admin)
	require.True(t, ok)
	_, ok = receive(admin)
	assert.False(t, ok)
}

func TestHub_CleanupIsIdempotent(t *testing.T) {
	hub := NewHub()
	_, cleanup := hub.Subscribe("u1", false)
	assert.Equal(t, 1, hub.SubscriberCount("u1"))

	cleanup()
	cleanup()

	assert.Equal(t, 0, hub.SubscriberCount("u1"))
	assert.Equal(t, 0, hub.TotalSubscribers())
	assert.NotPanics(t, func() { hub.Publish("u1", Event{}) })
}

func TestHub_FullChannelDoesNotBlock(t *testing.T) {
	hub := NewHub()
	_, cleanup := hub.Subscribe("u1", false)
	defer cleanup()

	for i := 0; i < 100; i++ {
		hub.Publish("u1", Event{})
	}
}

func TestHub_CloseAllEndsStreams(t *testing.T) {
	hub := NewHub()
	ch, cleanup := hub.Subscribe("u1", false)

	hub.CloseAll()

	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, hub.TotalSubscribers())
	assert.NotPanics(t, cleanup)
}
