package watch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishReachesSubscribers(t *testing.T) {
	hub := NewHub()

	sub := hub.Subscribe(EventTopic(42))
	defer sub.Cancel()

	assert.Equal(t, "events/42", sub.Topic())
	assert.Equal(t, 1, hub.Subscribers(EventTopic(42)))

	hub.Publish(Snapshot{Topic: EventTopic(42), Data: "v1"})

	select {
	case snapshot := <-sub.Updates():
		assert.Equal(t, "v1", snapshot.Data)
	case <-time.After(time.Second):
		t.Fatal("expected a snapshot")
	}
}

func TestHub_TopicsAreIsolated(t *testing.T) {
	hub := NewHub()

	eventSub := hub.Subscribe(EventTopic(1))
	defer eventSub.Cancel()
	groupSub := hub.Subscribe(GroupTopic(1))
	defer groupSub.Cancel()

	hub.Publish(Snapshot{Topic: GroupTopic(1), Data: "group"})

	select {
	case snapshot := <-groupSub.Updates():
		assert.Equal(t, "group", snapshot.Data)
	case <-time.After(time.Second):
		t.Fatal("expected a group snapshot")
	}

	select {
	case <-eventSub.Updates():
		t.Fatal("event subscriber must not see group snapshots")
	default:
	}
}

func TestHub_SlowConsumerSeesNewestSnapshot(t *testing.T) {
	hub := NewHub()

	sub := hub.Subscribe(EventTopic(7))
	defer sub.Cancel()

	// Nobody is draining; the stale snapshot is coalesced away.
	hub.Publish(Snapshot{Topic: EventTopic(7), Data: "v1"})
	hub.Publish(Snapshot{Topic: EventTopic(7), Data: "v2"})
	hub.Publish(Snapshot{Topic: EventTopic(7), Data: "v3"})

	select {
	case snapshot := <-sub.Updates():
		assert.Equal(t, "v3", snapshot.Data)
	case <-time.After(time.Second):
		t.Fatal("expected the newest snapshot")
	}

	select {
	case snapshot := <-sub.Updates():
		t.Fatalf("expected no backlog, got %v", snapshot.Data)
	default:
	}
}

func TestSubscription_Cancel(t *testing.T) {
	hub := NewHub()

	sub := hub.Subscribe(EventTopic(9))
	sub.Cancel()

	assert.Equal(t, 0, hub.Subscribers(EventTopic(9)))

	_, open := <-sub.Updates()
	assert.False(t, open, "cancel closes the update channel")

	// Cancelling twice must not panic.
	sub.Cancel()

	// Publishing after cancel is a no-op.
	hub.Publish(Snapshot{Topic: EventTopic(9), Data: "late"})
}

func TestHub_DeletedSnapshotIsTerminalMarker(t *testing.T) {
	hub := NewHub()

	sub := hub.Subscribe(EventTopic(3))
	defer sub.Cancel()

	hub.Publish(Snapshot{Topic: EventTopic(3), Deleted: true})

	select {
	case snapshot := <-sub.Updates():
		assert.True(t, snapshot.Deleted)
		assert.Nil(t, snapshot.Data)
	case <-time.After(time.Second):
		t.Fatal("expected the deletion snapshot")
	}
}

func TestHub_ManySubscribersOneTopic(t *testing.T) {
	hub := NewHub()

	subs := make([]*Subscription, 5)
	for i := range subs {
		subs[i] = hub.Subscribe(GroupTopic(1))
	}
	require.Equal(t, 5, hub.Subscribers(GroupTopic(1)))

	hub.Publish(Snapshot{Topic: GroupTopic(1), Data: "fanout"})

	for _, sub := range subs {
		select {
		case snapshot := <-sub.Updates():
			assert.Equal(t, "fanout", snapshot.Data)
		case <-time.After(time.Second):
			t.Fatal("every subscriber gets the snapshot")
		}
		sub.Cancel()
	}

	assert.Equal(t, 0, hub.Subscribers(GroupTopic(1)))
}
