package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressBroadcasterDeliversToSubscriber(t *testing.T) {
	b := newProgressBroadcaster()
	ch := b.subscribe("run-1")
	defer b.unsubscribe("run-1", ch)

	b.publish("run-1", "segmentation")

	evt := <-ch
	assert.Equal(t, "segmentation", evt.Stage)
	assert.False(t, evt.At.IsZero())
}

func TestProgressBroadcasterIgnoresUnrelatedRun(t *testing.T) {
	b := newProgressBroadcaster()
	ch := b.subscribe("run-1")
	defer b.unsubscribe("run-1", ch)

	b.publish("run-other", "segmentation")

	select {
	case evt := <-ch:
		t.Fatalf("unexpected event delivered to unrelated subscriber: %+v", evt)
	default:
	}
}

func TestProgressBroadcasterDropsWhenSubscriberBufferFull(t *testing.T) {
	b := newProgressBroadcaster()
	ch := b.subscribe("run-1")
	defer b.unsubscribe("run-1", ch)

	for i := 0; i < 100; i++ {
		b.publish("run-1", "stage")
	}

	require.NotPanics(t, func() {
		b.publish("run-1", "completed")
	})
}

func TestProgressBroadcasterUnsubscribeClosesChannel(t *testing.T) {
	b := newProgressBroadcaster()
	ch := b.subscribe("run-1")
	b.unsubscribe("run-1", ch)

	_, ok := <-ch
	assert.False(t, ok, "channel should be closed after unsubscribe")
}
