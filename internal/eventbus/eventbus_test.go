package eventbus

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"partrep/internal/domain"
)

func TestPublishReachesSubscribers(t *testing.T) {
	b := New(nil)
	defer b.Close()

	received := make(chan domain.DomainEvent, 1)
	b.Subscribe(domain.EventMounted, func(e DomainEvent) { received <- e })

	b.Publish(domain.MountedEvent{ContentTypes: []string{"Books"}})

	select {
	case e := <-received:
		mounted, ok := e.(domain.MountedEvent)
		require.True(t, ok)
		assert.Equal(t, []string{"Books"}, mounted.ContentTypes)
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := New(nil)
	defer b.Close()

	var kept, removed atomic.Int32
	done := make(chan struct{}, 2)
	unsubscribe := b.Subscribe(domain.EventConfigChanged, func(DomainEvent) { removed.Add(1) })
	b.Subscribe(domain.EventConfigChanged, func(DomainEvent) {
		kept.Add(1)
		done <- struct{}{}
	})
	unsubscribe()

	b.Publish(domain.ConfigChangedEvent{Path: "partrep.toml"})
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
	assert.Equal(t, int32(1), kept.Load())
	assert.Equal(t, int32(0), removed.Load())
}

func TestHandlerPanicDoesNotStopDispatch(t *testing.T) {
	b := New(nil)
	defer b.Close()

	delivered := make(chan struct{}, 1)
	b.Subscribe(domain.EventFetchFailed, func(DomainEvent) { panic("boom") })
	b.Subscribe(domain.EventMounted, func(DomainEvent) { delivered <- struct{}{} })

	b.Publish(domain.FetchFailedEvent{Op: "members"})
	b.Publish(domain.MountedEvent{})

	select {
	case <-delivered:
	case <-time.After(time.Second):
		t.Fatal("dispatcher stopped after handler panic")
	}
}

func TestPublishAfterCloseDoesNotBlock(t *testing.T) {
	b := New(nil)
	b.Close()
	b.Close()

	finished := make(chan struct{})
	go func() {
		for i := 0; i < 2000; i++ {
			b.Publish(domain.MountedEvent{})
		}
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("publish blocked after close")
	}
}
