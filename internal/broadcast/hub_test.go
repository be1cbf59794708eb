package broadcast

import (
	"errors"
	"sync"
	"testing"
	"time"
)

// stubSubscriber records received frames and can be made to fail.
type stubSubscriber struct {
	mu      sync.Mutex
	frames  [][]byte
	sendErr error
	sendCnt int
}

func (s *stubSubscriber) Send(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sendCnt++
	if s.sendErr != nil {
		return s.sendErr
	}
	s.frames = append(s.frames, data)
	return nil
}

func (s *stubSubscriber) received() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.frames)
}

func TestHub_PublishReachesAllSubscribers(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	a := &stubSubscriber{}
	b := &stubSubscriber{}
	hub.Subscribe(a)
	hub.Subscribe(b)

	hub.Publish(NewLocationUpdate("shuttle-1", -7.1633, 112.6280, 20, 90, time.Now()))

	if a.received() != 1 || b.received() != 1 {
		t.Errorf("expected both subscribers to receive 1 frame, got %d and %d", a.received(), b.received())
	}
}

func TestHub_FailedSubscriberIsDropped(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	healthy := &stubSubscriber{}
	dead := &stubSubscriber{sendErr: errors.New("connection reset")}
	hub.Subscribe(healthy)
	hub.Subscribe(dead)

	hub.Publish(NewRouteCompleted("shuttle-1"))

	if hub.Count() != 1 {
		t.Errorf("expected dead subscriber to be dropped, count=%d", hub.Count())
	}

	// Next publish must not reach the dropped subscriber.
	hub.Publish(NewRouteCompleted("shuttle-1"))
	if dead.sendCnt != 1 {
		t.Errorf("expected dropped subscriber to see no further sends, got %d", dead.sendCnt)
	}
	if healthy.received() != 2 {
		t.Errorf("expected healthy subscriber to receive 2 frames, got %d", healthy.received())
	}
}

func TestHub_UnsubscribeIsIdempotent(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	s := &stubSubscriber{}
	hub.Subscribe(s)

	hub.Unsubscribe(s)
	hub.Unsubscribe(s)

	if hub.Count() != 0 {
		t.Errorf("expected empty hub, count=%d", hub.Count())
	}
}

func TestHub_ConcurrentSubscribePublishUnsubscribe(t *testing.T) {
	t.Parallel()

	hub := NewHub()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s := &stubSubscriber{}
			hub.Subscribe(s)
			hub.Publish(NewRouteCompleted("shuttle-1"))
			hub.Unsubscribe(s)
		}()
	}
	wg.Wait()

	if hub.Count() != 0 {
		t.Errorf("expected all subscribers gone, count=%d", hub.Count())
	}
}
