package broadcast

import "testing"

func TestPublishDeliversToAllSubscribers(t *testing.T) {
	b := New[int](4)
	a := b.Subscribe()
	c := b.Subscribe()

	b.Publish(1)

	if got := <-a.Frames(); got != 1 {
		t.Errorf("subscriber a got %d, want 1", got)
	}
	if got := <-c.Frames(); got != 1 {
		t.Errorf("subscriber c got %d, want 1", got)
	}
}

func TestPublishDropsOldestWhenFull(t *testing.T) {
	b := New[int](2)
	sub := b.Subscribe()

	b.Publish(1)
	b.Publish(2)
	b.Publish(3) // channel cap 2 already full with {1,2}; 1 should be evicted

	first := <-sub.Frames()
	second := <-sub.Frames()

	if first != 2 || second != 3 {
		t.Errorf("got (%d, %d), want (2, 3)", first, second)
	}
	if got := sub.Dropped(); got != 1 {
		t.Errorf("Dropped() = %d, want 1", got)
	}
}

func TestCloseIsIdempotentAndObservable(t *testing.T) {
	b := New[int](1)

	b.Close()
	b.Close() // must not panic on double-close

	select {
	case <-b.Closed():
	default:
		t.Fatal("Closed() channel should already be closed")
	}
}

func TestSubscriberSeesBothFrameAndClose(t *testing.T) {
	b := New[int](4)
	sub := b.Subscribe()

	b.Publish(42)
	b.Close()

	// Both cases are ready at once and select picks among them at random;
	// the close latch stays ready, so keep selecting until both are seen.
	gotFrame := false
	gotClose := false
	for i := 0; i < 100 && !(gotFrame && gotClose); i++ {
		select {
		case v := <-sub.Frames():
			if v != 42 {
				t.Errorf("got frame %d, want 42", v)
			}
			gotFrame = true
		case <-b.Closed():
			gotClose = true
		}
	}
	if !gotFrame || !gotClose {
		t.Errorf("expected to observe both a frame and close, got frame=%v close=%v", gotFrame, gotClose)
	}
}
