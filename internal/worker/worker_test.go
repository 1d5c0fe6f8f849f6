package worker

import (
	"testing"
	"time"
)

func TestSemaphoreBoundsConcurrency(t *testing.T) {
	sem := NewSemaphore(2)

	<-sem.Chan()
	<-sem.Chan()

	select {
	case <-sem.Chan():
		t.Fatal("expected no permit available once both are held")
	case <-time.After(10 * time.Millisecond):
	}

	sem.Release()

	select {
	case <-sem.Chan():
	case <-time.After(10 * time.Millisecond):
		t.Fatal("expected a permit to be available after Release")
	}
}

func TestNewSemaphoreClampsToOne(t *testing.T) {
	sem := NewSemaphore(0)
	select {
	case <-sem.Chan():
	default:
		t.Fatal("expected at least one permit")
	}
}

func TestReleaseBeyondCapacityDoesNotBlock(t *testing.T) {
	sem := NewSemaphore(1)
	<-sem.Chan()
	sem.Release()
	sem.Release() // already full; must not block or panic
}
