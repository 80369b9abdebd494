package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestDebounceCoalescesBursts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan struct{}, 16)
	var runs atomic.Int32
	done := make(chan struct{})
	go func() {
		Debounce(ctx, events, 40*time.Millisecond, func(context.Context) { runs.Add(1) })
		close(done)
	}()

	for i := 0; i < 5; i++ {
		events <- struct{}{}
		time.Sleep(10 * time.Millisecond)
	}
	time.Sleep(120 * time.Millisecond)
	if n := runs.Load(); n != 1 {
		t.Errorf("Expected one run for a burst, got %d", n)
	}

	events <- struct{}{}
	time.Sleep(120 * time.Millisecond)
	if n := runs.Load(); n != 2 {
		t.Errorf("Expected a second run after a new event, got %d", n)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Expected Debounce to return when the context ends")
	}
}

func TestDebounceResetsOnEachEvent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan struct{}, 16)
	var runs atomic.Int32
	go Debounce(ctx, events, 60*time.Millisecond, func(context.Context) { runs.Add(1) })

	// events 30ms apart never leave a 60ms quiet period
	for i := 0; i < 6; i++ {
		events <- struct{}{}
		time.Sleep(30 * time.Millisecond)
		if runs.Load() != 0 {
			t.Fatalf("Expected no run while events keep arriving, got %d", runs.Load())
		}
	}
	time.Sleep(150 * time.Millisecond)
	if runs.Load() != 1 {
		t.Errorf("Expected exactly one run after the burst, got %d", runs.Load())
	}
}

func TestDebounceStopsWhenEventsClose(t *testing.T) {
	events := make(chan struct{})
	done := make(chan struct{})
	go func() {
		Debounce(context.Background(), events, time.Hour, func(context.Context) {})
		close(done)
	}()
	close(events)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Expected Debounce to return when events is closed")
	}
}
