package utils

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectFlushes() (func([]LogMessage), chan []LogMessage) {
	flushed := make(chan []LogMessage, 4)
	return func(batch []LogMessage) {
		out := make([]LogMessage, len(batch))
		copy(out, batch)
		flushed <- out
	}, flushed
}

func TestBatcherFlushesPartialBatchOnInterval(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	flush, flushed := collectFlushes()
	msgs := make(chan LogMessage)
	go runBatcher(ctx, msgs, flush, 100, 20*time.Millisecond)

	msgs <- LogMessage{Message: "one"}
	msgs <- LogMessage{Message: "two"}

	select {
	case batch := <-flushed:
		assert.Len(t, batch, 2)
	case <-time.After(2 * time.Second):
		t.Fatal("partial batch was never flushed on an idle channel")
	}
}

func TestBatcherFlushesWhenFull(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	flush, flushed := collectFlushes()
	msgs := make(chan LogMessage)
	go runBatcher(ctx, msgs, flush, 3, time.Hour)

	for i := 0; i < 3; i++ {
		msgs <- LogMessage{Message: "m"}
	}

	select {
	case batch := <-flushed:
		assert.Len(t, batch, 3)
	case <-time.After(2 * time.Second):
		t.Fatal("full batch was never flushed")
	}
}

func TestBatcherFlushesRemainderOnShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	flush, flushed := collectFlushes()
	msgs := make(chan LogMessage)
	done := make(chan error, 1)
	go func() {
		done <- runBatcher(ctx, msgs, flush, 10, time.Hour)
	}()

	msgs <- LogMessage{Message: "straggler"}
	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("batcher did not stop on cancellation")
	}

	select {
	case batch := <-flushed:
		assert.Len(t, batch, 1)
	default:
		t.Fatal("remainder was not flushed on shutdown")
	}
}
