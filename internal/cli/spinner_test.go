package cli

import (
	"bytes"
	"context"
	"testing"
	"time"
)

func TestSpinnerStop(t *testing.T) {
	s := newSpinner(context.Background(), "Compiling...")
	s.Start()
	time.Sleep(100 * time.Millisecond)
	s.Stop()
	if s.Cancelled() {
		t.Error("Cancelled() = true after Stop")
	}
}

func TestSpinnerWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	s := newSpinner(ctx, "Compiling...")
	s.Start()
	cancel()
	time.Sleep(100 * time.Millisecond)

	if !s.Cancelled() {
		t.Error("Spinner should be cancelled after context cancellation")
	}
	s.Stop()
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s := newSpinner(context.Background(), "Testing idempotent stop...")
	s.Start()
	s.Stop()
	s.Stop()
}

func TestSpinnerStopWithoutStart(t *testing.T) {
	s := newSpinner(context.Background(), "never started")
	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop blocked without Start")
	}
}

func TestSpinnerStopWithSuccess(t *testing.T) {
	var buf bytes.Buffer
	defer swapStatus(&buf)()

	s := newSpinner(context.Background(), "Compiling...")
	s.Start()
	s.StopWithSuccess("Compiled chart.json")

	if !bytes.Contains(buf.Bytes(), []byte("Compiled chart.json")) {
		t.Errorf("status output = %q", buf.String())
	}
	if bytes.Contains(buf.Bytes(), []byte("Compiling...")) {
		t.Errorf("spinner frames written to a non-terminal: %q", buf.String())
	}
}

// swapStatus redirects status output and returns a function restoring it.
func swapStatus(buf *bytes.Buffer) func() {
	prev := statusOut
	statusOut = buf
	return func() { statusOut = prev }
}
