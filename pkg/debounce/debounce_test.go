package debounce

import (
	"sync"
	"testing"
	"time"
)

type recorder struct {
	mu    sync.Mutex
	calls []string
	fired chan struct{}
}

func newRecorder() *recorder {
	return &recorder{fired: make(chan struct{}, 16)}
}

func (r *recorder) fn(arg string) {
	r.mu.Lock()
	r.calls = append(r.calls, arg)
	r.mu.Unlock()
	r.fired <- struct{}{}
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.calls))
	copy(out, r.calls)
	return out
}

func TestDebouncer_CoalescesBurst(t *testing.T) {
	rec := newRecorder()
	d := New(rec.fn, 300*time.Millisecond)

	for _, arg := range []string{"a", "ab", "abc", "abcd", "abcde"} {
		d.Call(arg)
		time.Sleep(50 * time.Millisecond)
	}

	select {
	case <-rec.fired:
	case <-time.After(2 * time.Second):
		t.Fatal("debounced function never fired")
	}

	// Nothing else may arrive after the burst settles
	time.Sleep(400 * time.Millisecond)

	calls := rec.snapshot()
	if len(calls) != 1 {
		t.Fatalf("expected exactly 1 call, got %d: %v", len(calls), calls)
	}
	if calls[0] != "abcde" {
		t.Errorf("expected last argument 'abcde', got %q", calls[0])
	}
}

func TestDebouncer_SeparateQuietPeriods(t *testing.T) {
	rec := newRecorder()
	d := New(rec.fn, 50*time.Millisecond)

	d.Call("first")
	<-rec.fired
	d.Call("second")
	<-rec.fired

	calls := rec.snapshot()
	if len(calls) != 2 || calls[0] != "first" || calls[1] != "second" {
		t.Errorf("expected [first second], got %v", calls)
	}
}

func TestDebouncer_Immediate(t *testing.T) {
	rec := newRecorder()
	d := New(rec.fn, 200*time.Millisecond, WithImmediate())

	d.Call("one")
	d.Call("two")
	d.Call("three")

	calls := rec.snapshot()
	if len(calls) != 1 || calls[0] != "one" {
		t.Fatalf("immediate mode should fire once with the first argument, got %v", calls)
	}

	// After the window lapses the next call fires again
	time.Sleep(400 * time.Millisecond)
	d.Call("four")

	calls = rec.snapshot()
	if len(calls) != 2 || calls[1] != "four" {
		t.Errorf("expected second leading-edge call 'four', got %v", calls)
	}
	if d.Pending() {
		t.Error("immediate mode never schedules a trailing call")
	}
}

func TestDebouncer_CleanUpCancels(t *testing.T) {
	rec := newRecorder()
	d := New(rec.fn, 50*time.Millisecond)

	d.Call("stale")
	if !d.Pending() {
		t.Fatal("expected a pending call")
	}
	d.CleanUp()
	if d.Pending() {
		t.Error("CleanUp should clear the pending call")
	}

	time.Sleep(200 * time.Millisecond)
	if calls := rec.snapshot(); len(calls) != 0 {
		t.Fatalf("CleanUp must not invoke fn, got %v", calls)
	}

	// Still usable afterwards
	d.Call("fresh")
	select {
	case <-rec.fired:
	case <-time.After(time.Second):
		t.Fatal("expected call after CleanUp to fire")
	}
	if calls := rec.snapshot(); len(calls) != 1 || calls[0] != "fresh" {
		t.Errorf("expected [fresh], got %v", calls)
	}
}

func TestDebouncer_Flush(t *testing.T) {
	rec := newRecorder()
	d := New(rec.fn, time.Hour)

	d.Flush() // nothing pending, nothing happens
	if calls := rec.snapshot(); len(calls) != 0 {
		t.Fatalf("Flush with nothing pending should not call fn, got %v", calls)
	}

	d.Call("x")
	d.Call("y")
	d.Flush()

	calls := rec.snapshot()
	if len(calls) != 1 || calls[0] != "y" {
		t.Fatalf("Flush should run the latest pending call, got %v", calls)
	}
	if d.Pending() {
		t.Error("nothing should be pending after Flush")
	}
}

func TestDebouncer_ConcurrentCallers(t *testing.T) {
	rec := newRecorder()
	d := New(rec.fn, 100*time.Millisecond)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.Call("edit")
		}()
	}
	wg.Wait()

	select {
	case <-rec.fired:
	case <-time.After(2 * time.Second):
		t.Fatal("debounced function never fired")
	}
	time.Sleep(250 * time.Millisecond)

	if calls := rec.snapshot(); len(calls) != 1 {
		t.Errorf("expected one coalesced call, got %d", len(calls))
	}
}

func TestDebouncer_WaitBlocksOnRunningCall(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	d := New(func(string) {
		close(started)
		<-release
	}, time.Millisecond)

	d.Call("slow")
	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("debounced function never started")
	}

	done := make(chan struct{})
	go func() {
		d.Wait()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("Wait returned while fn was still running")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after fn finished")
	}
}

func TestDebouncer_WaitWithNothingRunning(t *testing.T) {
	d := New(func(string) {}, time.Hour)
	d.Call("pending")
	d.CleanUp()

	done := make(chan struct{})
	go func() {
		d.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Wait blocked with no running call")
	}
}
