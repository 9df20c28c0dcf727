package form

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncer_LastWriteWins(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	defer d.Stop()

	var calls atomic.Int32
	var last atomic.Int32

	for i := 1; i <= 5; i++ {
		v := int32(i)
		d.Schedule("amount", func() {
			calls.Add(1)
			last.Store(v)
		})
	}

	time.Sleep(100 * time.Millisecond)

	if got := calls.Load(); got != 1 {
		t.Fatalf("calls = %d, want 1", got)
	}
	if got := last.Load(); got != 5 {
		t.Fatalf("last = %d, want 5", got)
	}
	if d.Pending("amount") {
		t.Fatalf("nothing must be pending after the call")
	}
}

func TestDebouncer_KeysIndependent(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	defer d.Stop()

	var calls atomic.Int32
	d.Schedule("email", func() { calls.Add(1) })
	d.Schedule("password", func() { calls.Add(1) })

	time.Sleep(100 * time.Millisecond)

	if got := calls.Load(); got != 2 {
		t.Fatalf("calls = %d, want 2", got)
	}
}

func TestDebouncer_Cancel(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	defer d.Stop()

	var calls atomic.Int32
	d.Schedule("email", func() { calls.Add(1) })
	d.Cancel("email")

	time.Sleep(60 * time.Millisecond)

	if got := calls.Load(); got != 0 {
		t.Fatalf("calls = %d, want 0", got)
	}
}

func TestDebouncer_StopDropsPending(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)

	var calls atomic.Int32
	d.Schedule("email", func() { calls.Add(1) })
	d.Stop()
	d.Schedule("email", func() { calls.Add(1) })

	time.Sleep(60 * time.Millisecond)

	if got := calls.Load(); got != 0 {
		t.Fatalf("calls = %d, want 0", got)
	}
}
