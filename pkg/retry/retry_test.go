package retry

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestPolicyDelays(t *testing.T) {
	p := Policy{MaxAttempts: 5, BaseDelay: 100 * time.Millisecond, Multiplier: 2, MaxDelay: 300 * time.Millisecond}
	want := []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 300 * time.Millisecond, 300 * time.Millisecond}
	if got := p.Delays(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Delays() = %v, want %v", got, want)
	}
	if got := DefaultPolicy().Budget(time.Second); got != 2*time.Second+200*time.Millisecond {
		t.Fatalf("Budget() = %v", got)
	}
}

func TestDoRetriesUntilSuccess(t *testing.T) {
	p := Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, Multiplier: 2, MaxDelay: 5 * time.Millisecond}
	calls := 0
	got, err := Do(context.Background(), p, func(context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("boom")
		}
		return "ok", nil
	})
	if err != nil || got != "ok" {
		t.Fatalf("Do = %q, %v", got, err)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
}

func TestDoStopsAtMaxAttempts(t *testing.T) {
	p := Policy{MaxAttempts: 2, BaseDelay: time.Millisecond, Multiplier: 2, MaxDelay: time.Millisecond}
	calls := 0
	notified := 0
	boom := errors.New("boom")
	_, err := Do(context.Background(), p, func(context.Context) (int, error) {
		calls++
		return 0, boom
	}, func(error, time.Duration) { notified++ })
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if calls != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}
	if notified != 1 {
		t.Fatalf("notified = %d, want 1", notified)
	}
}

func TestDoPermanentNotRetried(t *testing.T) {
	p := Policy{MaxAttempts: 4, BaseDelay: time.Millisecond, Multiplier: 2, MaxDelay: time.Millisecond}
	calls := 0
	empty := errors.New("empty")
	_, err := Do(context.Background(), p, func(context.Context) (int, error) {
		calls++
		return 0, Permanent(empty)
	})
	if !errors.Is(err, empty) {
		t.Fatalf("err = %v, want empty", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}
