package watch

import (
	"testing"
	"time"

	"ballotdesk/go-client/pkg/models"
)

func TestNilLimiterImposesNoDelay(t *testing.T) {
	var l *KindLimiter
	now := time.Now()
	for i := 0; i < 100; i++ {
		if d := l.Delay(models.EventVoteCast, now); d != 0 {
			t.Fatalf("nil limiter must impose no delay, got %s", d)
		}
	}
}

func TestInvalidArgsYieldNilLimiter(t *testing.T) {
	if NewKindLimiter(0, 1) != nil {
		t.Fatal("zero rate must yield nil")
	}
	if NewKindLimiter(1, 0) != nil {
		t.Fatal("zero burst must yield nil")
	}
}

func TestDrainedBucketReportsTheWait(t *testing.T) {
	l := NewKindLimiter(1, 2)
	now := time.Now()

	if d := l.Delay(models.EventVoteCast, now); d != 0 {
		t.Fatalf("first token must be immediate, got %s", d)
	}
	if d := l.Delay(models.EventVoteCast, now); d != 0 {
		t.Fatalf("burst of 2 must admit two immediate tokens, got %s", d)
	}
	d := l.Delay(models.EventVoteCast, now)
	if d <= 0 || d > time.Second {
		t.Fatalf("drained bucket at 1 rps must report a wait within a second, got %s", d)
	}
	if d = l.Delay(models.EventVoteCast, now.Add(3*time.Second)); d != 0 {
		t.Fatalf("bucket must refill over time, got %s", d)
	}
}

func TestKindsHaveIndependentBuckets(t *testing.T) {
	l := NewKindLimiter(1, 1)
	now := time.Now()

	if d := l.Delay(models.EventVoteCast, now); d != 0 {
		t.Fatalf("first vote event must be immediate, got %s", d)
	}
	if d := l.Delay(models.EventVoteCast, now); d <= 0 {
		t.Fatal("second vote event must be delayed")
	}
	if d := l.Delay(models.EventFundChanged, now); d != 0 {
		t.Fatalf("a different kind must not share the drained bucket, got %s", d)
	}
}
