package cron

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/defactolounge/lounge-backend/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

type fakeIntentExpirer struct {
	batches []int
	err     error
	cutoffs []time.Time
	calls   int
}

func (f *fakeIntentExpirer) ExpirePending(ctx context.Context, olderThan time.Time, batchSize int) (int, error) {
	f.cutoffs = append(f.cutoffs, olderThan)
	if f.calls < len(f.batches) {
		count := f.batches[f.calls]
		f.calls++
		return count, nil
	}
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	return 0, nil
}

func TestIntentExpiryJob_sweepsUntilBacklogDrained(t *testing.T) {
	now := time.Date(2026, 8, 27, 3, 0, 0, 0, time.UTC)
	expirer := &fakeIntentExpirer{batches: []int{2, 2, 1}}

	job, err := NewIntentExpiryJob(IntentExpiryJobParams{
		Logger:    testLogger(),
		Intents:   expirer,
		TTL:       12 * time.Hour,
		BatchSize: 2,
	})
	if err != nil {
		t.Fatalf("NewIntentExpiryJob: %v", err)
	}
	job.(*intentExpiryJob).now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if expirer.calls != 3 {
		t.Fatalf("expected 3 sweeps, got %d", expirer.calls)
	}
	want := now.Add(-12 * time.Hour)
	for _, cutoff := range expirer.cutoffs {
		if !cutoff.Equal(want) {
			t.Fatalf("unexpected cutoff %s, want %s", cutoff, want)
		}
	}
}

func TestIntentExpiryJob_surfacesSweepError(t *testing.T) {
	expirer := &fakeIntentExpirer{err: errors.New("db unavailable")}

	job, err := NewIntentExpiryJob(IntentExpiryJobParams{
		Logger:  testLogger(),
		Intents: expirer,
	})
	if err != nil {
		t.Fatalf("NewIntentExpiryJob: %v", err)
	}

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected sweep error")
	}
}

func TestIntentExpiryJob_requiresDependencies(t *testing.T) {
	if _, err := NewIntentExpiryJob(IntentExpiryJobParams{Intents: &fakeIntentExpirer{}}); err == nil {
		t.Fatal("expected error without logger")
	}
	if _, err := NewIntentExpiryJob(IntentExpiryJobParams{Logger: testLogger()}); err == nil {
		t.Fatal("expected error without intents service")
	}
}
