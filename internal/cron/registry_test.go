package cron

import (
	"context"
	"testing"
)

type namedJob struct {
	name string
}

func (j *namedJob) Name() string                  { return j.name }
func (j *namedJob) Run(ctx context.Context) error { return nil }

func TestRegistry_preservesOrderAndSkipsNil(t *testing.T) {
	first := &namedJob{name: "first"}
	second := &namedJob{name: "second"}

	registry := NewRegistry(first, nil, second)
	registry.Register(nil)
	registry.Register(&namedJob{name: "third"})

	jobs := registry.Jobs()
	if len(jobs) != 3 {
		t.Fatalf("expected 3 jobs, got %d", len(jobs))
	}
	for i, want := range []string{"first", "second", "third"} {
		if jobs[i].Name() != want {
			t.Fatalf("job %d = %s, want %s", i, jobs[i].Name(), want)
		}
	}
}
