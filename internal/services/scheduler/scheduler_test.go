package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/supportdesk/internal/services/embeddings"
)

type signalRunner struct {
	calls chan struct{}
}

func (r *signalRunner) Run(ctx context.Context) (*embeddings.BackfillStats, error) {
	r.calls <- struct{}{}
	return &embeddings.BackfillStats{Embedded: 1}, nil
}

func TestScheduler_RunNow(t *testing.T) {
	runner := &signalRunner{calls: make(chan struct{}, 1)}
	scheduler := NewScheduler(runner, arbor.NewLogger())

	scheduler.RunNow()

	select {
	case <-runner.calls:
	case <-time.After(2 * time.Second):
		t.Fatal("backfill was not triggered")
	}
}

func TestScheduler_InvalidSchedule(t *testing.T) {
	scheduler := NewScheduler(&signalRunner{calls: make(chan struct{}, 1)}, arbor.NewLogger())

	err := scheduler.Start("every tuesday")
	assert.Error(t, err)
}

func TestScheduler_StartStop(t *testing.T) {
	scheduler := NewScheduler(&signalRunner{calls: make(chan struct{}, 1)}, arbor.NewLogger())

	assert.NoError(t, scheduler.Start(""))
	scheduler.Stop()
}
