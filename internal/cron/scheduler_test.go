package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakePruner struct {
	cutoffs []time.Time
	deleted int64
	err     error
	panic   bool
}

func (p *fakePruner) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	if p.panic {
		panic("boom")
	}
	p.cutoffs = append(p.cutoffs, cutoff)
	return p.deleted, p.err
}

func TestPruneUsesRetentionCutoff(t *testing.T) {
	pruner := &fakePruner{deleted: 3}
	s := New(pruner, "0 0 3 * * *", 48*time.Hour, zap.NewNop())
	now := time.Date(2024, 5, 10, 3, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	s.pruneWebhookLog()

	require.Len(t, pruner.cutoffs, 1)
	assert.Equal(t, now.Add(-48*time.Hour), pruner.cutoffs[0])
}

func TestPruneLogsFailure(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	s := New(&fakePruner{err: errors.New("db down")}, "0 0 3 * * *", time.Hour, zap.New(core))

	s.pruneWebhookLog()

	assert.Equal(t, 1, logs.FilterMessage("Failed to prune webhook log").Len())
}

func TestPruneRecoversFromPanic(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	s := New(&fakePruner{panic: true}, "0 0 3 * * *", time.Hour, zap.New(core))

	assert.NotPanics(t, s.pruneWebhookLog)
	assert.Equal(t, 1, logs.FilterMessage("Cron job panicked").Len())
}

func TestStartRejectsBadSchedule(t *testing.T) {
	s := New(&fakePruner{}, "not a schedule", time.Hour, zap.NewNop())
	assert.Error(t, s.Start())
}

func TestStartAndStop(t *testing.T) {
	s := New(&fakePruner{}, "0 0 3 * * *", time.Hour, zap.NewNop())
	require.NoError(t, s.Start())

	select {
	case <-s.Stop().Done():
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}
