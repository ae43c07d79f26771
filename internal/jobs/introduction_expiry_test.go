package jobs

import (
	"context"
	"errors"
	"testing"

	"carmatch_backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeExpirer struct {
	calls int
	count int64
	err   error
}

func (f *fakeExpirer) ExpireOverdue(context.Context) (int64, error) {
	f.calls++
	return f.count, f.err
}

func TestIntroductionExpiryJob_RunOnce(t *testing.T) {
	exp := &fakeExpirer{count: 4}
	job := NewIntroductionExpiryJob(exp, zap.NewNop(), &config.Config{})

	n, err := job.RunOnce(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	assert.Equal(t, 1, exp.calls)
}

func TestIntroductionExpiryJob_RunOnceError(t *testing.T) {
	exp := &fakeExpirer{err: errors.New("db down")}
	job := NewIntroductionExpiryJob(exp, zap.NewNop(), &config.Config{})

	_, err := job.RunOnce(context.Background())

	assert.Error(t, err)
}

func TestIntroductionExpiryJob_SetupAndStart(t *testing.T) {
	t.Run("valid schedule", func(t *testing.T) {
		job := NewIntroductionExpiryJob(&fakeExpirer{}, zap.NewNop(), &config.Config{IntroductionExpiryJobSchedule: "@hourly"})
		require.NoError(t, job.SetupAndStart())
		assert.Len(t, job.cronScheduler.Entries(), 1)
		job.Stop()
	})

	t.Run("invalid schedule", func(t *testing.T) {
		job := NewIntroductionExpiryJob(&fakeExpirer{}, zap.NewNop(), &config.Config{IntroductionExpiryJobSchedule: "every tuesday"})
		assert.Error(t, job.SetupAndStart())
	})

	t.Run("no schedule", func(t *testing.T) {
		job := NewIntroductionExpiryJob(&fakeExpirer{}, zap.NewNop(), &config.Config{})
		assert.NoError(t, job.SetupAndStart())
		assert.Empty(t, job.cronScheduler.Entries())
	})
}

func TestCronLogger_PairsKeysAndValues(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	cl := NewCronLogger(zap.New(core))

	cl.Info("schedule", "entry", 1, "dangling")
	cl.Error(errors.New("boom"), "panic", "job", "expiry")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, int64(1), entries[0].ContextMap()["entry"])
	assert.Equal(t, "MISSING_VALUE", entries[0].ContextMap()["dangling"])
	assert.Equal(t, "boom", entries[1].ContextMap()["error"])
}
