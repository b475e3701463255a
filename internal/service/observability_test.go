package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/alexanderramin/taskup/internal/domain"
)

type recordingObserver struct {
	events []UseCaseEvent
}

func (r *recordingObserver) ObserveUseCase(_ context.Context, e UseCaseEvent) {
	r.events = append(r.events, e)
}

func TestZapUseCaseObserver(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	obs := NewZapUseCaseObserver(zap.New(core))

	obs.ObserveUseCase(context.Background(), UseCaseEvent{
		Name:     "create-task",
		Duration: 12 * time.Millisecond,
		Success:  true,
		Fields:   map[string]any{"project_id": "p1"},
	})
	obs.ObserveUseCase(context.Background(), UseCaseEvent{
		Name: "create-task",
		Err:  errors.New("boom"),
	})

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "service_use_case", entries[0].Message)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "p1", entries[0].ContextMap()["project_id"])
	assert.Equal(t, int64(12), entries[0].ContextMap()["duration_ms"])
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "boom", entries[1].ContextMap()["error"])
}

func TestNewZapUseCaseObserver_NilLogger(t *testing.T) {
	assert.IsType(t, NoopUseCaseObserver{}, NewZapUseCaseObserver(nil))
}

func TestMultiUseCaseObserver(t *testing.T) {
	a, b := &recordingObserver{}, &recordingObserver{}
	obs := NewMultiUseCaseObserver(a, nil, b)
	obs.ObserveUseCase(context.Background(), UseCaseEvent{Name: "x"})

	assert.Len(t, a.events, 1)
	assert.Len(t, b.events, 1)
	assert.Same(t, a, NewMultiUseCaseObserver(nil, a))
	assert.IsType(t, NoopUseCaseObserver{}, NewMultiUseCaseObserver())
}

func TestServiceReportsUseCases(t *testing.T) {
	f := newFixture(t)
	rec := &recordingObserver{}
	svc := NewStakeholderService(f.stakeholders, f.uow, rec)

	ana := f.addUser(t, "Ana")
	require.NoError(t, svc.Create(f.asOwner(), &domain.Stakeholder{ProjectID: f.project.ID, UserID: ana.ID, Percentage: 70}))
	require.Error(t, svc.Create(f.asOwner(), &domain.Stakeholder{ProjectID: f.project.ID, UserID: f.addUser(t, "Ben").ID, Percentage: 40}))

	require.Len(t, rec.events, 2)
	assert.Equal(t, "create-stakeholder", rec.events[0].Name)
	assert.True(t, rec.events[0].Success)
	assert.Equal(t, 70.0, rec.events[0].Fields["allocated_total"])
	assert.False(t, rec.events[1].Success)
	assert.Error(t, rec.events[1].Err)
}
