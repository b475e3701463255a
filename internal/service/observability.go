package service

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"
)

// UseCaseEvent captures lightweight execution telemetry for a service use case.
type UseCaseEvent struct {
	Name      string
	Duration  time.Duration
	Success   bool
	Err       error
	Fields    map[string]any
	StartedAt time.Time
}

// UseCaseObserver receives use-case execution events.
type UseCaseObserver interface {
	ObserveUseCase(ctx context.Context, event UseCaseEvent)
}

// NoopUseCaseObserver ignores all events.
type NoopUseCaseObserver struct{}

func (NoopUseCaseObserver) ObserveUseCase(context.Context, UseCaseEvent) {}

type zapUseCaseObserver struct {
	logger *zap.Logger
}

// NewZapUseCaseObserver logs service use-case events through logger.
func NewZapUseCaseObserver(logger *zap.Logger) UseCaseObserver {
	if logger == nil {
		return NoopUseCaseObserver{}
	}
	return &zapUseCaseObserver{logger: logger}
}

func (o *zapUseCaseObserver) ObserveUseCase(_ context.Context, event UseCaseEvent) {
	fields := make([]zap.Field, 0, 4+len(event.Fields))
	fields = append(fields,
		zap.String("use_case", event.Name),
		zap.Int64("duration_ms", event.Duration.Milliseconds()),
		zap.Bool("success", event.Success),
	)
	keys := make([]string, 0, len(event.Fields))
	for k := range event.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fields = append(fields, zap.Any(k, event.Fields[k]))
	}
	if event.Err != nil {
		o.logger.Error("service_use_case", append(fields, zap.Error(event.Err))...)
		return
	}
	o.logger.Info("service_use_case", fields...)
}

type multiUseCaseObserver []UseCaseObserver

// NewMultiUseCaseObserver fans each event out to every non-nil observer.
func NewMultiUseCaseObserver(observers ...UseCaseObserver) UseCaseObserver {
	var out multiUseCaseObserver
	for _, obs := range observers {
		if obs != nil {
			out = append(out, obs)
		}
	}
	switch len(out) {
	case 0:
		return NoopUseCaseObserver{}
	case 1:
		return out[0]
	}
	return out
}

func (m multiUseCaseObserver) ObserveUseCase(ctx context.Context, event UseCaseEvent) {
	for _, obs := range m {
		obs.ObserveUseCase(ctx, event)
	}
}

func useCaseObserverOrNoop(observers []UseCaseObserver) UseCaseObserver {
	return NewMultiUseCaseObserver(observers...)
}

// observe reports a finished use case. Call it deferred with a pointer to
// the named error result.
func observe(ctx context.Context, obs UseCaseObserver, name string, startedAt time.Time, fields map[string]any, err *error) {
	var e error
	if err != nil {
		e = *err
	}
	obs.ObserveUseCase(ctx, UseCaseEvent{
		Name:      name,
		StartedAt: startedAt,
		Duration:  time.Since(startedAt),
		Success:   e == nil,
		Err:       e,
		Fields:    fields,
	})
}
