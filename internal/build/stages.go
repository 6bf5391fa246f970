package build

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
)

// Stage is a discrete unit of work in the site build.
type Stage func(ctx context.Context, bs *buildState) error

// StageDef pairs a stage with its diagnostic name.
type StageDef struct {
	Name string
	Fn   Stage
}

// StageErrorKind enumerates structured stage error categories.
type StageErrorKind string

const (
	StageErrorFatal    StageErrorKind = "fatal"    // Build must abort.
	StageErrorCanceled StageErrorKind = "canceled" // Context cancellation.
)

// StageError is a structured error carrying category and underlying cause.
type StageError struct {
	Kind  StageErrorKind
	Stage string
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s stage %s: %v", e.Kind, e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

func newFatalStageError(stage string, err error) *StageError {
	return &StageError{Kind: StageErrorFatal, Stage: stage, Err: err}
}
func newCanceledStageError(stage string, err error) *StageError {
	return &StageError{Kind: StageErrorCanceled, Stage: stage, Err: err}
}

// runStages executes stages in order, recording timing and stopping on the
// first error. Plugin hook stages never return an error (hook failures are
// isolated inside the pipeline), so every error reaching this loop aborts
// the pass.
func (b *Builder) runStages(ctx context.Context, bs *buildState, stages []StageDef) error {
	for _, st := range stages {
		select {
		case <-ctx.Done():
			return newCanceledStageError(st.Name, ctx.Err())
		default:
		}

		t0 := time.Now()
		err := st.Fn(ctx, bs)
		dur := time.Since(t0)
		bs.timings[st.Name] = dur
		b.Recorder.ObserveStage(st.Name, dur)
		slog.Debug("stage complete",
			logfields.Stage(st.Name),
			logfields.BuildID(bs.buildID),
			logfields.DurationMS(float64(dur.Milliseconds())))

		if err != nil {
			var se *StageError
			if !errors.As(err, &se) {
				se = newFatalStageError(st.Name, err)
			}
			return se
		}
	}
	return nil
}
