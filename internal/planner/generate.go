package planner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/starford/itinera/internal/apperr"
	"github.com/starford/itinera/internal/metrics"
	"github.com/starford/itinera/internal/models"
)

// GenerateError is a failed generation. Message is the text recorded as
// the cell's error.
type GenerateError struct {
	Message string
	Err     error
}

func (e *GenerateError) Error() string { return e.Message }
func (e *GenerateError) Unwrap() error { return e.Err }

// GenerateResult is returned by a successful Generate.
type GenerateResult struct {
	Success   bool              `json:"success"`
	Message   string            `json:"message"`
	Itinerary *models.Itinerary `json:"itinerary"`
	Revision  string            `json:"revision"`
}

// Generate asks the provider for an itinerary and installs it. On failure
// the previous document is kept and the error is recorded. With fencing
// on, a call overtaken by a newer one returns ErrSuperseded and changes
// nothing.
func (s *Service) Generate(ctx context.Context, prompt string) (*GenerateResult, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, apperr.ErrInvalidPrompt
	}

	s.mu.Lock()
	s.seq++
	id := s.seq
	s.latest = true
	s.inFlight++
	s.lastErr = ""
	rev := s.revision
	s.mu.Unlock()
	s.emit(EventGenerating, rev)

	s.logger.Info("planner: generating", slog.Uint64("seq", id), slog.Int("prompt_len", len(prompt)))

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := s.now()
	res, err := s.provider.Generate(ctx, prompt)
	took := s.now().Sub(start)
	if err == nil && (res == nil || res.Itinerary == nil) {
		msg := ""
		if res != nil {
			msg = res.Message
		}
		err = errors.New(msg)
	}

	s.mu.Lock()
	s.inFlight--
	if s.fencing {
		if id != s.seq {
			s.mu.Unlock()
			s.metrics.Generation(metrics.OutcomeSuperseded, took)
			s.logger.Info("planner: generation superseded", slog.Uint64("seq", id))
			return nil, apperr.ErrSuperseded
		}
		s.latest = false
	}

	if err != nil {
		msg := errorMessage(err)
		s.settled = StateFailed
		s.lastErr = msg
		rev := s.revision
		s.mu.Unlock()

		s.metrics.Generation(metrics.OutcomeFailure, took)
		s.logger.Warn("planner: generation failed", slog.Uint64("seq", id), slog.String("error", msg))
		s.emit(EventFailed, rev)
		return nil, &GenerateError{Message: msg, Err: err}
	}

	it := res.Itinerary
	it.Normalize()
	s.installLocked(it)
	out := &GenerateResult{
		Success:   true,
		Message:   res.Message,
		Itinerary: it,
		Revision:  s.revision,
	}
	s.mu.Unlock()

	s.metrics.Generation(metrics.OutcomeSuccess, took)
	s.logger.Info("planner: itinerary ready",
		slog.Uint64("seq", id),
		slog.String("destination", it.Destination),
		slog.Int("days", len(it.Days)),
		slog.Duration("took", took.Round(time.Millisecond)))
	s.emit(EventReplaced, out.Revision)
	return out, nil
}

// Clear drops the document, the recorded error and the selection. Saved
// slots are left alone. With fencing on, generations still running are
// superseded.
func (s *Service) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("planner: clear: %w", err)
	}
	s.mu.Lock()
	s.doc = nil
	s.revision = ""
	s.lastErr = ""
	s.settled = StateIdle
	s.sel = selectionReset()
	if s.fencing && s.latest {
		s.seq++
		s.latest = false
	}
	s.mu.Unlock()
	s.emit(EventCleared, "")
	return nil
}
