// Package planner owns the single shared itinerary document. It runs the
// generation lifecycle, applies copy-on-write mutations, persists to the
// slot store and keeps the list/map selection in step with the document.
package planner

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/starford/itinera/internal/apperr"
	"github.com/starford/itinera/internal/checksum"
	"github.com/starford/itinera/internal/generator"
	"github.com/starford/itinera/internal/metrics"
	"github.com/starford/itinera/internal/models"
	"github.com/starford/itinera/internal/selection"
	"github.com/starford/itinera/internal/storage"
)

// State is the lifecycle state of the document cell.
type State string

const (
	StateIdle       State = "idle"
	StateGenerating State = "generating"
	StateReady      State = "ready"
	StateFailed     State = "failed"
)

// Event kinds passed to the notifier.
const (
	EventGenerating = "generation.started"
	EventFailed     = "generation.failed"
	EventReplaced   = "itinerary.replaced"
	EventUpdated    = "itinerary.updated"
	EventLoaded     = "itinerary.loaded"
	EventSaved      = "itinerary.saved"
	EventCleared    = "itinerary.cleared"
	EventSelection  = "selection.changed"
)

// DefaultErrorMessage is recorded when a failure carries no text.
const DefaultErrorMessage = "Failed to generate itinerary"

// Notifier is told about every observable change.
type Notifier func(kind, revision string)

// Mirror keeps a remote copy of the document in step with local saves and
// activity edits. generator.Client implements it.
type Mirror interface {
	SaveRemote(ctx context.Context, it *models.Itinerary) error
	UpdateRemoteActivity(ctx context.Context, itineraryID string, dayIndex, activityIndex int, patch models.ActivityPatch) error
}

var _ Mirror = (*generator.Client)(nil)

// Options configures a Service. Provider and Slots are required.
type Options struct {
	Provider generator.Provider
	Slots    storage.Slots
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
	Notify   Notifier
	// Mirror, when set, receives saves and activity updates. Its failures
	// are logged; the local document stays authoritative.
	Mirror Mirror
	// Fencing lets only the most recently issued Generate install its
	// result. When false the last call to settle wins.
	Fencing bool
	// Timeout bounds each provider call; zero means no bound.
	Timeout time.Duration
	Now     func() time.Time
}

// Service is safe for concurrent use.
type Service struct {
	provider generator.Provider
	slots    storage.Slots
	logger   *slog.Logger
	metrics  *metrics.Metrics
	notify   Notifier
	mirror   Mirror
	fencing  bool
	timeout  time.Duration
	now      func() time.Time

	mu       sync.Mutex
	doc      *models.Itinerary
	revision string
	settled  State
	lastErr  string
	seq      uint64 // id of the most recently issued generation
	latest   bool   // the call with id seq is still running
	inFlight int
	sel      selection.State
}

// New creates a Service in the idle state with no document.
func New(opts Options) *Service {
	s := &Service{
		provider: opts.Provider,
		slots:    opts.Slots,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
		notify:   opts.Notify,
		mirror:   opts.Mirror,
		fencing:  opts.Fencing,
		timeout:  opts.Timeout,
		now:      opts.Now,
		settled:  StateIdle,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Document is an itinerary together with its revision.
type Document struct {
	Itinerary *models.Itinerary `json:"itinerary"`
	Revision  string            `json:"revision"`
}

// Snapshot is a consistent view of the whole cell.
type Snapshot struct {
	State     State             `json:"state"`
	Itinerary *models.Itinerary `json:"itinerary"`
	Revision  string            `json:"revision,omitempty"`
	Error     string            `json:"error,omitempty"`
	InFlight  int               `json:"inFlight"`
	Selection selection.State   `json:"selection"`
}

// Snapshot returns the current state. The itinerary must be treated as
// read-only; it is shared with the cell.
func (s *Service) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		State:     s.stateLocked(),
		Itinerary: s.doc,
		Revision:  s.revision,
		Error:     s.lastErr,
		InFlight:  s.inFlight,
		Selection: s.sel.Clone(),
	}
}

// Current returns the document, or ErrNoItinerary.
func (s *Service) Current() (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return Document{}, apperr.ErrNoItinerary
	}
	return Document{Itinerary: s.doc, Revision: s.revision}, nil
}

func (s *Service) stateLocked() State {
	if s.fencing && s.latest {
		return StateGenerating
	}
	if !s.fencing && s.inFlight > 0 {
		return StateGenerating
	}
	return s.settled
}

// install replaces the document and resets the selection for it.
func (s *Service) installLocked(it *models.Itinerary) {
	s.doc = it
	s.revision = checksum.Of(it)
	s.settled = StateReady
	s.lastErr = ""
	s.sel = selection.State{}
	s.sel.ExpandAll(it)
}

func (s *Service) emit(kind, revision string) {
	if s.notify != nil {
		s.notify(kind, revision)
	}
}

// ChatReply is the assistant-style text shown for a failed request.
func ChatReply(err error) string {
	msg := DefaultErrorMessage
	if err != nil && strings.TrimSpace(err.Error()) != "" {
		msg = err.Error()
	}
	return "Sorry, I encountered an error: " + msg + ". Please try again."
}

// errorMessage derives the recorded failure text from err.
func errorMessage(err error) string {
	var ge *GenerateError
	if errors.As(err, &ge) {
		return ge.Message
	}
	if err == nil || strings.TrimSpace(err.Error()) == "" {
		return DefaultErrorMessage
	}
	return err.Error()
}

// requireDoc is a tiny guard shared by read paths.
func (s *Service) requireDoc(ctx context.Context) (*models.Itinerary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return nil, apperr.ErrNoItinerary
	}
	return s.doc, nil
}
