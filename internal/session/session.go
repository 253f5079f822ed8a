// Package session implements the driver that feeds user turns into a
// conversation and reads assistant turns out. It owns the single live
// conversation state of the process and is the only boundary where
// completion failures are flattened into display strings.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/undergrid/recall/internal/completion"
	"github.com/undergrid/recall/internal/conversation"
	"github.com/undergrid/recall/internal/ctxengine"
	"github.com/undergrid/recall/internal/snapshot"
	"github.com/undergrid/recall/internal/usage"
)

// Recorder receives metrics callbacks from the session. Implemented by
// the gateway metrics; a nil Recorder disables recording.
type Recorder interface {
	RecordExchange(totalTokens int, latency time.Duration)
	RecordCompaction(tokensSaved int, failed bool)
	RecordError()
}

// Deps are the collaborators of a Session. Adapter, Compactor, and
// Store are required; the rest are optional.
type Deps struct {
	Adapter   *completion.Adapter
	Compactor *ctxengine.Compactor
	Estimator ctxengine.Estimator
	Store     *snapshot.Store
	Journal   *usage.Journal
	Recorder  Recorder
	Sink      Sink
	Logger    *slog.Logger
}

// Session drives one conversation. Exchanges are strictly serialised:
// a mutex guarantees the {append user, append assistant, maybe
// compact} sequence is never interleaved, so a caller can never
// observe a user-turn count past a threshold multiple without
// compaction having been attempted.
type Session struct {
	mu        sync.Mutex
	state     *conversation.State
	adapter   *completion.Adapter
	compactor *ctxengine.Compactor
	estimator ctxengine.Estimator
	store     *snapshot.Store
	journal   *usage.Journal
	recorder  Recorder
	sink      Sink
	logger    *slog.Logger
	tracer    trace.Tracer
}

// New creates a Session with a fresh, empty conversation state.
func New(deps Deps) *Session {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	estimator := deps.Estimator
	if estimator == nil {
		estimator = ctxengine.NewCharEstimator(0)
	}
	return &Session{
		state:     conversation.New(),
		adapter:   deps.Adapter,
		compactor: deps.Compactor,
		estimator: estimator,
		store:     deps.Store,
		journal:   deps.Journal,
		recorder:  deps.Recorder,
		sink:      deps.Sink,
		logger:    logger,
		tracer:    otel.Tracer("recall/session"),
	}
}

// Submit runs one exchange: append the user turn, obtain the assistant
// turn, evaluate compaction, and persist a snapshot when compaction
// fired. It always returns displayable text; a transport failure
// yields the flattened error string where the reply would appear.
func (s *Session) Submit(ctx context.Context, text string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, span := s.tracer.Start(ctx, "session.submit")
	defer span.End()

	started := time.Now()
	s.state.AppendUser(text)

	res := s.adapter.Complete(ctx, s.state.Turns())
	reply := res.Display()
	s.state.AppendAssistant(reply)

	span.SetAttributes(
		attribute.Int("recall.turns", s.state.Len()),
		attribute.Int("recall.total_tokens", res.Usage.TotalTokens),
		attribute.Bool("recall.failed", res.Failed()),
	)

	if res.Failed() {
		if s.recorder != nil {
			s.recorder.RecordError()
		}
	} else if s.recorder != nil {
		s.recorder.RecordExchange(res.Usage.TotalTokens, time.Since(started))
	}
	s.record(ctx, usage.KindExchange, res)
	s.publish(Event{
		Type:        EventExchange,
		Timestamp:   time.Now(),
		Turns:       s.state.Len(),
		TotalTokens: res.Usage.TotalTokens,
		Failed:      res.Failed(),
	})

	s.maybeCompact(ctx)
	return reply
}

// maybeCompact evaluates the trigger and, if it fired, saves a
// snapshot of the post-compaction state. Snapshot failures are logged,
// never propagated: losing a save must not break the exchange.
func (s *Session) maybeCompact(ctx context.Context) {
	ev := s.compactor.MaybeCompact(ctx, s.state)
	if ev == nil {
		return
	}

	if s.recorder != nil {
		s.recorder.RecordCompaction(ev.TokensSaved(), ev.Failed)
	}
	if s.journal != nil {
		if err := s.journal.Record(ctx, usage.KindCompaction, ev.Usage); err != nil {
			s.logger.Warn("usage journal write failed", "error", err)
		}
	}

	id, err := s.store.Save(s.state, "")
	if err != nil {
		s.logger.Error("snapshot save after compaction failed", "error", err)
	} else {
		s.logger.Info("snapshot saved", "id", id)
	}

	s.publish(Event{
		Type:         EventCompaction,
		Timestamp:    time.Now(),
		Messages:     ev.Messages,
		TokensBefore: ev.TokensBefore,
		TokensAfter:  ev.TokensAfter,
		Failed:       ev.Failed,
		SnapshotID:   id,
	})
}

func (s *Session) record(ctx context.Context, kind string, res completion.Result) {
	if s.journal == nil || res.Failed() {
		return
	}
	if err := s.journal.Record(ctx, kind, res.Usage); err != nil {
		s.logger.Warn("usage journal write failed", "error", err)
	}
}

func (s *Session) publish(ev Event) {
	if s.sink != nil {
		s.sink(ev)
	}
}

// Resume replaces the live state with the turn sequence of a persisted
// snapshot. The restored sequence is installed exactly as saved.
func (s *Session) Resume(id string) error {
	turns, err := s.store.Load(id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.state = conversation.Restore(turns)
	s.mu.Unlock()

	s.logger.Info("session resumed", "id", id, "messages", len(turns))
	return nil
}

// List enumerates persisted snapshot identifiers, most recent first.
func (s *Session) List() ([]string, error) {
	return s.store.List()
}

// SaveNow persists the current state immediately, independent of
// compaction. Used at session end and by the autosave job.
func (s *Session) SaveNow() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Save(s.state, "")
}

// Status describes the live conversation for the status page.
type Status struct {
	Model           string    `json:"model"`
	Turns           int       `json:"turns"`
	UserTurns       int       `json:"user_turns"`
	EstimatedTokens int       `json:"estimated_tokens"`
	CreatedAt       time.Time `json:"created_at"`
}

// Status returns a point-in-time view of the conversation.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		Model:           s.adapter.ModelName(),
		Turns:           s.state.Len(),
		UserTurns:       s.state.UserTurnCount(),
		EstimatedTokens: s.estimator.Estimate(s.state.Turns()),
		CreatedAt:       s.state.CreatedAt(),
	}
}

// StatusLine renders Status as a single human-readable line.
func (s *Session) StatusLine() string {
	st := s.Status()
	return fmt.Sprintf("%s | %d turns (%d from you) | ~%d tokens | started %s",
		st.Model, st.Turns, st.UserTurns, st.EstimatedTokens,
		st.CreatedAt.Format("2006-01-02 15:04"))
}
