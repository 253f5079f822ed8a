package session_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/undergrid/recall/internal/completion"
	"github.com/undergrid/recall/internal/conversation"
	"github.com/undergrid/recall/internal/ctxengine"
	"github.com/undergrid/recall/internal/provider"
	"github.com/undergrid/recall/internal/provider/providertest"
	"github.com/undergrid/recall/internal/session"
	"github.com/undergrid/recall/internal/snapshot"
)

// newTestSession wires a session around the given mock provider with
// threshold 6 and a temp snapshot store.
func newTestSession(t *testing.T, mock *providertest.MockProvider) (*session.Session, *snapshot.Store) {
	t.Helper()

	adapter := completion.NewAdapter(mock, completion.Options{}, nil)
	estimator := ctxengine.NewCharEstimator(4)
	compactor := ctxengine.NewCompactor(adapter, estimator, ctxengine.Config{Threshold: 6}, nil)
	store := snapshot.New(t.TempDir())

	return session.New(session.Deps{
		Adapter:   adapter,
		Compactor: compactor,
		Estimator: estimator,
		Store:     store,
	}), store
}

// echoProvider answers every request with a canned reply, except
// summarization requests (recognised by their fixed system prompt),
// which get the summary text.
func echoProvider(reply, summary string) *providertest.MockProvider {
	return &providertest.MockProvider{
		CompleteFunc: func(_ context.Context, req provider.CompletionRequest) (provider.CompletionResponse, error) {
			content := reply
			if len(req.Messages) > 0 && strings.Contains(req.Messages[0].Content, "summaries of conversations") {
				content = summary
			}
			return provider.CompletionResponse{
				Content: content,
				Usage:   provider.TokenUsage{PromptTokens: 7, CompletionTokens: 3, TotalTokens: 10},
			}, nil
		},
	}
}

func TestSession_Submit_SteadyState(t *testing.T) {
	t.Parallel()

	sess, _ := newTestSession(t, echoProvider("the answer", "summary"))

	got := sess.Submit(context.Background(), "a question")
	if got != "the answer" {
		t.Errorf("Submit() = %q, want %q", got, "the answer")
	}

	st := sess.Status()
	if st.Turns != 2 || st.UserTurns != 1 {
		t.Errorf("Status after one exchange = %+v", st)
	}
}

func TestSession_SixthExchangeCompactsAndSaves(t *testing.T) {
	t.Parallel()

	sess, store := newTestSession(t, echoProvider("reply text", "condensed history"))

	for i := 1; i <= 6; i++ {
		sess.Submit(context.Background(), fmt.Sprintf("question %d", i))

		st := sess.Status()
		if i < 6 {
			if st.Turns != 2*i {
				t.Fatalf("after exchange %d: %d turns, want %d", i, st.Turns, 2*i)
			}
		}
	}

	st := sess.Status()
	if st.Turns != 1 {
		t.Fatalf("after 6th exchange: %d turns, want 1 (collapsed)", st.Turns)
	}

	// The snapshot of the post-compaction state must exist and hold
	// the single system summary turn embedding the original count.
	ids, err := store.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(ids) != 1 {
		t.Fatalf("expected 1 snapshot after compaction, got %d", len(ids))
	}
	turns, err := store.Load(ids[0])
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(turns) != 1 || turns[0].Role != provider.MessageRoleSystem {
		t.Fatalf("snapshot turns = %v, want single system turn", turns)
	}
	if !strings.Contains(turns[0].Content, "12 messages") {
		t.Errorf("summary turn = %q, want embedded message count", turns[0].Content)
	}
	if !strings.Contains(turns[0].Content, "condensed history") {
		t.Errorf("summary turn = %q, want summary text", turns[0].Content)
	}
}

func TestSession_Submit_TransportFailureReturnsErrorText(t *testing.T) {
	t.Parallel()

	mock := &providertest.MockProvider{
		CompleteFunc: func(_ context.Context, _ provider.CompletionRequest) (provider.CompletionResponse, error) {
			return provider.CompletionResponse{}, fmt.Errorf("%w: connection refused", provider.ErrProviderDown)
		},
	}
	sess, _ := newTestSession(t, mock)

	got := sess.Submit(context.Background(), "hello")
	if !strings.HasPrefix(got, "Error: ") {
		t.Errorf("Submit on transport failure = %q, want recognizable error text", got)
	}

	// The failed exchange still lands in the history.
	if st := sess.Status(); st.Turns != 2 {
		t.Errorf("Status.Turns = %d, want 2", st.Turns)
	}
}

func TestSession_ResumeRestoresExactTurns(t *testing.T) {
	t.Parallel()

	sess, store := newTestSession(t, echoProvider("r", "s"))

	saved := snapshotWithTurns(t, store,
		provider.Message{Role: provider.MessageRoleSystem, Content: "Prior context (summary of 4 messages): earlier"},
		provider.Message{Role: provider.MessageRoleUser, Content: "and then?"},
		provider.Message{Role: provider.MessageRoleAssistant, Content: "it continued"},
	)

	if err := sess.Resume(saved); err != nil {
		t.Fatalf("Resume: %v", err)
	}

	st := sess.Status()
	if st.Turns != 3 || st.UserTurns != 1 {
		t.Errorf("Status after resume = %+v", st)
	}
}

func TestSession_Resume_NotFound(t *testing.T) {
	t.Parallel()

	sess, _ := newTestSession(t, echoProvider("r", "s"))
	err := sess.Resume("does-not-exist")
	if !errors.Is(err, snapshot.ErrNotFound) {
		t.Errorf("Resume error = %v, want ErrNotFound", err)
	}
}

func TestSession_EventsPublished(t *testing.T) {
	t.Parallel()

	mock := echoProvider("reply", "summary")

	var mu sync.Mutex
	var events []session.Event

	adapter := completion.NewAdapter(mock, completion.Options{}, nil)
	estimator := ctxengine.NewCharEstimator(4)
	compactor := ctxengine.NewCompactor(adapter, estimator, ctxengine.Config{Threshold: 2}, nil)
	sess := session.New(session.Deps{
		Adapter:   adapter,
		Compactor: compactor,
		Estimator: estimator,
		Store:     snapshot.New(t.TempDir()),
		Sink: func(ev session.Event) {
			mu.Lock()
			events = append(events, ev)
			mu.Unlock()
		},
	})

	sess.Submit(context.Background(), "q1")
	sess.Submit(context.Background(), "q2")

	mu.Lock()
	defer mu.Unlock()
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3 (2 exchanges + 1 compaction)", len(events))
	}
	if events[0].Type != session.EventExchange || events[2].Type != session.EventCompaction {
		t.Errorf("event types = %v, %v, %v", events[0].Type, events[1].Type, events[2].Type)
	}
	if events[2].SnapshotID == "" {
		t.Error("compaction event missing snapshot id")
	}
}

// snapshotWithTurns saves an arbitrary turn sequence and returns its id.
func snapshotWithTurns(t *testing.T, store *snapshot.Store, turns ...provider.Message) string {
	t.Helper()
	id, err := store.Save(conversation.Restore(turns), "")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	return id
}
