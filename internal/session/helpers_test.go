package session

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"secureview/internal/clock"
	"secureview/internal/draft"
	"secureview/internal/logger"
	"secureview/internal/model"
)

var epoch = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func threeQuestions() []model.Question {
	return []model.Question{
		{ID: "q1", Text: "What went well this sprint?"},
		{ID: "q2", Text: "What slowed you down?"},
		{ID: "q3", Text: "What should change next sprint?"},
	}
}

// faultyStore wraps a MemoryStore with injectable failures and a write counter.
type faultyStore struct {
	*draft.MemoryStore
	getErr error
	setErr error
	sets   atomic.Int32
}

func newFaultyStore() *faultyStore {
	return &faultyStore{MemoryStore: draft.NewMemoryStore()}
}

func (f *faultyStore) Get(ctx context.Context, key string) ([]byte, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.MemoryStore.Get(ctx, key)
}

func (f *faultyStore) Set(ctx context.Context, key string, value []byte) error {
	f.sets.Add(1)
	if f.setErr != nil {
		return f.setErr
	}
	return f.MemoryStore.Set(ctx, key, value)
}

// blockingStore parks every Set until the test releases it.
type blockingStore struct {
	*draft.MemoryStore
	entered chan struct{}
	release chan struct{}
	sets    atomic.Int32
}

func newBlockingStore() *blockingStore {
	return &blockingStore{
		MemoryStore: draft.NewMemoryStore(),
		entered:     make(chan struct{}),
		release:     make(chan struct{}),
	}
}

func (b *blockingStore) Set(ctx context.Context, key string, value []byte) error {
	b.sets.Add(1)
	b.entered <- struct{}{}
	<-b.release
	return b.MemoryStore.Set(ctx, key, value)
}

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) record(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) states() []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []State
	for _, ev := range r.events {
		if ev.Type == EventStateChanged {
			out = append(out, ev.State)
		}
	}
	return out
}

func (r *recorder) count(typ string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, ev := range r.events {
		if ev.Type == typ {
			n++
		}
	}
	return n
}

type countingSubmitter struct {
	calls atomic.Int32
	err   error
	got   model.ResponseBuffer
}

func (c *countingSubmitter) Submit(_ context.Context, _ string, responses model.ResponseBuffer) error {
	c.calls.Add(1)
	c.got = responses
	return c.err
}

type fixture struct {
	s     *Session
	clk   *clock.Fake
	store draft.Store
	sub   *countingSubmitter
	rec   *recorder
}

func newFixture(t *testing.T, store draft.Store) *fixture {
	t.Helper()
	f := &fixture{
		clk:   clock.NewFake(epoch),
		store: store,
		sub:   &countingSubmitter{},
		rec:   &recorder{},
	}
	f.s = New(Options{
		Store:     store,
		Submitter: f.sub,
		Clock:     f.clk,
		Delay:     DefaultAutosaveDelay,
		Log:       logger.NewNop(),
		OnEvent:   f.rec.record,
	})
	require.NoError(t, f.s.Open(context.Background(), "t1", threeQuestions()))
	return f
}

func storedDraft(t *testing.T, store draft.Store, taskID string) *model.DraftRecord {
	t.Helper()
	raw, err := store.Get(context.Background(), draft.Key(taskID))
	require.NoError(t, err)
	if raw == nil {
		return nil
	}
	var rec model.DraftRecord
	require.NoError(t, json.Unmarshal(raw, &rec))
	return &rec
}

// stallingStore blocks every Get until ctx ends.
type stallingStore struct {
	*draft.MemoryStore
}

func (s stallingStore) Get(ctx context.Context, _ string) ([]byte, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func seedDraft(t *testing.T, store draft.Store, taskID string, rec model.DraftRecord) {
	t.Helper()
	raw, err := json.Marshal(rec)
	require.NoError(t, err)
	require.NoError(t, store.Set(context.Background(), draft.Key(taskID), raw))
}
