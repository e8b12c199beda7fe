package usecase

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/eslsoft/neurostudy/internal/entity"
)

var errStorageDown = errors.New("storage down")

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type fakeStatsRepo struct {
	mu      sync.Mutex
	items   map[string]*entity.UserStats
	corrupt map[string]bool
	saves   int
	findErr error
	saveErr error
}

func newFakeStatsRepo() *fakeStatsRepo {
	return &fakeStatsRepo{items: map[string]*entity.UserStats{}, corrupt: map[string]bool{}}
}

func (r *fakeStatsRepo) Find(ctx context.Context, identity string) (*entity.UserStats, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	if r.corrupt[identity] {
		return nil, entity.ErrCorruptRecord
	}
	item, ok := r.items[identity]
	if !ok {
		return nil, entity.ErrRecordNotFound
	}
	return item.Clone(), nil
}

func (r *fakeStatsRepo) Save(ctx context.Context, identity string, stats *entity.UserStats) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saves++
	delete(r.corrupt, identity)
	r.items[identity] = stats.Clone()
	return nil
}

func (r *fakeStatsRepo) get(identity string) *entity.UserStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.items[identity].Clone()
}

type fakeSessionRepo struct {
	mu      sync.Mutex
	current *entity.QuizSession
	saves   int
	clears  int
	saveErr error
}

func (r *fakeSessionRepo) Get(ctx context.Context) (*entity.QuizSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil {
		return nil, entity.ErrNoQuizSession
	}
	copy := *r.current
	return &copy, nil
}

func (r *fakeSessionRepo) Save(ctx context.Context, session *entity.QuizSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saves++
	copy := *session
	r.current = &copy
	return nil
}

func (r *fakeSessionRepo) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clears++
	r.current = nil
	return nil
}

type fakeAccountRepo struct {
	mu       sync.Mutex
	accounts map[string]*entity.Account
	current  string
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: map[string]*entity.Account{}}
}

func (r *fakeAccountRepo) Find(ctx context.Context, identity string) (*entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.accounts[identity]
	if !ok {
		return nil, entity.ErrRecordNotFound
	}
	copy := *account
	return &copy, nil
}

func (r *fakeAccountRepo) Create(ctx context.Context, identity string, account *entity.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.accounts[identity]; ok {
		return entity.ErrAccountExists
	}
	copy := *account
	r.accounts[identity] = &copy
	return nil
}

func (r *fakeAccountRepo) List(ctx context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.accounts))
	for id := range r.accounts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *fakeAccountRepo) CurrentUser(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current, nil
}

func (r *fakeAccountRepo) SetCurrentUser(ctx context.Context, identity string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = identity
	return nil
}

func (r *fakeAccountRepo) ClearCurrentUser(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = ""
	return nil
}

type fakeDocumentRepo struct {
	doc *entity.Document
}

func (r *fakeDocumentRepo) Current(ctx context.Context) (*entity.Document, error) {
	if r.doc == nil {
		return nil, entity.ErrNoDocument
	}
	copy := *r.doc
	return &copy, nil
}

func (r *fakeDocumentRepo) Save(ctx context.Context, doc *entity.Document) error {
	copy := *doc
	r.doc = &copy
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []entity.GamificationEvent
}

func (p *recordingPublisher) Publish(_ context.Context, event entity.GamificationEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

// fixedClock returns a clock that can be moved forward by tests.
type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFixedClock(now time.Time) *fixedClock { return &fixedClock{now: now} }

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type ledgerFixture struct {
	repo      *fakeStatsRepo
	store     *statsStore
	ledger    *xpLedger
	events    *recordingPublisher
	clock     *fixedClock
	evaluator AchievementEvaluator
}

func newLedgerFixture(t *testing.T) *ledgerFixture {
	t.Helper()
	clock := newFixedClock(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))
	repo := newFakeStatsRepo()
	store := NewStatsStore(repo, quietLogger()).(*statsStore)
	store.clock = clock.Now
	evaluator, err := NewAchievementEvaluator(quietLogger())
	if err != nil {
		t.Fatalf("NewAchievementEvaluator: %v", err)
	}
	events := &recordingPublisher{}
	ledger := NewXPLedger(store, evaluator, events).(*xpLedger)
	ledger.clock = clock.Now
	seq := 0
	ledger.newID = func() string {
		seq++
		return "quiz-" + string(rune('a'+seq-1))
	}
	return &ledgerFixture{repo: repo, store: store, ledger: ledger, events: events, clock: clock, evaluator: evaluator}
}
