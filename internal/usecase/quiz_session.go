package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/eslsoft/neurostudy/internal/entity"
	"github.com/eslsoft/neurostudy/internal/repository"
)

// QuizState is the controller's position in the answer cycle.
type QuizState int

const (
	QuizAwaitingSelection QuizState = iota
	QuizAnswerChecked
	QuizCompleted
)

func (s QuizState) String() string {
	switch s {
	case QuizAwaitingSelection:
		return "awaiting_selection"
	case QuizAnswerChecked:
		return "answer_checked"
	case QuizCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// QuizSnapshot is a read-only view of a running quiz.
type QuizSnapshot struct {
	State            string               `json:"state"`
	Identity         string               `json:"identity,omitempty"`
	CurrentIndex     int                  `json:"currentIndex"`
	TotalQuestions   int                  `json:"totalQuestions"`
	Score            int                  `json:"score"`
	Question         *entity.QuizQuestion `json:"question,omitempty"`
	Selected         string               `json:"selected,omitempty"`
	LastCorrect      *bool                `json:"lastCorrect,omitempty"`
	MaxCorrectStreak int                  `json:"maxCorrectStreak"`
	SummaryContext   string               `json:"summaryContext,omitempty"`
}

// QuizSession drives one quiz attempt. It is not safe for concurrent use.
type QuizSession struct {
	identity  string
	questions []entity.QuizQuestion
	summary   string

	state         QuizState
	index         int
	score         int
	selected      string
	lastCorrect   *bool
	correctStreak int
	maxStreak     int
	startedAt     time.Time
	award         *XPAward

	ledger      XPLedger
	checkpoints repository.QuizSessionRepository
	logger      logrus.FieldLogger
	clock       func() time.Time
}

func (s *QuizSession) State() QuizState  { return s.state }
func (s *QuizSession) Identity() string  { return s.identity }
func (s *QuizSession) CurrentIndex() int { return s.index }
func (s *QuizSession) Score() int        { return s.score }
func (s *QuizSession) Total() int        { return len(s.questions) }
func (s *QuizSession) Selected() string  { return s.selected }

// MaxCorrectStreak is the longest run of correct answers in this attempt.
func (s *QuizSession) MaxCorrectStreak() int { return s.maxStreak }

// Award is the ledger result once the quiz is completed.
func (s *QuizSession) Award() *XPAward { return s.award }

// Current returns the question being answered. It is false once completed.
func (s *QuizSession) Current() (entity.QuizQuestion, bool) {
	if s.state == QuizCompleted || s.index >= len(s.questions) {
		return entity.QuizQuestion{}, false
	}
	return s.questions[s.index], true
}

// Snapshot captures the current view of the session.
func (s *QuizSession) Snapshot() QuizSnapshot {
	snap := QuizSnapshot{
		State:            s.state.String(),
		Identity:         s.identity,
		CurrentIndex:     s.index,
		TotalQuestions:   len(s.questions),
		Score:            s.score,
		Selected:         s.selected,
		LastCorrect:      s.lastCorrect,
		MaxCorrectStreak: s.maxStreak,
		SummaryContext:   s.summary,
	}
	if q, ok := s.Current(); ok {
		snap.Question = &q
	}
	return snap
}

// Select chooses an option for the current question. The choice may be
// changed until the answer is checked.
func (s *QuizSession) Select(option string) error {
	if s.state != QuizAwaitingSelection {
		return entity.ErrInvalidQuizTransition
	}
	if !s.questions[s.index].HasOption(option) {
		return entity.ErrInvalidOption
	}
	s.selected = option
	return nil
}

// CheckAnswer grades the selection and reports whether it was correct.
func (s *QuizSession) CheckAnswer(ctx context.Context) (bool, error) {
	if s.state != QuizAwaitingSelection || s.selected == "" {
		return false, entity.ErrInvalidQuizTransition
	}

	correct := s.selected == s.questions[s.index].CorrectAnswer
	if correct {
		s.score++
		s.correctStreak++
		s.maxStreak = max(s.maxStreak, s.correctStreak)
	} else {
		s.correctStreak = 0
	}
	s.lastCorrect = &correct
	s.state = QuizAnswerChecked
	s.checkpoint(ctx)
	return correct, nil
}

// Advance moves to the next question, or completes the quiz after the last one.
// On completion the result is recorded on the ledger and the returned award is non-nil.
func (s *QuizSession) Advance(ctx context.Context) (*XPAward, error) {
	if s.state != QuizAnswerChecked {
		return nil, entity.ErrInvalidQuizTransition
	}

	if s.index+1 < len(s.questions) {
		s.index++
		s.selected = ""
		s.lastCorrect = nil
		s.state = QuizAwaitingSelection
		s.checkpoint(ctx)
		return nil, nil
	}

	elapsed := s.clock().Sub(s.startedAt).Seconds()
	award, err := s.ledger.CompleteQuiz(ctx, s.identity, s.score, len(s.questions), elapsed, s.maxStreak)
	if err != nil {
		return nil, err
	}
	s.award = award
	s.state = QuizCompleted
	s.selected = ""
	if err := s.checkpoints.Clear(ctx); err != nil {
		s.logger.WithError(err).Warn("clear quiz checkpoint")
	}
	return award, nil
}

// Retry restarts the same questions from the beginning.
func (s *QuizSession) Retry(ctx context.Context) error {
	s.reset(0, 0)
	s.checkpoint(ctx)
	return nil
}

func (s *QuizSession) reset(index, score int) {
	s.state = QuizAwaitingSelection
	s.index = index
	s.score = score
	s.selected = ""
	s.lastCorrect = nil
	s.correctStreak = 0
	s.maxStreak = 0
	s.award = nil
	s.startedAt = s.clock()
}

func (s *QuizSession) checkpoint(ctx context.Context) {
	err := s.checkpoints.Save(ctx, &entity.QuizSession{
		Questions:      s.questions,
		CurrentIndex:   s.index,
		Score:          s.score,
		SummaryContext: s.summary,
		Identity:       s.identity,
	})
	if err != nil {
		s.logger.WithError(err).WithField("index", s.index).Warn("save quiz checkpoint")
	}
}

// QuizUsecase starts new quiz sessions and resumes checkpointed ones.
type QuizUsecase interface {
	Start(ctx context.Context, identity string, questions []entity.QuizQuestion, summary string) (*QuizSession, error)
	// Resume continues the checkpoint owned by identity.
	Resume(ctx context.Context, identity string) (*QuizSession, error)
	// ResumeFrom continues an explicit checkpoint at its saved index and score.
	ResumeFrom(ctx context.Context, saved *entity.QuizSession) (*QuizSession, error)
	// Saved returns identity's checkpoint or entity.ErrNoQuizSession.
	Saved(ctx context.Context, identity string) (*entity.QuizSession, error)
	Discard(ctx context.Context) error
}

// NewQuizUsecase wires the ledger and the checkpoint repository.
func NewQuizUsecase(ledger XPLedger, checkpoints repository.QuizSessionRepository, logger logrus.FieldLogger) QuizUsecase {
	return &quizUsecase{
		ledger:      ledger,
		checkpoints: checkpoints,
		logger:      logger,
		clock:       time.Now,
	}
}

type quizUsecase struct {
	ledger      XPLedger
	checkpoints repository.QuizSessionRepository
	logger      logrus.FieldLogger
	clock       func() time.Time
}

func (u *quizUsecase) newSession(identity string, questions []entity.QuizQuestion, summary string) *QuizSession {
	identity = entity.NormalizeIdentity(identity)
	return &QuizSession{
		identity:    identity,
		questions:   append([]entity.QuizQuestion{}, questions...),
		summary:     summary,
		ledger:      u.ledger,
		checkpoints: u.checkpoints,
		logger:      u.logger.WithField("identity", identity),
		clock:       u.clock,
	}
}

func (u *quizUsecase) Start(ctx context.Context, identity string, questions []entity.QuizQuestion, summary string) (*QuizSession, error) {
	if len(questions) == 0 {
		return nil, entity.ErrEmptyQuiz
	}
	for _, q := range questions {
		if len(q.Options) == 0 {
			return nil, entity.ErrEmptyQuiz
		}
		if !q.Answerable() {
			return nil, fmt.Errorf("question %q: %w", q.ID, entity.ErrInvalidQuizSession)
		}
	}
	session := u.newSession(identity, questions, summary)
	session.reset(0, 0)
	session.checkpoint(ctx)
	return session, nil
}

func (u *quizUsecase) Resume(ctx context.Context, identity string) (*QuizSession, error) {
	saved, err := u.Saved(ctx, identity)
	if err != nil {
		return nil, err
	}
	return u.ResumeFrom(ctx, saved)
}

func (u *quizUsecase) ResumeFrom(_ context.Context, saved *entity.QuizSession) (*QuizSession, error) {
	if err := saved.Validate(); err != nil {
		return nil, err
	}
	session := u.newSession(saved.Identity, saved.Questions, saved.SummaryContext)
	session.reset(saved.CurrentIndex, saved.Score)
	return session, nil
}

func (u *quizUsecase) Saved(ctx context.Context, identity string) (*entity.QuizSession, error) {
	saved, err := u.checkpoints.Get(ctx)
	if err != nil {
		return nil, err
	}
	if saved.Identity != entity.NormalizeIdentity(identity) {
		return nil, entity.ErrNoQuizSession
	}
	return saved, nil
}

func (u *quizUsecase) Discard(ctx context.Context) error {
	if err := u.checkpoints.Clear(ctx); err != nil && !errors.Is(err, entity.ErrNoQuizSession) {
		return err
	}
	return nil
}
