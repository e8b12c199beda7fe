package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/eslsoft/neurostudy/internal/entity"
)

func sampleQuestions() []entity.QuizQuestion {
	return []entity.QuizQuestion{
		{ID: "q1", Question: "2+2?", Options: []string{"3", "4", "5", "6"}, CorrectAnswer: "4", Type: entity.QuestionMultipleChoice},
		{ID: "q2", Question: "Sky is blue?", Options: []string{"True", "False"}, CorrectAnswer: "True", Type: entity.QuestionTrueFalse},
		{ID: "q3", Question: "Capital of France?", Options: []string{"Paris", "Rome", "Oslo", "Bern"}, CorrectAnswer: "Paris", Type: entity.QuestionMultipleChoice},
	}
}

type quizFixture struct {
	*ledgerFixture
	sessions *fakeSessionRepo
	quizzes  *quizUsecase
}

func newQuizFixture(t *testing.T) *quizFixture {
	t.Helper()
	lf := newLedgerFixture(t)
	sessions := &fakeSessionRepo{}
	quizzes := NewQuizUsecase(lf.ledger, sessions, quietLogger()).(*quizUsecase)
	quizzes.clock = lf.clock.Now
	return &quizFixture{ledgerFixture: lf, sessions: sessions, quizzes: quizzes}
}

func answer(t *testing.T, s *QuizSession, option string) bool {
	t.Helper()
	ctx := context.Background()
	if err := s.Select(option); err != nil {
		t.Fatalf("Select(%q): %v", option, err)
	}
	correct, err := s.CheckAnswer(ctx)
	if err != nil {
		t.Fatalf("CheckAnswer: %v", err)
	}
	return correct
}

func TestQuizSessionFullRun(t *testing.T) {
	ctx := context.Background()
	fx := newQuizFixture(t)

	session, err := fx.quizzes.Start(ctx, ada, sampleQuestions(), "summary text")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if fx.sessions.current == nil || fx.sessions.current.CurrentIndex != 0 || fx.sessions.current.Identity != ada {
		t.Fatalf("expected an immediate checkpoint, got %+v", fx.sessions.current)
	}

	if !answer(t, session, "4") {
		t.Fatalf("expected correct answer")
	}
	if fx.sessions.current.Score != 1 {
		t.Fatalf("expected checkpoint score 1, got %d", fx.sessions.current.Score)
	}
	if award, err := session.Advance(ctx); err != nil || award != nil {
		t.Fatalf("Advance: award=%v err=%v", award, err)
	}
	if session.State() != QuizAwaitingSelection || session.CurrentIndex() != 1 || session.Selected() != "" {
		t.Fatalf("unexpected state after advance: %+v", session.Snapshot())
	}

	if answer(t, session, "False") {
		t.Fatalf("expected wrong answer")
	}
	if _, err := session.Advance(ctx); err != nil {
		t.Fatalf("Advance: %v", err)
	}

	answer(t, session, "Paris")
	fx.clock.Advance(45 * time.Second)
	award, err := session.Advance(ctx)
	if err != nil {
		t.Fatalf("final Advance: %v", err)
	}
	if award == nil || session.State() != QuizCompleted {
		t.Fatalf("expected completion, state=%s", session.State())
	}
	if session.Score() != 2 || session.MaxCorrectStreak() != 1 {
		t.Fatalf("expected score 2 and max streak 1, got %d/%d", session.Score(), session.MaxCorrectStreak())
	}
	// 2*10 + 50 + 20 speed bonus, then first_step and speedster.
	if award.XPEarned != 90 || award.Stats.XP != 90+50+200 {
		t.Fatalf("unexpected award %+v", award)
	}
	if fx.sessions.current != nil {
		t.Fatalf("checkpoint must be cleared on completion")
	}
	if _, ok := session.Current(); ok {
		t.Fatalf("no current question after completion")
	}
	if err := session.Select("4"); !errors.Is(err, entity.ErrInvalidQuizTransition) {
		t.Fatalf("expected transition error after completion, got %v", err)
	}
}

func TestQuizSessionRejectsOutOfSequenceCalls(t *testing.T) {
	ctx := context.Background()
	fx := newQuizFixture(t)
	session, err := fx.quizzes.Start(ctx, ada, sampleQuestions(), "")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	if _, err := session.CheckAnswer(ctx); !errors.Is(err, entity.ErrInvalidQuizTransition) {
		t.Fatalf("check without selection: got %v", err)
	}
	if _, err := session.Advance(ctx); !errors.Is(err, entity.ErrInvalidQuizTransition) {
		t.Fatalf("advance before check: got %v", err)
	}
	if err := session.Select("42"); !errors.Is(err, entity.ErrInvalidOption) {
		t.Fatalf("unknown option: got %v", err)
	}

	answer(t, session, "3")
	if err := session.Select("4"); !errors.Is(err, entity.ErrInvalidQuizTransition) {
		t.Fatalf("select after check: got %v", err)
	}
	if _, err := session.CheckAnswer(ctx); !errors.Is(err, entity.ErrInvalidQuizTransition) {
		t.Fatalf("double check: got %v", err)
	}
	if session.Score() != 0 || session.CurrentIndex() != 0 || session.State() != QuizAnswerChecked {
		t.Fatalf("rejected calls must not change state: %+v", session.Snapshot())
	}
}

func TestQuizSessionSelectionCanChangeBeforeCheck(t *testing.T) {
	fx := newQuizFixture(t)
	session, _ := fx.quizzes.Start(context.Background(), ada, sampleQuestions(), "")
	if err := session.Select("3"); err != nil {
		t.Fatalf("Select: %v", err)
	}
	if !answer(t, session, "4") {
		t.Fatalf("expected the latest selection to be graded")
	}
}

func TestQuizSessionTracksMaxCorrectStreak(t *testing.T) {
	ctx := context.Background()
	fx := newQuizFixture(t)
	questions := append(sampleQuestions(), sampleQuestions()...)
	session, err := fx.quizzes.Start(ctx, ada, questions, "")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	for i, option := range []string{"4", "True", "Oslo", "4", "True", "Paris"} {
		answer(t, session, option)
		if i < len(questions)-1 {
			if _, err := session.Advance(ctx); err != nil {
				t.Fatalf("Advance: %v", err)
			}
		}
	}
	if session.MaxCorrectStreak() != 3 {
		t.Fatalf("expected max streak 3, got %d", session.MaxCorrectStreak())
	}
}

func TestQuizResumeCompletesOnce(t *testing.T) {
	ctx := context.Background()
	fx := newQuizFixture(t)
	fx.sessions.current = &entity.QuizSession{
		Questions:      sampleQuestions(),
		CurrentIndex:   1,
		Score:          1,
		SummaryContext: "saved summary",
		Identity:       ada,
	}

	session, err := fx.quizzes.Resume(ctx, ada)
	if err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if session.CurrentIndex() != 1 || session.Score() != 1 || session.State() != QuizAwaitingSelection {
		t.Fatalf("unexpected resumed state %+v", session.Snapshot())
	}
	if session.Snapshot().SummaryContext != "saved summary" {
		t.Fatalf("summary context lost on resume")
	}

	answer(t, session, "True")
	if _, err := session.Advance(ctx); err != nil {
		t.Fatalf("Advance: %v", err)
	}
	answer(t, session, "Paris")
	award, err := session.Advance(ctx)
	if err != nil || award == nil {
		t.Fatalf("expected completion, award=%v err=%v", award, err)
	}
	if session.Score() != 3 {
		t.Fatalf("expected initial score plus new correct answers, got %d", session.Score())
	}
	stats := fx.repo.get(ada)
	if stats.QuizzesCompleted != 1 || len(stats.History) != 1 || stats.History[0].Score != 3 {
		t.Fatalf("expected exactly one completion with score 3, got %+v", stats)
	}
	if _, err := session.Advance(ctx); !errors.Is(err, entity.ErrInvalidQuizTransition) {
		t.Fatalf("second completion must be rejected, got %v", err)
	}
}

func TestQuizResumeChecksOwnerAndBounds(t *testing.T) {
	ctx := context.Background()
	fx := newQuizFixture(t)

	if _, err := fx.quizzes.Resume(ctx, ada); !errors.Is(err, entity.ErrNoQuizSession) {
		t.Fatalf("expected no session, got %v", err)
	}

	fx.sessions.current = &entity.QuizSession{Questions: sampleQuestions(), Identity: "bob@example.com"}
	if _, err := fx.quizzes.Resume(ctx, ada); !errors.Is(err, entity.ErrNoQuizSession) {
		t.Fatalf("another user's checkpoint must be invisible, got %v", err)
	}

	bad := &entity.QuizSession{Questions: sampleQuestions(), CurrentIndex: 3, Identity: ada}
	if _, err := fx.quizzes.ResumeFrom(ctx, bad); !errors.Is(err, entity.ErrInvalidQuizSession) {
		t.Fatalf("expected invalid session, got %v", err)
	}
}

func TestQuizStartRequiresQuestions(t *testing.T) {
	fx := newQuizFixture(t)
	if _, err := fx.quizzes.Start(context.Background(), ada, nil, ""); !errors.Is(err, entity.ErrEmptyQuiz) {
		t.Fatalf("expected ErrEmptyQuiz, got %v", err)
	}
}

func TestQuizCheckpointFailureDoesNotAbort(t *testing.T) {
	ctx := context.Background()
	fx := newQuizFixture(t)
	session, err := fx.quizzes.Start(ctx, ada, sampleQuestions(), "")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	fx.sessions.saveErr = errStorageDown

	if !answer(t, session, "4") {
		t.Fatalf("expected correct answer")
	}
	if _, err := session.Advance(ctx); err != nil {
		t.Fatalf("Advance must succeed despite checkpoint failure: %v", err)
	}
	if session.CurrentIndex() != 1 {
		t.Fatalf("expected index 1, got %d", session.CurrentIndex())
	}
}

func TestQuizLedgerFailureKeepsAnswerChecked(t *testing.T) {
	ctx := context.Background()
	fx := newQuizFixture(t)
	session, err := fx.quizzes.Start(ctx, ada, sampleQuestions()[:1], "")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	answer(t, session, "4")

	fx.repo.saveErr = errStorageDown
	if _, err := session.Advance(ctx); !errors.Is(err, errStorageDown) {
		t.Fatalf("expected ledger error, got %v", err)
	}
	if session.State() != QuizAnswerChecked || fx.sessions.current == nil {
		t.Fatalf("failed completion must keep the session and checkpoint")
	}

	fx.repo.saveErr = nil
	award, err := session.Advance(ctx)
	if err != nil || award == nil {
		t.Fatalf("retrying completion: award=%v err=%v", award, err)
	}
	if fx.repo.get(ada).QuizzesCompleted != 1 {
		t.Fatalf("expected one recorded completion")
	}
}

func TestQuizRetryRestartsSameQuestions(t *testing.T) {
	ctx := context.Background()
	fx := newQuizFixture(t)
	session, _ := fx.quizzes.Start(ctx, ada, sampleQuestions()[:1], "ctx")
	answer(t, session, "4")
	if _, err := session.Advance(ctx); err != nil {
		t.Fatalf("Advance: %v", err)
	}

	if err := session.Retry(ctx); err != nil {
		t.Fatalf("Retry: %v", err)
	}
	if session.State() != QuizAwaitingSelection || session.CurrentIndex() != 0 || session.Score() != 0 || session.Award() != nil {
		t.Fatalf("unexpected state after retry %+v", session.Snapshot())
	}
	if fx.sessions.current == nil || fx.sessions.current.Score != 0 || len(fx.sessions.current.Questions) != 1 {
		t.Fatalf("expected fresh checkpoint, got %+v", fx.sessions.current)
	}
}

func TestQuizDiscardClearsCheckpoint(t *testing.T) {
	fx := newQuizFixture(t)
	fx.sessions.current = &entity.QuizSession{Questions: sampleQuestions(), Identity: ada}
	if err := fx.quizzes.Discard(context.Background()); err != nil {
		t.Fatalf("Discard: %v", err)
	}
	if fx.sessions.current != nil {
		t.Fatalf("expected checkpoint cleared")
	}
}

func TestQuizStartRejectsUngradableQuestions(t *testing.T) {
	cases := map[string]entity.QuizQuestion{
		"answer not an option": {ID: "x", Question: "2+2?", Options: []string{"3", "5"}, CorrectAnswer: "4"},
		"empty option":         {ID: "y", Question: "Pick", Options: []string{"", "A"}, CorrectAnswer: "A"},
	}
	for name, bad := range cases {
		t.Run(name, func(t *testing.T) {
			fx := newQuizFixture(t)
			questions := append(sampleQuestions(), bad)
			if _, err := fx.quizzes.Start(context.Background(), ada, questions, ""); !errors.Is(err, entity.ErrInvalidQuizSession) {
				t.Fatalf("expected ErrInvalidQuizSession, got %v", err)
			}
			if fx.sessions.current != nil {
				t.Fatalf("rejected quiz must not be checkpointed, got %+v", fx.sessions.current)
			}
		})
	}
}
