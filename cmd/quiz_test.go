package cmd

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	adapterrepo "github.com/eslsoft/neurostudy/internal/adapter/repository"
	"github.com/eslsoft/neurostudy/internal/adapter/storage"
	"github.com/eslsoft/neurostudy/internal/entity"
	"github.com/eslsoft/neurostudy/internal/usecase"
)

func newQuizUsecase(t *testing.T) (usecase.QuizUsecase, usecase.StatsStore) {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	kv := storage.NewMemoryStore()
	evaluator, err := usecase.NewAchievementEvaluator(logger)
	if err != nil {
		t.Fatalf("NewAchievementEvaluator: %v", err)
	}
	store := usecase.NewStatsStore(adapterrepo.NewStatsRepository(kv), logger)
	ledger := usecase.NewXPLedger(store, evaluator, nil)
	return usecase.NewQuizUsecase(ledger, adapterrepo.NewQuizSessionRepository(kv), logger), store
}

func questions() []entity.QuizQuestion {
	return []entity.QuizQuestion{
		{ID: "1", Question: "2+2?", Options: []string{"3", "4"}, CorrectAnswer: "4"},
		{ID: "2", Question: "Sky colour?", Options: []string{"Blue", "Green"}, CorrectAnswer: "Blue"},
		{ID: "3", Question: "Water is wet.", Options: []string{"True", "False"}, CorrectAnswer: "True"},
	}
}

func TestRunQuizToCompletion(t *testing.T) {
	quizzes, store := newQuizUsecase(t)
	ctx := context.Background()
	session, err := quizzes.Start(ctx, "ada@example.com", questions(), "")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	var out bytes.Buffer
	if err := runQuiz(ctx, strings.NewReader("9\n2\n2\n1\n"), &out, session); err != nil {
		t.Fatalf("runQuiz: %v", err)
	}
	if session.State() != usecase.QuizCompleted || session.Score() != 2 {
		t.Fatalf("expected completed quiz with score 2, got %s %d", session.State(), session.Score())
	}
	text := out.String()
	for _, want := range []string{"Enter a number between 1 and 2.", "Incorrect. The answer is Blue.", "Quiz complete! Score: 2/3", "Achievement unlocked: First Step"} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in output:\n%s", want, text)
		}
	}

	stats, err := store.Load(ctx, "ada@example.com")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if stats.QuizzesCompleted != 1 || len(stats.History) != 1 {
		t.Fatalf("expected one recorded quiz, got %+v", stats)
	}
}

func TestRunQuizQuitKeepsCheckpoint(t *testing.T) {
	quizzes, _ := newQuizUsecase(t)
	ctx := context.Background()
	session, err := quizzes.Start(ctx, "ada@example.com", questions(), "")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	var out bytes.Buffer
	if err := runQuiz(ctx, strings.NewReader("2\nq\n"), &out, session); err != nil {
		t.Fatalf("runQuiz: %v", err)
	}
	if !strings.Contains(out.String(), "Progress saved.") {
		t.Fatalf("expected quit message, got:\n%s", out.String())
	}

	resumed, err := quizzes.Resume(ctx, "ada@example.com")
	if err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if resumed.CurrentIndex() != 1 || resumed.Score() != 1 {
		t.Fatalf("expected checkpoint at question 2 with score 1, got %d/%d", resumed.CurrentIndex(), resumed.Score())
	}
}

func TestPromptOptionEOF(t *testing.T) {
	var out bytes.Buffer
	_, ok, err := promptOption(bufio.NewReader(strings.NewReader("")), &out, []string{"a", "b"})
	if err != nil || ok {
		t.Fatalf("expected quit on EOF, got ok=%v err=%v", ok, err)
	}

	option, ok, err := promptOption(bufio.NewReader(strings.NewReader(" 2 ")), &out, []string{"a", "b"})
	if err != nil || !ok || option != "b" {
		t.Fatalf("expected b from unterminated line, got %q ok=%v err=%v", option, ok, err)
	}
}

func TestNormalizeGroups(t *testing.T) {
	got := normalizeGroups([]string{" Stats ", "", "users", "stats:"})
	if len(got) != 2 || got[0] != "stats" || got[1] != "users" {
		t.Fatalf("unexpected groups %v", got)
	}
	if normalizeGroups([]string{" ", ""}) != nil {
		t.Fatalf("expected nil for blank groups")
	}
}

func TestValidateGroups(t *testing.T) {
	if err := validateGroups([]string{"stats", "session-progress", "document"}); err != nil {
		t.Fatalf("known groups rejected: %v", err)
	}
	if err := validateGroups(nil); err != nil {
		t.Fatalf("empty filter rejected: %v", err)
	}
	err := validateGroups([]string{"stats", "words"})
	if err == nil || !strings.Contains(err.Error(), "words") {
		t.Fatalf("expected unknown group error naming words, got %v", err)
	}
}
