package usecase

import (
	"context"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/eslsoft/neurostudy/internal/entity"
	"github.com/eslsoft/neurostudy/internal/repository"
)

// DefaultMinTextLength is the shortest extracted text worth summarizing.
const DefaultMinTextLength = 50

// DocumentExtractor pulls plain text out of an uploaded document.
type DocumentExtractor interface {
	Extract(ctx context.Context, r io.ReaderAt, size int64) (string, error)
}

// Summarizer produces a short study summary in the requested language.
type Summarizer interface {
	Summarize(ctx context.Context, text string, lang entity.Language) (string, error)
}

// QuizGenerator produces quiz questions for a document. An empty slice means
// nothing usable was generated.
type QuizGenerator interface {
	GenerateQuiz(ctx context.Context, text string, lang entity.Language) ([]entity.QuizQuestion, error)
}

// StudyUsecase runs the upload, summary and quiz generation flow.
type StudyUsecase interface {
	ProcessDocument(ctx context.Context, identity, name string, r io.ReaderAt, size int64) (*entity.Document, error)
	CurrentDocument(ctx context.Context) (*entity.Document, error)
	StartQuiz(ctx context.Context, identity string) (*QuizSession, error)
}

// StudyOptions holds the free-tier limits.
type StudyOptions struct {
	MinTextLength int
}

// NewStudyUsecase wires the collaborators around the gamification core.
func NewStudyUsecase(
	profile ProfileUsecase,
	ledger XPLedger,
	quizzes QuizUsecase,
	documents repository.DocumentRepository,
	extractor DocumentExtractor,
	summarizer Summarizer,
	generator QuizGenerator,
	opts StudyOptions,
	logger logrus.FieldLogger,
) StudyUsecase {
	if opts.MinTextLength <= 0 {
		opts.MinTextLength = DefaultMinTextLength
	}
	return &studyUsecase{
		profile:    profile,
		ledger:     ledger,
		quizzes:    quizzes,
		documents:  documents,
		extractor:  extractor,
		summarizer: summarizer,
		generator:  generator,
		opts:       opts,
		logger:     logger,
	}
}

type studyUsecase struct {
	profile    ProfileUsecase
	ledger     XPLedger
	quizzes    QuizUsecase
	documents  repository.DocumentRepository
	extractor  DocumentExtractor
	summarizer Summarizer
	generator  QuizGenerator
	opts       StudyOptions
	logger     logrus.FieldLogger
}

const documentProcessedXP = 10

func (u *studyUsecase) ProcessDocument(ctx context.Context, identity, name string, r io.ReaderAt, size int64) (*entity.Document, error) {
	identity = entity.NormalizeIdentity(identity)
	stats, err := u.profile.Stats(ctx, identity)
	if err != nil {
		return nil, err
	}
	if !u.profile.CanUpload(stats) {
		return nil, entity.ErrUpgradeRequired
	}

	text, err := u.extractor.Extract(ctx, r, size)
	if err != nil {
		return nil, fmt.Errorf("extract text: %w", err)
	}
	if utf8.RuneCountInString(text) < u.opts.MinTextLength {
		return nil, entity.ErrInsufficientText
	}

	summary, err := u.summarizer.Summarize(ctx, text, stats.PreferredLanguage)
	if err != nil {
		return nil, fmt.Errorf("summarize: %w", err)
	}

	if _, err := u.ledger.AddXP(ctx, identity, documentProcessedXP); err != nil {
		return nil, err
	}
	if _, err := u.profile.IncrementUsage(ctx, identity); err != nil {
		return nil, err
	}
	if err := u.quizzes.Discard(ctx); err != nil {
		u.logger.WithError(err).Warn("clear quiz checkpoint")
	}

	doc := &entity.Document{Name: name, Text: text, Summary: summary, Identity: identity}
	if err := u.documents.Save(ctx, doc); err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}
	u.logger.WithFields(logrus.Fields{"identity": identity, "document": name, "chars": len(text)}).Info("document processed")
	return doc, nil
}

func (u *studyUsecase) CurrentDocument(ctx context.Context) (*entity.Document, error) {
	return u.documents.Current(ctx)
}

func (u *studyUsecase) StartQuiz(ctx context.Context, identity string) (*QuizSession, error) {
	identity = entity.NormalizeIdentity(identity)
	doc, err := u.documents.Current(ctx)
	if err != nil {
		return nil, err
	}
	stats, err := u.profile.Stats(ctx, identity)
	if err != nil {
		return nil, err
	}

	questions, err := u.generator.GenerateQuiz(ctx, doc.Text, stats.PreferredLanguage)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrQuizGenerationFailed, err)
	}
	if len(questions) == 0 {
		return nil, entity.ErrQuizGenerationFailed
	}
	return u.quizzes.Start(ctx, identity, questions, doc.Summary)
}
