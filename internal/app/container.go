package app

import (
	"net/http"
	"slices"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/eslsoft/neurostudy/internal/adapter/ai"
	"github.com/eslsoft/neurostudy/internal/adapter/events"
	"github.com/eslsoft/neurostudy/internal/infrastructure/config"
	"github.com/eslsoft/neurostudy/internal/infrastructure/server"
	"github.com/eslsoft/neurostudy/internal/repository"
	"github.com/eslsoft/neurostudy/internal/usecase"
	"github.com/eslsoft/neurostudy/internal/usecase/backup"
)

// Container aggregates the application dependencies produced by Wire.
type Container struct {
	Config      *config.Config
	Logger      *logrus.Logger
	Store       repository.KeyValueStore
	Accounts    usecase.AccountUsecase
	Profile     usecase.ProfileUsecase
	Ledger      usecase.XPLedger
	Quizzes     usecase.QuizUsecase
	Study       usecase.StudyUsecase
	Leaderboard usecase.LeaderboardUsecase
	Backup      *backup.Service
}

// ServerContainer holds the long-running server and its logger.
type ServerContainer struct {
	Logger *logrus.Logger
	Server *server.Server
}

func provideLocation(cfg *config.Config) (*time.Location, error) {
	return cfg.Location()
}

func provideProfileUsecase(cfg *config.Config, store usecase.StatsStore, streak *usecase.StreakEvaluator) usecase.ProfileUsecase {
	return usecase.NewProfileUsecase(store, streak, cfg.Study.MaxFreeUploads)
}

func provideStudyOptions(cfg *config.Config) usecase.StudyOptions {
	return usecase.StudyOptions{MinTextLength: cfg.Study.MinTextLength}
}

func provideGemini(cfg *config.Config, logger *logrus.Logger) (*ai.Gemini, func()) {
	g := ai.NewGemini(cfg.Gemini.APIKey, cfg.Gemini.Model, logger)
	return g, func() {
		if err := g.Close(); err != nil {
			logger.WithError(err).Warn("close gemini client")
		}
	}
}

func provideHub(cfg *config.Config, logger *logrus.Logger) *events.Hub {
	origins := cfg.Server.AllowedOrigins
	if len(origins) == 0 || slices.Contains(origins, "*") {
		return events.NewHub(logger.WithField("component", "events"), nil)
	}
	return events.NewHub(logger.WithField("component", "events"), func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(origins, origin)
	})
}

// provideServerPublisher logs every event and pushes it to websocket clients.
func provideServerPublisher(logger *logrus.Logger, hub *events.Hub) usecase.EventPublisher {
	return events.Multi{events.NewLogPublisher(logger.WithField("component", "events")), hub}
}

// provideCLIPublisher only logs; a CLI process has no subscribers.
func provideCLIPublisher(logger *logrus.Logger) usecase.EventPublisher {
	return events.NewLogPublisher(logger.WithField("component", "events"))
}
