//go:build wireinject
// +build wireinject

package app

import (
	"net/http"

	"github.com/google/wire"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/neurostudy/internal/adapter/ai"
	"github.com/eslsoft/neurostudy/internal/adapter/document"
	"github.com/eslsoft/neurostudy/internal/adapter/events"
	"github.com/eslsoft/neurostudy/internal/adapter/httpapi"
	adapterrepo "github.com/eslsoft/neurostudy/internal/adapter/repository"
	"github.com/eslsoft/neurostudy/internal/infrastructure/config"
	"github.com/eslsoft/neurostudy/internal/infrastructure/database"
	"github.com/eslsoft/neurostudy/internal/infrastructure/server"
	"github.com/eslsoft/neurostudy/internal/usecase"
	"github.com/eslsoft/neurostudy/internal/usecase/backup"
)

var configSet = wire.NewSet(
	config.Load,
	provideLocation,
)

var loggerSet = wire.NewSet(
	server.NewLogger,
	wire.Bind(new(logrus.FieldLogger), new(*logrus.Logger)),
)

var storageSet = wire.NewSet(
	database.NewStore,
)

var repositorySet = wire.NewSet(
	adapterrepo.NewStatsRepository,
	adapterrepo.NewAccountRepository,
	adapterrepo.NewQuizSessionRepository,
	adapterrepo.NewDocumentRepository,
)

var coreSet = wire.NewSet(
	usecase.NewStatsStore,
	usecase.NewStreakEvaluator,
	usecase.NewAchievementEvaluator,
	usecase.NewXPLedger,
	usecase.NewQuizUsecase,
	usecase.NewAccountUsecase,
	usecase.NewLeaderboardUsecase,
	provideProfileUsecase,
)

var studySet = wire.NewSet(
	provideGemini,
	document.NewPDFExtractor,
	provideStudyOptions,
	wire.Bind(new(usecase.Summarizer), new(*ai.Gemini)),
	wire.Bind(new(usecase.QuizGenerator), new(*ai.Gemini)),
	wire.Bind(new(usecase.DocumentExtractor), new(document.PDFExtractor)),
	usecase.NewStudyUsecase,
)

var serverSet = wire.NewSet(
	provideHub,
	provideServerPublisher,
	wire.Bind(new(http.Handler), new(*events.Hub)),
	httpapi.NewHandler,
	server.NewServer,
)

// Initialize builds the container the CLI commands run against.
func Initialize() (*Container, func(), error) {
	wire.Build(
		configSet,
		loggerSet,
		storageSet,
		repositorySet,
		coreSet,
		studySet,
		provideCLIPublisher,
		backup.NewService,
		wire.Struct(new(Container), "*"),
	)
	return nil, nil, nil
}

// InitializeServer builds the gRPC and HTTP server.
func InitializeServer() (*ServerContainer, func(), error) {
	wire.Build(
		configSet,
		loggerSet,
		storageSet,
		repositorySet,
		coreSet,
		serverSet,
		wire.Struct(new(ServerContainer), "Logger", "Server"),
	)
	return nil, nil, nil
}
