//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"
	"surveycore/internal"
	"surveycore/internal/anonymization"
	"surveycore/internal/controllers"
	"surveycore/internal/dispatch"
	"surveycore/internal/gate"
	"surveycore/internal/jobs"
	"surveycore/internal/providers"
	"surveycore/internal/services"
	"surveycore/internal/session"
	"surveycore/internal/storage"
	"surveycore/internal/structures"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, func(), error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewMetricsProvider,
		providers.NewInstrumentedCacheProvider,
		providers.NewAuthProvider,

		storage.NewLedgerStore,
		storage.NewSnapshotter,
		session.NewSessionStore,
		anonymization.NewHasher,
		dispatch.NewDispatcher,
		gate.NewGate,

		services.NewAdmissionService,
		services.NewLedgerService,
		services.NewCampaignService,
		services.NewScoringService,

		jobs.NewZstdCompressor,
		jobs.NewFileManager,
		jobs.NewArchiver,
		jobs.NewScheduler,

		controllers.NewSurveyController,
		controllers.NewReportController,
		controllers.NewCampaignController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil, nil
}
