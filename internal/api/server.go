package api

import (
	"database/sql"

	"github.com/gin-gonic/gin"

	"github.com/icancodefyi/sarthi-ai/internal/api/auth"
	"github.com/icancodefyi/sarthi-ai/internal/api/data"
	"github.com/icancodefyi/sarthi-ai/internal/api/farmer"
	"github.com/icancodefyi/sarthi-ai/internal/api/proxy"
	"github.com/icancodefyi/sarthi-ai/internal/api/report"
	"github.com/icancodefyi/sarthi-ai/internal/api/simulate"
	"github.com/icancodefyi/sarthi-ai/internal/api/verify"
	"github.com/icancodefyi/sarthi-ai/internal/client/analytics"
	"github.com/icancodefyi/sarthi-ai/internal/client/llm"
	"github.com/icancodefyi/sarthi-ai/internal/directory"
	"github.com/icancodefyi/sarthi-ai/internal/pkg/config"
	"github.com/icancodefyi/sarthi-ai/internal/pkg/redis"
	"github.com/icancodefyi/sarthi-ai/internal/repository"
	"github.com/icancodefyi/sarthi-ai/internal/service"
)

// Deps are the collaborators the API is built from. Slots may be nil.
type Deps struct {
	Config    *config.Config
	DB        *sql.DB
	Users     directory.UserDirectory
	Registry  directory.CitizenRegistry
	Processor analytics.Processor
	Narrator  llm.Narrator
	QR        service.QREncoder
	Slots     *redis.SlotPool
}

// Services exposes the services behind the router
type Services struct {
	Auth         *service.AuthService
	Datasets     *service.DatasetService
	Interpret    *service.InterpretService
	Simulations  *service.SimulationService
	Reports      *service.ReportService
	Verification *service.VerificationService
	Farmers      *service.FarmerService
}

// NewServices wires repositories and services
func NewServices(d Deps, opts ...service.ReportOption) *Services {
	cfg := d.Config
	datasetRepo := repository.NewDatasetRepo(d.DB)
	reportRepo := repository.NewReportRepo(d.DB)

	return &Services{
		Auth:         service.NewAuthService(cfg.JWT, d.Users, cfg.App.DefaultUserID),
		Datasets:     service.NewDatasetService(datasetRepo, d.Processor, cfg.AnalyticsService.Timeout, maxUploadBytes(cfg)),
		Interpret:    service.NewInterpretService(datasetRepo, d.Narrator),
		Simulations:  service.NewSimulationService(datasetRepo, d.Processor),
		Reports:      service.NewReportService(d.DB, datasetRepo, reportRepo, d.Users, d.QR, cfg.App.BaseURL, opts...),
		Verification: service.NewVerificationService(reportRepo),
		Farmers:      service.NewFarmerService(d.Registry, datasetRepo),
	}
}

// NewEngine builds the gin engine serving every route
func NewEngine(d Deps, svc *Services) *gin.Engine {
	cfg := d.Config

	r := gin.New()
	r.Use(RecoveryMiddleware())
	r.Use(LoggerMiddleware())
	r.MaxMultipartMemory = maxUploadBytes(cfg)

	SetupRouter(r, &Handlers{
		Auth:     auth.NewHandler(svc.Auth, d.Users),
		Data:     data.NewHandler(svc.Datasets, maxUploadBytes(cfg)),
		Report:   report.NewHandler(svc.Reports, svc.Verification),
		Verify:   verify.NewHandler(svc.Verification, service.NewVisitorRateLimit(cfg.RateLimit.VerifyRPS, cfg.RateLimit.VerifyBurst)),
		Proxy:    proxy.NewHandler(svc.Interpret, d.Slots, cfg.LLM.Model, cfg.LLM.MaxConcurrency),
		Simulate: simulate.NewHandler(svc.Simulations),
		Farmer:   farmer.NewHandler(svc.Farmers),
	})

	return r
}

func maxUploadBytes(cfg *config.Config) int64 {
	return int64(cfg.App.MaxUploadMB) << 20
}
