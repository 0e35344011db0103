package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/school-results-api/api/swagger"
	"github.com/noah-isme/school-results-api/internal/handler"
	"github.com/noah-isme/school-results-api/internal/middleware"
	"github.com/noah-isme/school-results-api/internal/models"
	"github.com/noah-isme/school-results-api/internal/repository"
	"github.com/noah-isme/school-results-api/internal/service"
	"github.com/noah-isme/school-results-api/pkg/cache"
	"github.com/noah-isme/school-results-api/pkg/config"
	"github.com/noah-isme/school-results-api/pkg/database"
	"github.com/noah-isme/school-results-api/pkg/jobs"
	"github.com/noah-isme/school-results-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/school-results-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/school-results-api/pkg/middleware/requestid"
)

// @title School Results API
// @version 1.0.0
// @description Computes and serves term results, subject positions and class positions.
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(db.DB); err != nil {
			return err
		}
		logr.Info("migrations applied")
	}

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	metrics := service.NewMetricsService()
	validate := validator.New()

	var cacheRepo service.CacheRepository
	var guard service.RunGuard = service.NewLocalRunGuard(cfg.Computation.LockWait)
	if redisClient != nil {
		store := repository.NewCacheRepository(redisClient, logr)
		cacheRepo = store
		if cfg.Computation.UseRedisLock {
			guard = service.NewRedisRunGuard(store, cfg.Computation.LockTTL, cfg.Computation.LockWait, logr)
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.ReportCache.TTL, logr, cfg.ReportCache.Enabled)

	terms := repository.NewTermRepository(db)
	enrollments := repository.NewEnrollmentRepository(db)
	subjects := repository.NewSubjectRepository(db)
	results := repository.NewResultRepository(db)

	computer := service.NewResultComputationService(service.ComputationDeps{
		Periods:     terms,
		Classes:     repository.NewClassRepository(db),
		Enrollments: enrollments,
		Subjects:    subjects,
		Assessments: repository.NewAssessmentRepository(db),
		GradeRules:  repository.NewGradeRuleRepository(db),
		Results:     results,
		Guard:       guard,
		Cache:       cacheSvc,
		Metrics:     metrics,
	}, cfg.Computation.Parallelism, logr)

	jobSvc := service.NewComputationJobService(repository.NewComputationRunRepository(db), computer, cfg.Computation.RunTimeout, logr)
	queue := jobs.NewQueue("result-computation", jobSvc.HandleJob, jobs.QueueConfig{
		Workers:    cfg.Computation.Workers,
		BufferSize: cfg.Computation.QueueCapacity,
		MaxRetries: cfg.Computation.Retries,
		RetryDelay: 2 * time.Second,
		Logger:     logr,
	})
	queue.Start(ctx)
	defer queue.Stop()
	jobSvc.SetQueue(queue)

	releases := service.NewReleaseService(repository.NewReleaseRepository(db), terms, validate, logr)
	sheets := service.NewResultSheetService(results, enrollments, subjects, terms, releases, validate, logr)

	router := newRouter(cfg, logr, routerDeps{
		verifier: service.NewTokenVerifier(cfg.JWT.Secret, cfg.JWT.Issuer),
		metrics:  metrics,
		health:   handler.NewMetricsHandler(metrics, db),
		results:  handler.NewResultHandler(jobSvc, computer, sheets),
		releases: handler.NewReleaseHandler(releases),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

type routerDeps struct {
	verifier *service.TokenVerifier
	metrics  *service.MetricsService
	health   *handler.MetricsHandler
	results  *handler.ResultHandler
	releases *handler.ReleaseHandler
}

func newRouter(cfg *config.Config, logr *zap.Logger, deps routerDeps) *gin.Engine {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS))
	r.Use(middleware.Metrics(deps.metrics))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", deps.health.Health)
	r.GET("/ready", deps.health.Ready)
	r.GET("/metrics", deps.health.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	admin := string(models.RoleAdmin)
	teacher := string(models.RoleTeacher)

	api := r.Group(cfg.APIPrefix + "/results")
	api.Use(middleware.JWT(deps.verifier))

	api.POST("/compute", middleware.RBAC(admin, teacher), deps.results.Compute)
	api.GET("/runs/:id", middleware.RBAC(admin, teacher), deps.results.RunStatus)
	api.GET("/report", middleware.RBAC(admin, teacher), deps.results.LatestReport)
	api.GET("/classes/:classId/master-sheet", middleware.RBAC(admin, teacher), deps.results.MasterSheet)
	api.GET("/assessment-status", middleware.RBAC(admin, teacher), deps.results.AssessmentStatus)
	api.GET("/students/:studentId", middleware.RBAC(admin, teacher, string(models.RoleParent), middleware.SelfStudent), deps.results.StudentSheet)

	releases := api.Group("/releases")
	releases.GET("", middleware.RBAC(admin, teacher), deps.releases.List)
	releases.GET("/current", middleware.RBAC(admin, teacher), deps.releases.Current)
	releases.POST("", middleware.RBAC(admin), deps.releases.Create)
	releases.PATCH("/:id/toggle", middleware.RBAC(admin), deps.releases.Toggle)

	return r
}
