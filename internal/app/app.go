package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"equb-app-go/internal/config"
	"equb-app-go/internal/db"
	attendancedomain "equb-app-go/internal/domain/attendance"
	equbdomain "equb-app-go/internal/domain/equb"
	memberdomain "equb-app-go/internal/domain/member"
	payoutdomain "equb-app-go/internal/domain/payout"
	reportingdomain "equb-app-go/internal/domain/reporting"
	"equb-app-go/internal/metrics"
	"equb-app-go/internal/repository/inmemory"
	attendancerepo "equb-app-go/internal/repository/postgres/attendance"
	equbrepo "equb-app-go/internal/repository/postgres/equb"
	memberrepo "equb-app-go/internal/repository/postgres/member"
	payoutrepo "equb-app-go/internal/repository/postgres/payout"
	reportingrepo "equb-app-go/internal/repository/postgres/reporting"
	"equb-app-go/internal/scheduler"
	"equb-app-go/internal/transport/httpserver"
	"equb-app-go/internal/transport/httpserver/handler"
	attendancehandler "equb-app-go/internal/transport/httpserver/handler/attendance"
	commonhandler "equb-app-go/internal/transport/httpserver/handler/common"
	equbshandler "equb-app-go/internal/transport/httpserver/handler/equbs"
	membershandler "equb-app-go/internal/transport/httpserver/handler/members"
	payoutshandler "equb-app-go/internal/transport/httpserver/handler/payouts"
	reportinghandler "equb-app-go/internal/transport/httpserver/handler/reporting"
	"equb-app-go/pkg/logger"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	cfg        config.Config
	log        logger.Logger
	httpServer *http.Server
	sweep      *scheduler.Daily
	db         *gorm.DB
}

func New(log logger.Logger) (*App, error) {
	log.Info("app: loading config")
	cfg, err := config.Load(log)
	if err != nil {
		return nil, err
	}

	log.Info("app: initializing database", "driver", cfg.DB.Driver)
	dbConn, err := db.Open(cfg.DB, log)
	if err != nil {
		return nil, err
	}

	application, err := build(cfg, dbConn, log)
	if err != nil {
		_ = closeDB(dbConn)
		return nil, err
	}
	return application, nil
}

func build(cfg config.Config, dbConn *gorm.DB, log logger.Logger) (*App, error) {
	m := metrics.New()

	equbService := equbdomain.NewService(equbrepo.NewPostgres(dbConn))
	memberService := memberdomain.NewService(memberrepo.NewPostgres(dbConn), equbService).WithLogger(log)
	attendanceRepo := attendancerepo.NewPostgres(dbConn)
	attendanceService := attendancedomain.NewService(attendanceRepo)
	payoutService := payoutdomain.NewService(payoutrepo.NewPostgres(dbConn), m)
	reportingService := reportingdomain.NewService(reportingrepo.NewPostgres(dbConn)).
		WithCache(inmemory.NewInMemoryDashboardCache(), cfg.Reporting.CacheTTL)

	log.Info("app: initializing router")
	handlers := handler.New(
		commonhandler.New(log),
		equbshandler.New(equbService, reportingService, log),
		membershandler.New(memberService, reportingService, log),
		attendancehandler.New(attendanceService, reportingService, log),
		payoutshandler.New(payoutService, reportingService, log),
		reportinghandler.New(reportingService, log),
	)
	router := httpserver.NewRouter(cfg, handlers, m, log)

	application := &App{
		cfg:        cfg,
		log:        log,
		httpServer: httpserver.New(cfg, router),
		db:         dbConn,
	}

	if cfg.Sweep.Enabled {
		sweep, err := newSweepSchedule(cfg.Sweep, attendanceRepo, m, log)
		if err != nil {
			return nil, err
		}
		application.sweep = sweep
	}

	return application, nil
}

func newSweepSchedule(cfg config.SweepConfig, repo attendancedomain.Repository, m *metrics.Metrics, log logger.Logger) (*scheduler.Daily, error) {
	hour, minute, err := config.ParseClock(cfg.RunAt)
	if err != nil {
		return nil, fmt.Errorf("sweep schedule: %w", err)
	}
	location, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("sweep timezone: %w", err)
	}

	sweeper := attendancedomain.NewSweeper(repo, log, m)
	job := func(ctx context.Context, now time.Time) error {
		_, err := sweeper.Run(ctx, now)
		return err
	}

	log.Info("app: sweep scheduled", "run_at", cfg.RunAt, "timezone", location.String())
	return scheduler.NewDaily("attendance_sweep", hour, minute, location, job, log).
		WithRunOnStart(cfg.RunOnStart), nil
}

func (a *App) HTTPServer() *http.Server {
	return a.httpServer
}

// Run serves HTTP and drives the sweep schedule until ctx is cancelled or
// either of them fails, then shuts the server down gracefully.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.log.Info("http: listening", "addr", a.httpServer.Addr)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := a.httpServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})

	if a.sweep != nil {
		g.Go(func() error {
			return a.sweep.Run(ctx)
		})
	}

	return g.Wait()
}

func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return closeDB(a.db)
}

func closeDB(gormDB *gorm.DB) error {
	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
