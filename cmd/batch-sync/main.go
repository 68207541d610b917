package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/eberleben15/TheOddsOracle-sub001/internal/calibration"
	"github.com/eberleben15/TheOddsOracle-sub001/internal/config"
	"github.com/eberleben15/TheOddsOracle-sub001/internal/database"
	"github.com/eberleben15/TheOddsOracle-sub001/internal/datasource"
	"github.com/eberleben15/TheOddsOracle-sub001/internal/health"
	applogger "github.com/eberleben15/TheOddsOracle-sub001/internal/logger"
	"github.com/eberleben15/TheOddsOracle-sub001/internal/metrics"
	"github.com/eberleben15/TheOddsOracle-sub001/internal/repository"
	"github.com/eberleben15/TheOddsOracle-sub001/internal/scheduler"
	"github.com/eberleben15/TheOddsOracle-sub001/internal/service"
	"github.com/eberleben15/TheOddsOracle-sub001/internal/syncer"
)

// Build information - set via ldflags
var (
	Version = "dev"
)

var (
	configFile string
	logger     *logrus.Logger
	cfg        *config.Config
	db         *database.DB
	providers  *datasource.Providers
	batchSync  *syncer.Synchronizer
	engine     *service.Engine
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
}

var rootCmd = &cobra.Command{
	Use:   "batch-sync",
	Short: "Match pending predictions against final scores",
	Long:  `Resolves unvalidated predictions against the completed-scores feed, records outcomes, and retrains calibration when enough validated samples exist.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		return setupDependencies(cmd.Context())
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		teardown()
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute one sync pass and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOnce(cmd.Context())
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the sync and feedback jobs on their cron schedules",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

func main() {
	rootCmd.AddCommand(runCmd, serveCmd)
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func loadConfig() error {
	var err error
	cfg, err = config.LoadWithDefaults(configFile)
	if err != nil {
		return err
	}
	if secretName := os.Getenv("AWS_SECRET_NAME"); secretName != "" {
		region := os.Getenv("AWS_REGION")
		if region == "" {
			region = "us-east-1"
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			return fmt.Errorf("failed to load secrets: %w", err)
		}
	}
	return config.Validate(cfg)
}

func setupDependencies(ctx context.Context) error {
	logger = applogger.NewLogger(cfg.App.LogLevel)

	var err error
	db, err = database.NewDB(ctx, &cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	repos := repository.NewRepositories(db)

	providers = datasource.NewProviders(cfg.Providers, logger)

	calStore := calibration.NewStore(repos.ModelState, logger)
	if err := calStore.Load(ctx); err != nil {
		return fmt.Errorf("failed to load calibration: %w", err)
	}
	active := calStore.Active()
	metrics.SetCalibration(active.A, active.B)

	audit := applogger.NewAuditLogger(logger)
	fitter := calibration.NewFitter(cfg.Calibration, logger)
	batchSync = syncer.NewSynchronizer(cfg.Sync, repos.Predictions, providers.Scores, providers.Games,
		fitter, calStore, audit, logger)
	engine = service.NewEngine(cfg, repos, providers.Stats, calStore, audit, logger)
	return nil
}

func teardown() {
	if providers != nil {
		providers.Close()
	}
	if db != nil {
		db.Close()
	}
}

func runOnce(ctx context.Context) error {
	result, err := runSync(ctx)
	if err != nil {
		return err
	}
	out, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(out))
	return nil
}

func runSync(ctx context.Context) (*syncer.SyncResult, error) {
	start := time.Now()
	result, err := batchSync.Run(ctx)
	if err != nil {
		metrics.SyncErrorsTotal.Inc()
		return nil, err
	}
	metrics.SyncDuration.Observe(time.Since(start).Seconds())
	metrics.OutcomesRecordedTotal.WithLabelValues("batch").Add(float64(result.Matched))
	for range result.Errors {
		metrics.SyncErrorsTotal.Inc()
	}
	if result.Trained {
		metrics.RecalibrationsTotal.Inc()
	}
	return result, nil
}

// serve runs the sync and feedback jobs on their configured cron schedules,
// with health and metrics endpoints, until interrupted.
func serve(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	healthServer := health.NewServer(health.Config{
		ServiceName: "odds-oracle-batch-sync",
		Version:     Version,
		Port:        cfg.Health.Port,
		Logger:      logger,
		DB:          db,
	})
	if err := healthServer.Start(ctx); err != nil {
		return fmt.Errorf("failed to start health server: %w", err)
	}

	if cfg.Metrics.Enabled {
		go serveMetrics(ctx)
	}

	sched := scheduler.NewScheduler(logger)
	if err := sched.Schedule("batch-sync", cfg.Sync.CronSchedule, func(ctx context.Context) error {
		_, err := runSync(ctx)
		return err
	}); err != nil {
		return err
	}
	if err := sched.Schedule("feedback-report", cfg.Feedback.CronSchedule, func(ctx context.Context) error {
		_, err := engine.RunFeedbackReport(ctx)
		return err
	}); err != nil {
		return err
	}
	if err := sched.Start(); err != nil {
		return err
	}
	healthServer.SetReady(true)

	logger.WithField("next_run", sched.NextRun().Format(time.RFC3339)).Info("Batch sync serving")
	<-ctx.Done()

	healthServer.SetReady(false)
	return sched.Stop()
}

func serveMetrics(ctx context.Context) {
	mux := http.NewServeMux()
	mux.Handle(cfg.Metrics.Path, metrics.Handler())
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Metrics.Port),
		Handler: mux,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()
	logger.WithField("port", cfg.Metrics.Port).Info("Metrics server starting")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.WithError(err).Error("Metrics server error")
	}
}
