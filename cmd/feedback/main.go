package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/eberleben15/TheOddsOracle-sub001/internal/calibration"
	"github.com/eberleben15/TheOddsOracle-sub001/internal/config"
	"github.com/eberleben15/TheOddsOracle-sub001/internal/database"
	"github.com/eberleben15/TheOddsOracle-sub001/internal/datasource"
	applogger "github.com/eberleben15/TheOddsOracle-sub001/internal/logger"
	"github.com/eberleben15/TheOddsOracle-sub001/internal/repository"
	"github.com/eberleben15/TheOddsOracle-sub001/internal/service"
)

var (
	configFile string
	sport      string
	logger     *logrus.Logger
	cfg        *config.Config
	db         *database.DB
	providers  *datasource.Providers
	engine     *service.Engine
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	varianceCmd.Flags().StringVar(&sport, "sport", "basketball_nba", "Sport key")
}

var rootCmd = &cobra.Command{
	Use:   "feedback",
	Short: "Analyze model performance against the spread",
	Long:  `Builds the against-the-spread feedback report from validated predictions: correlations, segment tallies, bias table, and tuning recommendations.`,
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

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate the ATS feedback report",
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := engine.RunFeedbackReport(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(report)
	},
}

var varianceCmd = &cobra.Command{
	Use:   "rebuild-variance",
	Short: "Rebuild the variance model from validated history",
	RunE: func(cmd *cobra.Command, args []string) error {
		vm, err := engine.RebuildVarianceModel(cmd.Context(), sport)
		if err != nil {
			return err
		}
		return printJSON(vm)
	},
}

func main() {
	rootCmd.AddCommand(reportCmd, varianceCmd)
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

	audit := applogger.NewAuditLogger(logger)
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

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
