package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/eberleben15/TheOddsOracle-sub001/internal/calibration"
	"github.com/eberleben15/TheOddsOracle-sub001/internal/config"
	"github.com/eberleben15/TheOddsOracle-sub001/internal/database"
	"github.com/eberleben15/TheOddsOracle-sub001/internal/datasource"
	applogger "github.com/eberleben15/TheOddsOracle-sub001/internal/logger"
	"github.com/eberleben15/TheOddsOracle-sub001/internal/models"
	"github.com/eberleben15/TheOddsOracle-sub001/internal/repository"
	"github.com/eberleben15/TheOddsOracle-sub001/internal/service"
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
	engine     *service.Engine

	// predict flags
	gameID     string
	sport      string
	season     string
	homeTeamID string
	awayTeamID string
	gameDate   string
	mlHome     float64
	mlAway     float64
	spreadLine float64
	totalLine  float64

	// simulate flags
	predictionID string
	iterations   int
	seed         int64
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")

	predictCmd.Flags().StringVar(&gameID, "game-id", "", "Upstream game identifier")
	predictCmd.Flags().StringVar(&sport, "sport", "basketball_nba", "Sport key")
	predictCmd.Flags().StringVar(&season, "season", "", "Season identifier, e.g. 2025-2026")
	predictCmd.Flags().StringVar(&homeTeamID, "home", "", "Home team identifier")
	predictCmd.Flags().StringVar(&awayTeamID, "away", "", "Away team identifier")
	predictCmd.Flags().StringVar(&gameDate, "date", "", "Game date (YYYY-MM-DD, default today)")
	predictCmd.Flags().Float64Var(&mlHome, "ml-home", 0, "Home moneyline (American odds, optional)")
	predictCmd.Flags().Float64Var(&mlAway, "ml-away", 0, "Away moneyline (American odds, optional)")
	predictCmd.Flags().Float64Var(&spreadLine, "spread", 0, "Market spread, home-minus-away (optional)")
	predictCmd.Flags().Float64Var(&totalLine, "total", 0, "Market total (optional)")
	predictCmd.MarkFlagRequired("game-id")
	predictCmd.MarkFlagRequired("home")
	predictCmd.MarkFlagRequired("away")

	simulateCmd.Flags().StringVar(&predictionID, "prediction-id", "", "Tracked prediction id to simulate")
	simulateCmd.Flags().IntVar(&iterations, "iterations", 0, "Simulation count (default from config)")
	simulateCmd.Flags().Int64Var(&seed, "seed", 0, "Deterministic seed (0 = random)")
	simulateCmd.MarkFlagRequired("prediction-id")
}

var rootCmd = &cobra.Command{
	Use:   "predictor",
	Short: "Generate and simulate matchup predictions",
	Long:  `Generates calibrated matchup predictions from team analytics and runs Monte Carlo score simulations against the fitted variance model.`,
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

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Generate a prediction for one game",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPredict(cmd.Context())
	},
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a Monte Carlo simulation for a stored prediction",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSimulate(cmd.Context())
	},
}

func main() {
	rootCmd.AddCommand(predictCmd, simulateCmd)
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

func runPredict(ctx context.Context) error {
	date := time.Now().UTC()
	if gameDate != "" {
		parsed, err := time.Parse("2006-01-02", gameDate)
		if err != nil {
			return fmt.Errorf("invalid --date: %w", err)
		}
		date = parsed
	}

	req := service.GameRequest{
		GameID:     gameID,
		Sport:      sport,
		Season:     season,
		HomeTeamID: homeTeamID,
		AwayTeamID: awayTeamID,
		GameDate:   date,
	}
	if mlHome != 0 || spreadLine != 0 || totalLine != 0 {
		req.Odds = &models.OddsSnapshot{
			MoneylineHome: decimal.NewFromFloat(mlHome),
			MoneylineAway: decimal.NewFromFloat(mlAway),
			SpreadLine:    decimal.NewFromFloat(spreadLine),
			TotalLine:     decimal.NewFromFloat(totalLine),
			CapturedAt:    time.Now().UTC(),
		}
	}

	tracked, err := engine.GeneratePrediction(ctx, req)
	if err != nil {
		return err
	}
	return printJSON(tracked)
}

func runSimulate(ctx context.Context) error {
	id, err := uuid.Parse(predictionID)
	if err != nil {
		return fmt.Errorf("invalid --prediction-id: %w", err)
	}

	tracked, err := engine.Prediction(ctx, id)
	if err != nil {
		return err
	}

	result, err := engine.Simulate(ctx, tracked.Prediction, iterations, seed)
	if err != nil {
		return err
	}
	return printJSON(result)
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
