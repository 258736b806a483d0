package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	_ "salesdash/cmd/dashboard-service/docs"
	"salesdash/internal/alerting"
	"salesdash/internal/config"
	"salesdash/internal/constants"
	"salesdash/internal/logger"
	"salesdash/internal/sales"
	"salesdash/internal/tableview"
	"salesdash/pkg/logging"
	"salesdash/pkg/migrations"
)

var (
	configFile string
)

// @title           Sales Dashboard API
// @version         1.0
// @description     Sales table, alert rules, alert lifecycle and AI summaries for marketplace sellers

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8080
// @BasePath  /api/v1

// @schemes   http https

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   constants.ServiceName,
		Short: "Sales dashboard service",
		Long:  "Sales dashboard service serves the sales table, alert rules and alert feed over REST",
		RunE:  serveCmd().RunE,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to config file (required)")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(alertsCmd())
	rootCmd.AddCommand(seedCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup resolves the config file and builds the logger.
func setup() (*config.Config, logger.Logger, error) {
	earlyLog := logging.NewEarlyLog()

	if configFile == "" {
		configFile = os.Getenv("CONFIG_FILE")
		if configFile == "" {
			earlyLog.Error("Config file is required. Use --config flag or CONFIG_FILE environment variable")
			return nil, nil, fmt.Errorf("config file is required")
		}
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		earlyLog.Error("Failed to load config: %v", err)
		return nil, nil, err
	}

	log, err := logger.New(cfg.Logging.Level, cfg.Logging.Format, constants.ServiceName)
	if err != nil {
		earlyLog.Error("Failed to init logger: %v", err)
		return nil, nil, err
	}
	return cfg, log, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the dashboard service",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			log.InfowCtx(ctx, "Starting Dashboard Service", "data_source", cfg.DataSource.Type)

			app := NewApp(cfg, log)
			if err := app.Initialize(ctx); err != nil {
				log.Fatalf("Failed to initialize application: %v", err)
			}

			if err := app.Run(ctx); err != nil {
				log.ErrorwCtx(ctx, "Application error", "error", err)
				return err
			}
			return nil
		},
	}
}

// alertsCmd evaluates the configured rules once against the configured data
// source and prints the alerts. Nothing is published.
func alertsCmd() *cobra.Command {
	var (
		format   string
		filters  tableview.Filters
		severity string
	)

	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "Print the alerts the configured rules raise",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx := cmd.Context()
			app := NewApp(cfg, log)
			defer func() {
				app.dbConnector.ShutdownDatabases(context.Background(), app.redis, app.db, app.mongoClient)
			}()

			if err := app.initDatabases(ctx); err != nil {
				return err
			}
			repo, err := app.newRepository()
			if err != nil {
				return err
			}
			records, err := repo.Load(ctx)
			if err != nil {
				return err
			}
			rules, materializer, err := app.newRuleStore()
			if err != nil {
				return err
			}

			alerts := materializer.Materialize(filters.Apply(records), rules.List(), nil, nil)
			if severity != "" {
				kept := alerts[:0]
				for _, a := range alerts {
					if string(a.Severity) == severity {
						kept = append(kept, a)
					}
				}
				alerts = kept
			}
			return writeAlerts(cmd.OutOrStdout(), format, alerts, rules.List())
		},
	}

	cmd.Flags().StringVar(&format, "format", "yaml", "Output format: yaml or json")
	cmd.Flags().StringVar(&severity, "severity", "", "Only print alerts of this severity")
	cmd.Flags().StringVar(&filters.SearchCity, "city", "", "Filter records by city")
	cmd.Flags().StringVar(&filters.Status, "status", "", "Filter records by shipping status")
	cmd.Flags().StringVar(&filters.DateStart, "from", "", "First sale date (yyyy-mm-dd)")
	cmd.Flags().StringVar(&filters.DateEnd, "to", "", "Last sale date (yyyy-mm-dd)")
	cmd.Flags().BoolVar(&filters.ShowHidden, "show-hidden", false, "Include hidden records")
	return cmd
}

func writeAlerts(w io.Writer, format string, alerts []alerting.Alert, rules []alerting.Rule) error {
	groups := alerting.GroupByRule(alerts, rules)
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(groups)
	case "yaml", "":
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(groups)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// seedCmd copies records from a file, or the demo set, into every configured database.
func seedCmd() *cobra.Command {
	var from string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load sale records into the configured databases",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx := cmd.Context()
			app := NewApp(cfg, log)
			defer func() {
				app.dbConnector.ShutdownDatabases(context.Background(), app.redis, app.db, app.mongoClient)
			}()

			if err := app.initDatabases(ctx); err != nil {
				return err
			}

			var source sales.Repository = sales.NewSampleRepository()
			if from != "" {
				source = sales.NewFileRepository(from)
			}
			records, err := source.Load(ctx)
			if err != nil {
				return err
			}

			seeded := 0
			if app.db != nil {
				if err := migrations.RunPostgres(app.db); err != nil {
					return err
				}
				if err := sales.NewPostgresRepository(app.db).Insert(ctx, records); err != nil {
					return err
				}
				seeded++
				log.InfowCtx(ctx, "Seeded PostgreSQL", "records", len(records))
			}
			if app.mongoClient != nil {
				db := app.mongoDatabase()
				if err := migrations.EnsureSalesCollection(ctx, db, constants.DefaultSalesCollection); err != nil {
					return err
				}
				if err := sales.NewMongoRepository(db).Insert(ctx, records); err != nil {
					return err
				}
				seeded++
				log.InfowCtx(ctx, "Seeded MongoDB", "records", len(records))
			}

			if seeded == 0 {
				return fmt.Errorf("no database configured")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "YAML or JSON file with records (default: demo set)")
	return cmd
}
