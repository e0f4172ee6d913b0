// cmd/orderctl/main.go
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/andresuchdata/purchasing/backend-go/internal/cache"
	"github.com/andresuchdata/purchasing/backend-go/internal/config"
	"github.com/andresuchdata/purchasing/backend-go/internal/repository/postgres"
	"github.com/andresuchdata/purchasing/backend-go/internal/service"
	"github.com/andresuchdata/purchasing/backend-go/internal/storage"
	"github.com/andresuchdata/purchasing/backend-go/pkg/logger"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

type dbKey struct{}

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func initDB(c *cli.Context) error {
	db, err := postgres.Open("pgx", c.String("db-url"))
	if err != nil {
		return err
	}
	c.Context = context.WithValue(c.Context, dbKey{}, db)
	return nil
}

func closeDB(c *cli.Context) error {
	if db, ok := c.Context.Value(dbKey{}).(*postgres.DB); ok && db != nil {
		return db.Close()
	}
	return nil
}

func dbFrom(c *cli.Context) *postgres.DB {
	db, _ := c.Context.Value(dbKey{}).(*postgres.DB)
	return db
}

// newService wires the order service against the command's database, using
// the cache and archive settings from the environment
func newService(c *cli.Context) (*service.OrderService, error) {
	cfg := config.Load()

	candidates, err := cache.NewCandidateCache(cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}

	opts := []service.Option{}
	if cfg.Storage.Enabled {
		archive, err := storage.NewS3Client(cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize storage: %w", err)
		}
		opts = append(opts, service.WithArchive(archive))
	}

	return service.NewOrderService(postgres.NewOrderRepository(dbFrom(c)), candidates, opts...), nil
}

func main() {
	_ = godotenv.Load(".env")
	logger.Configure(os.Getenv("LOG_LEVEL"))

	app := &cli.App{
		Name:  "orderctl",
		Usage: "Purchase order maintenance and reconciliation tools",
		Commands: []*cli.Command{
			{
				Name:   "migrate",
				Usage:  "Apply the SQL files in the migrations directory",
				Flags:  []cli.Flag{newDBURLFlag(), migrationsDirFlag()},
				Before: initDB,
				After:  closeDB,
				Action: runMigrate,
			},
			{
				Name:  "seed",
				Usage: "Seed master data (suppliers, stores, sections, items, stock, forecasts, sales, users)",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.StringFlag{
						Name:    "data-dir",
						Usage:   "Directory containing master seed data",
						Value:   "./data/seeds/master_data",
						EnvVars: []string{"SEED_DATA_DIR"},
					},
				},
				Before: initDB,
				After:  closeDB,
				Action: runSeed,
			},
			{
				Name:      "reconcile",
				Usage:     "Print the derived columns of the lines in a CSV or XLSX file",
				ArgsUsage: "<lines.csv|lines.xlsx>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "start", Usage: "Sales window start (YYYY-MM-DD)", Required: true},
					&cli.StringFlag{Name: "end", Usage: "Sales window end (YYYY-MM-DD)", Required: true},
				},
				Action: runReconcile,
			},
			{
				Name:      "export",
				Usage:     "Write the XLSX export of an order",
				ArgsUsage: "<order-id>",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.StringFlag{Name: "out", Usage: "Output directory", Value: ".", EnvVars: []string{"APP_EXPORT_DIR"}},
				},
				Before: initDB,
				After:  closeDB,
				Action: runExport,
			},
			{
				Name:  "archives",
				Usage: "List archived order exports",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "prefix", Usage: "Key prefix", Value: "orders/"},
				},
				Action: runArchives,
			},
			{
				Name:   "cache-flush",
				Usage:  "Drop every cached candidate line list",
				Action: runCacheFlush,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("orderctl failed")
	}
}
