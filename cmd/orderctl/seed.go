package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func migrationsDirFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "dir",
		Usage:   "Directory containing *.sql migrations",
		Value:   "./migrations",
		EnvVars: []string{"MIGRATIONS_DIR"},
	}
}

// runMigrate executes every .sql file in lexical order. Migrations are
// written to be re-runnable.
func runMigrate(c *cli.Context) error {
	files, err := filepath.Glob(filepath.Join(c.String("dir"), "*.sql"))
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no migrations found in %s", c.String("dir"))
	}
	sort.Strings(files)

	db := dbFrom(c)
	for _, f := range files {
		body, err := os.ReadFile(f)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", f, err)
		}
		if _, err := db.ExecContext(c.Context, string(body)); err != nil {
			return fmt.Errorf("failed to apply %s: %w", f, err)
		}
		log.Info().Str("file", filepath.Base(f)).Msg("migration applied")
	}
	return nil
}

// seedTables lists the master data files in dependency order
var seedTables = []struct {
	table    string
	columns  []string
	conflict string
}{
	{"suppliers", []string{"id", "name"}, "id"},
	{"stores", []string{"id", "code", "name"}, "id"},
	{"sections", []string{"id", "name"}, "id"},
	{"subsections", []string{"id", "section_id", "name"}, "id"},
	{"items", []string{"code", "name", "supplier_id", "section_id", "subsection_id", "pack_size", "purchase_price", "disabled"}, "code"},
	{"item_control_stock", []string{"item_code", "store_id", "days_stock", "date_last_purchase", "quantity_last_purchase", "stock_available"}, "item_code, store_id"},
	{"sales_forecasts", []string{"item_code", "store_id", "date", "quantity"}, "item_code, store_id, date"},
	{"sales", []string{"id", "ticket_number", "store_id", "item_code", "date", "quantity", "price"}, "id"},
	{"users", []string{"id", "name", "is_active"}, "id"},
	{"user_groups", []string{"user_id", "group_name"}, "user_id, group_name"},
}

func runSeed(c *cli.Context) error {
	dataDir := c.String("data-dir")
	db := dbFrom(c)

	log.Info().Str("dir", dataDir).Msg("starting database seeding")

	err := db.WithTx(c.Context, func(tx *sqlx.Tx) error {
		for _, t := range seedTables {
			path := filepath.Join(dataDir, t.table+".csv")
			if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
				log.Warn().Str("file", path).Msg("seed file not found, skipping")
				continue
			}
			n, err := seedTable(c.Context, tx, t.table, t.columns, t.conflict, path)
			if err != nil {
				return fmt.Errorf("failed to seed %s: %w", t.table, err)
			}
			log.Info().Str("table", t.table).Int("rows", n).Msg("seeded")
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Info().Msg("database seeding completed")
	return nil
}

func seedTable(ctx context.Context, tx *sqlx.Tx, table string, columns []string, conflict, path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open file %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("failed to read CSV header: %w", err)
	}

	query := buildUpsert(table, columns, conflict)

	count := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return count, fmt.Errorf("failed to read CSV record: %w", err)
		}

		args := make([]interface{}, len(columns))
		for i, col := range columns {
			idx := getColumnIndex(header, col)
			if idx < 0 || idx >= len(record) || strings.TrimSpace(record[idx]) == "" {
				args[i] = nil
				continue
			}
			args[i] = strings.TrimSpace(record[idx])
		}

		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return count, fmt.Errorf("failed to insert record %d: %w", count+1, err)
		}
		count++
	}

	return count, nil
}

func buildUpsert(table string, columns []string, conflict string) string {
	placeholders := make([]string, len(columns))
	for i := range columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	keys := make(map[string]bool)
	for _, k := range strings.Split(conflict, ",") {
		keys[strings.TrimSpace(k)] = true
	}
	var updates []string
	for _, col := range columns {
		if !keys[col] {
			updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", col, col))
		}
	}

	action := "DO NOTHING"
	if len(updates) > 0 {
		action = "DO UPDATE SET " + strings.Join(updates, ", ")
	}

	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) %s",
		table, strings.Join(columns, ", "), strings.Join(placeholders, ", "), conflict, action)
}

func getColumnIndex(header []string, column string) int {
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), column) {
			return i
		}
	}
	return -1
}
