package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/andresuchdata/purchasing/backend-go/internal/cache"
	"github.com/andresuchdata/purchasing/backend-go/internal/config"
	"github.com/andresuchdata/purchasing/backend-go/internal/storage"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func runExport(c *cli.Context) error {
	id, err := strconv.ParseInt(c.Args().First(), 10, 64)
	if err != nil || id <= 0 {
		return fmt.Errorf("expected an order id, got %q", c.Args().First())
	}

	svc, err := newService(c)
	if err != nil {
		return err
	}

	data, name, err := svc.ExportOrder(c.Context, id)
	if err != nil {
		return err
	}

	dir := c.String("out")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed creating %s: %w", dir, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed writing %s: %w", path, err)
	}

	log.Info().Int64("order_id", id).Str("path", path).Msg("order exported")
	return nil
}

func runArchives(c *cli.Context) error {
	cfg := config.Load()
	if !cfg.Storage.Enabled {
		return fmt.Errorf("storage is disabled (set STORAGE_ENABLED=true)")
	}

	client, err := storage.NewS3Client(cfg.Storage)
	if err != nil {
		return err
	}

	objects, err := client.ListObjects(c.Context, c.String("prefix"))
	if err != nil {
		return err
	}
	for _, o := range objects {
		fmt.Printf("%s\t%d\n", o.Key, o.Size)
	}
	return nil
}

func runCacheFlush(c *cli.Context) error {
	candidates, err := cache.NewCandidateCache(config.Load().Cache)
	if err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}
	if err := candidates.InvalidateAll(c.Context); err != nil {
		return fmt.Errorf("failed to flush candidate cache: %w", err)
	}
	log.Info().Msg("candidate cache flushed")
	return nil
}
