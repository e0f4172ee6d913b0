package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/andresuchdata/purchasing/backend-go/internal/config"
	"github.com/andresuchdata/purchasing/backend-go/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	candidateKeyPrefix     = "orders:candidates"
	candidateScanBatchSize = 100
)

// CandidateCache keeps the candidate lines offered for a new order, keyed by
// store, supplier, section and sales window
type CandidateCache interface {
	GetLines(ctx context.Context, filter domain.CandidateFilter) ([]domain.OrderLine, bool, error)
	SetLines(ctx context.Context, filter domain.CandidateFilter, lines []domain.OrderLine) error
	InvalidateAll(ctx context.Context) error
}

type redisCandidateCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopCandidateCache struct{}

func NewCandidateCache(cfg config.CacheConfig) (CandidateCache, error) {
	if !cfg.Enabled {
		return &noopCandidateCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisCandidateCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func NewNoopCandidateCache() CandidateCache {
	return &noopCandidateCache{}
}

func (c *redisCandidateCache) GetLines(ctx context.Context, filter domain.CandidateFilter) ([]domain.OrderLine, bool, error) {
	payload, err := c.client.Get(ctx, buildCandidateKey(filter)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var lines []domain.OrderLine
	if err := json.Unmarshal(payload, &lines); err != nil {
		return nil, false, fmt.Errorf("decode candidate cache: %w", err)
	}

	return lines, true, nil
}

func (c *redisCandidateCache) SetLines(ctx context.Context, filter domain.CandidateFilter, lines []domain.OrderLine) error {
	payload, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("encode candidate cache: %w", err)
	}

	if err := c.client.Set(ctx, buildCandidateKey(filter), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisCandidateCache) InvalidateAll(ctx context.Context) error {
	n, err := deleteKeysWithPrefix(ctx, c.client, candidateKeyPrefix, candidateScanBatchSize)
	if err != nil {
		return err
	}
	log.Debug().Int("keys", n).Msg("cache: candidate lists invalidated")
	return nil
}

func (n *noopCandidateCache) GetLines(ctx context.Context, filter domain.CandidateFilter) ([]domain.OrderLine, bool, error) {
	return nil, false, nil
}

func (n *noopCandidateCache) SetLines(ctx context.Context, filter domain.CandidateFilter, lines []domain.OrderLine) error {
	return nil
}

func (n *noopCandidateCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func buildCandidateKey(filter domain.CandidateFilter) string {
	return fmt.Sprintf("%s:%s", candidateKeyPrefix, candidateFilterHash(filter))
}

func candidateFilterHash(filter domain.CandidateFilter) string {
	parts := []string{
		fmt.Sprintf("store=%d", filter.StoreID),
		fmt.Sprintf("supplier=%d", filter.SupplierID),
		fmt.Sprintf("section=%d", filter.SectionID),
	}
	if filter.SubsectionID != nil {
		parts = append(parts, fmt.Sprintf("subsection=%d", *filter.SubsectionID))
	}
	if !filter.Window.StartDate.IsZero() {
		parts = append(parts, "start="+filter.Window.StartDate.Format("2006-01-02"))
	}
	if !filter.Window.EndDate.IsZero() {
		parts = append(parts, "end="+filter.Window.EndDate.Format("2006-01-02"))
	}

	sum := sha1.Sum([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}
