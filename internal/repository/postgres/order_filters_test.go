package postgres

import (
	"testing"

	"github.com/andresuchdata/purchasing/backend-go/internal/config"
	"github.com/andresuchdata/purchasing/backend-go/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestBuildOrderFilterClause(t *testing.T) {
	clause, args := buildOrderFilterClause(domain.OrderFilter{}, "o", 1)
	assert.Empty(t, clause)
	assert.Nil(t, args)

	clause, args = buildOrderFilterClause(domain.OrderFilter{
		SupplierID:  7,
		StatusID:    domain.StatusAnalyzed,
		PendingOnly: true,
	}, "o", 1)
	assert.Equal(t, " WHERE o.supplier_id = $1 AND o.status_id = $2 AND o.status_id IN (1, 2)", clause)
	assert.Equal(t, []interface{}{int64(7), domain.StatusAnalyzed}, args)
}

func TestBuildPaging(t *testing.T) {
	clause, args := buildPaging(domain.OrderFilter{}, 3)
	assert.Empty(t, clause)
	assert.Nil(t, args)

	clause, args = buildPaging(domain.OrderFilter{Page: 3, PageSize: 20}, 3)
	assert.Equal(t, " LIMIT $3 OFFSET $4", clause)
	assert.Equal(t, []interface{}{20, 40}, args)
}

func TestConnStringPrefersURL(t *testing.T) {
	cfg := config.DatabaseConfig{Host: "localhost", Port: "5432", URL: "postgres://u:p@db/x"}
	assert.Equal(t, "postgres://u:p@db/x", ConnString(&cfg))

	cfg.URL = ""
	cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode = "u", "p", "x", "disable"
	assert.Equal(t, "host=localhost port=5432 user=u password=p dbname=x sslmode=disable", ConnString(&cfg))
}
