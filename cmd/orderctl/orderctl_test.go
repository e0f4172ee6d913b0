package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/andresuchdata/purchasing/backend-go/internal/domain"
	"github.com/andresuchdata/purchasing/backend-go/internal/reconcile"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildUpsert(t *testing.T) {
	q := buildUpsert("stores", []string{"id", "code", "name"}, "id")
	assert.Equal(t, "INSERT INTO stores (id, code, name) VALUES ($1, $2, $3) ON CONFLICT (id) DO UPDATE SET code = EXCLUDED.code, name = EXCLUDED.name", q)

	q = buildUpsert("pairs", []string{"a", "b"}, "a, b")
	assert.Equal(t, "INSERT INTO pairs (a, b) VALUES ($1, $2) ON CONFLICT (a, b) DO NOTHING", q)
}

func TestGetColumnIndex(t *testing.T) {
	header := []string{"ID", " name ", "code"}
	assert.Equal(t, 0, getColumnIndex(header, "id"))
	assert.Equal(t, 1, getColumnIndex(header, "name"))
	assert.Equal(t, -1, getColumnIndex(header, "missing"))
}

func TestPrintResult(t *testing.T) {
	window, err := parseWindowFlags("2025-01-01", "2025-01-31")
	require.NoError(t, err)

	result := reconcile.Reconcile([]domain.OrderLine{{
		ItemCode:         "A1",
		ItemName:         "Arroz",
		DaysStockDesired: 30,
		PackSize:         12,
		SalePrediction:   decimal.NewFromInt(300),
		StockAvailable:   decimal.NewFromInt(50),
		QuantityOrder:    decimal.NewFromInt(300),
		PurchasePrice:    decimal.NewFromInt(10),
	}}, window)

	var buf bytes.Buffer
	require.NoError(t, printResult(&buf, result))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"ITEM", "NAME", "SUGGESTED", "ORDER", "STOCK", "DAYS", "ROTATION", "TOTAL", "SEVERITY"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"A1", "Arroz", "252", "300", "5", "15.0", "3.000", "warning"}, strings.Fields(lines[1]))
	assert.Equal(t, "3.000", strings.TrimSpace(lines[2]))

	_, err = parseWindowFlags("2025-01-01", "31/01/2025")
	assert.Error(t, err)
}
