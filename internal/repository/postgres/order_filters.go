package postgres

import (
	"fmt"
	"strings"

	"github.com/andresuchdata/purchasing/backend-go/internal/domain"
)

// buildOrderFilterClause constructs the WHERE fragment for the order listing
func buildOrderFilterClause(filter domain.OrderFilter, alias string, startIndex int) (string, []interface{}) {
	alias = normalizeAlias(alias)

	var (
		clauses []string
		args    []interface{}
	)
	idx := startIndex

	if filter.SupplierID > 0 {
		clauses = append(clauses, fmt.Sprintf("%ssupplier_id = $%d", alias, idx))
		args = append(args, filter.SupplierID)
		idx++
	}

	if filter.SectionID > 0 {
		clauses = append(clauses, fmt.Sprintf("%ssection_id = $%d", alias, idx))
		args = append(args, filter.SectionID)
		idx++
	}

	if filter.BuyerID > 0 {
		clauses = append(clauses, fmt.Sprintf("%sbuyer_id = $%d", alias, idx))
		args = append(args, filter.BuyerID)
		idx++
	}

	if filter.StatusID > 0 {
		clauses = append(clauses, fmt.Sprintf("%sstatus_id = $%d", alias, idx))
		args = append(args, filter.StatusID)
		idx++
	}

	if filter.PendingOnly {
		clauses = append(clauses, fmt.Sprintf("%sstatus_id IN (%d, %d)", alias, domain.StatusPending, domain.StatusAnalyzed))
	}

	if len(clauses) == 0 {
		return "", nil
	}

	return " WHERE " + strings.Join(clauses, " AND "), args
}

// buildPaging appends LIMIT/OFFSET when a page size is requested
func buildPaging(filter domain.OrderFilter, startIndex int) (string, []interface{}) {
	if filter.PageSize <= 0 {
		return "", nil
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	return fmt.Sprintf(" LIMIT $%d OFFSET $%d", startIndex, startIndex+1),
		[]interface{}{filter.PageSize, (page - 1) * filter.PageSize}
}

func normalizeAlias(alias string) string {
	if alias == "" {
		return ""
	}
	if !strings.HasSuffix(alias, ".") {
		return alias + "."
	}
	return alias
}
