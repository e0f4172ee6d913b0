package domain

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrOrderLocked   = errors.New("order is approved and cannot be changed")
	ErrForbidden     = errors.New("operation not allowed")

	ErrNotificationNotFound = errors.New("notification not found")
	ErrItemNotFound         = errors.New("item not found")
)

// ValidationError collects field-level problems keyed by field name
type ValidationError map[string]string

func (v ValidationError) Error() string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+v[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add records a problem for field, keeping the first one reported
func (v ValidationError) Add(field, msg string) {
	if _, ok := v[field]; !ok {
		v[field] = msg
	}
}

// OrNil returns nil when nothing was recorded
func (v ValidationError) OrNil() error {
	if len(v) == 0 {
		return nil
	}
	return v
}
