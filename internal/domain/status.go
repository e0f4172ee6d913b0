package domain

import (
	"fmt"
	"strings"
)

const (
	StatusPending  = 1
	StatusAnalyzed = 2
	StatusApproved = 3
)

var orderStatusLabels = map[int]string{
	StatusPending:  "Pending",
	StatusAnalyzed: "Analyzed",
	StatusApproved: "Approved",
}

var orderStatusCodes = map[string]int{
	"pending":  StatusPending,
	"analyzed": StatusAnalyzed,
	"approved": StatusApproved,
}

// editableStatuses lists, per group, the statuses its members may still edit
var editableStatuses = map[string][]int{
	"comprador":  {StatusPending},
	"analista":   {StatusPending, StatusAnalyzed},
	"supervisor": {StatusPending, StatusAnalyzed},
}

var groupOrder = []string{"comprador", "analista", "supervisor"}

// OrderStatusLabel returns a human-readable label for an order status code.
func OrderStatusLabel(status int) string {
	if label, ok := orderStatusLabels[status]; ok {
		return label
	}

	return "Draft"
}

// ParseOrderStatus returns the status code for a given label (case-insensitive).
func ParseOrderStatus(label string) (int, bool) {
	code, ok := orderStatusCodes[strings.ToLower(strings.TrimSpace(label))]

	return code, ok
}

// NextOrderStatus returns the status that follows the given one, if any.
func NextOrderStatus(status int) (int, bool) {
	if status < StatusPending || status >= StatusApproved {
		return 0, false
	}
	return status + 1, true
}

// AwaitingApproval reports whether an order in this status still needs sign-off
func AwaitingApproval(status int) bool {
	return status == StatusPending || status == StatusAnalyzed
}

// IsLockedStatus reports whether orders in this status are read-only
func IsLockedStatus(status int) bool {
	return status == StatusApproved
}

// CheckEditable returns nil when the actor may modify an order in the given
// status. Any of the actor's groups permitting the status is enough; actors in
// none of the known groups are not restricted here.
func CheckEditable(status int, actor Actor) error {
	if IsLockedStatus(status) {
		return ErrOrderLocked
	}

	var denied []string
	for _, group := range groupOrder {
		if !actor.HasGroup(group) {
			continue
		}
		for _, s := range editableStatuses[group] {
			if s == status {
				return nil
			}
		}
		denied = append(denied, group)
	}

	if len(denied) > 0 {
		return fmt.Errorf("%w: group %s cannot edit orders in status %s",
			ErrForbidden, strings.Join(denied, ","), OrderStatusLabel(status))
	}
	return nil
}
