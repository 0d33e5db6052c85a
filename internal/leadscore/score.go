// Package leadscore maps tracked activity types to lead score increments.
package leadscore

import "github.com/xavierca1/taskflow/internal/entity"

var points = map[entity.ActivityType]int{
	entity.ActivityPageView:     1,
	entity.ActivityFormStart:    5,
	entity.ActivityFormComplete: 10,
	entity.ActivityEmailOpen:    3,
	entity.ActivityClick:        2,
	entity.ActivitySignup:       20,
	entity.ActivityPurchase:     50,
}

// ForActivityType returns the score increment for t, or 0 for unknown types.
func ForActivityType(t entity.ActivityType) int {
	return points[t]
}

// Known reports whether t has an entry in the scoring table.
func Known(t entity.ActivityType) bool {
	_, ok := points[t]
	return ok
}
