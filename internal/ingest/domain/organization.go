package domain

import (
	"time"
)

// UnlimitedEventAllowance is the sentinel remaining-allowance value for
// organizations on unlimited plans.
const UnlimitedEventAllowance = int(^uint32(0) >> 1)

// Organization owns one or more projects and carries the per-period event quota.
type Organization struct {
	// ID is the organization identifier.
	ID string
	// Name is the display name.
	Name string
	// MaxEventsPerPeriod is the plan's hard event limit; negative means unlimited.
	MaxEventsPerPeriod int
	// UsageCount is the number of events counted against the current period.
	UsageCount int
	// HourlyUsageCount is the number of events counted against the current hour.
	HourlyUsageCount int
	// CreatedAt is the UTC creation timestamp.
	CreatedAt time.Time
}

// RemainingEventAllowance returns how many more events the organization may
// process this period. Unlimited plans report UnlimitedEventAllowance.
func (o *Organization) RemainingEventAllowance() int {
	if o.MaxEventsPerPeriod < 0 {
		return UnlimitedEventAllowance
	}
	remaining := o.MaxEventsPerPeriod - o.UsageCount
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Project is the submission target for event posts and links back to the
// owning organization for quota accounting.
type Project struct {
	// ID is the project identifier.
	ID string
	// OrganizationID is the owning organization.
	OrganizationID string
	// Name is the display name.
	Name string
	// CreatedAt is the UTC creation timestamp.
	CreatedAt time.Time
}
