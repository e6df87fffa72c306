package domain

// Duration units accepted when creating or editing license keys.
const (
	UnitMinutes = "minutes"
	UnitHours   = "hours"
	UnitDays    = "days"
	UnitMonths  = "months"
)

// DurationMinutes normalizes a (value, unit) pair into minutes. The value
// is clamped to a minimum of 1. A month is fixed at 30 days — this is a
// deliberate approximation, not calendar arithmetic. An unrecognized unit
// treats the value as already-minutes; existing clients depend on that
// pass-through.
func DurationMinutes(value int, unit string) int {
	if value < 1 {
		value = 1
	}
	switch unit {
	case UnitHours:
		return value * 60
	case UnitDays:
		return value * 60 * 24
	case UnitMonths:
		return value * 60 * 24 * 30
	default: // UnitMinutes or unknown
		return value
	}
}
