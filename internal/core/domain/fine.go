package domain

import (
	"math"
	"time"
)

// FineCalculator computes overdue fines from a due date and an
// evaluation date. It has no side effects; callers pass today's date
// for live recomputation and the actual return date when closing a loan.
type FineCalculator struct {
	GracePeriodDays int
	FinePerDay      float64
}

// Amount returns the fine owed when a loan due on dueDate is evaluated
// at evalDate. Days are counted on calendar dates, time of day is
// ignored. Within the grace period the fine is zero.
func (f FineCalculator) Amount(dueDate, evalDate time.Time) float64 {
	due := truncateToDate(dueDate)
	eval := truncateToDate(evalDate)

	if !eval.After(due) {
		return 0
	}

	daysOverdue := int(eval.Sub(due).Hours() / 24)
	if daysOverdue <= f.GracePeriodDays {
		return 0
	}

	chargeableDays := daysOverdue - f.GracePeriodDays
	amount := float64(chargeableDays) * f.FinePerDay

	// Round to 2 decimal places, never negative
	amount = math.Round(amount*100) / 100
	if amount < 0 {
		return 0
	}
	return amount
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
