package simulator

// ContributionSchedule decides when periodic personal contributions fire.
// Scheduling is by trading-day index, not wall-clock calendar days.
type ContributionSchedule struct {
	// PeriodDays is the number of trading days between contributions.
	// Zero disables contributions entirely.
	PeriodDays int

	// Amount is the cash contributed each time the schedule fires.
	Amount float64
}

// AmountOn returns the contribution for trading-day index i, or 0 when none
// is due. Day 0 never receives a contribution: it is covered by the starting
// value.
func (s ContributionSchedule) AmountOn(i int) float64 {
	if s.PeriodDays <= 0 || s.Amount <= 0 {
		return 0
	}
	if i == 0 || i%s.PeriodDays != 0 {
		return 0
	}
	return s.Amount
}
