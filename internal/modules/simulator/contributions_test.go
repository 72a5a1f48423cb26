package simulator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContributionSchedule_DayZeroNeverFires(t *testing.T) {
	s := ContributionSchedule{PeriodDays: 1, Amount: 500}
	assert.Equal(t, 0.0, s.AmountOn(0))
	assert.Equal(t, 500.0, s.AmountOn(1))
}

func TestContributionSchedule_Disabled(t *testing.T) {
	s := ContributionSchedule{PeriodDays: 0, Amount: 500}
	for i := 0; i < 10; i++ {
		assert.Equal(t, 0.0, s.AmountOn(i))
	}

	s = ContributionSchedule{PeriodDays: 21, Amount: 0}
	for i := 0; i < 100; i++ {
		assert.Equal(t, 0.0, s.AmountOn(i))
	}
}

func TestContributionSchedule_FiresOnMultiples(t *testing.T) {
	s := ContributionSchedule{PeriodDays: 21, Amount: 500}

	assert.Equal(t, 0.0, s.AmountOn(20))
	assert.Equal(t, 500.0, s.AmountOn(21))
	assert.Equal(t, 0.0, s.AmountOn(22))
	assert.Equal(t, 500.0, s.AmountOn(42))
}

func TestContributionSchedule_ElevenEventsInAYear(t *testing.T) {
	// 252-day window inclusive of day 0: contributions land on
	// i = 21, 42, ..., 231. i = 252 is out of range.
	s := ContributionSchedule{PeriodDays: 21, Amount: 500}

	events := 0
	for i := 0; i < 252; i++ {
		if s.AmountOn(i) > 0 {
			events++
		}
	}
	assert.Equal(t, 11, events)
}
