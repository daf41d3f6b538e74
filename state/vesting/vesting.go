// Package vesting computes how much of an allocation has unlocked at a given time.
package vesting

import (
	"fmt"

	"equityrocket/engine/library"
)

// Schedule is the vesting state of one partner's allocation.
type Schedule struct {
	AllocatedTokens library.Amount    `json:"allocated_tokens"`
	CliffTimestamp  library.Timestamp `json:"cliff_timestamp"`
	VestingDuration int64             `json:"vesting_duration_seconds"`
	ClaimedTokens   library.Amount    `json:"claimed_tokens"`
}

// ErrNegativeWindow is returned for a cliff or vesting duration below zero.
var ErrNegativeWindow = fmt.Errorf("negative vesting window: %w", library.ErrOverflow)

// ValidateWindow checks that a schedule starting at start can be represented.
func ValidateWindow(start library.Timestamp, cliffSeconds, vestingSeconds int64) error {
	if cliffSeconds < 0 || vestingSeconds < 0 {
		return fmt.Errorf("cliff %d, vesting %d: %w", cliffSeconds, vestingSeconds, ErrNegativeWindow)
	}
	cliff := start + cliffSeconds
	if cliff < start || cliff+vestingSeconds < cliff {
		return fmt.Errorf("vesting window starting at %d: %w", start, library.ErrOverflow)
	}
	return nil
}

// NewSchedule starts a schedule at start: nothing unlocks until start+cliffSeconds, then the
// allocation unlocks linearly over vestingSeconds.
func NewSchedule(tokens library.Amount, start library.Timestamp, cliffSeconds, vestingSeconds int64) (Schedule, error) {
	if err := ValidateWindow(start, cliffSeconds, vestingSeconds); err != nil {
		return Schedule{}, err
	}
	cliff := start + cliffSeconds
	return Schedule{
		AllocatedTokens: tokens,
		CliffTimestamp:  cliff,
		VestingDuration: vestingSeconds,
	}, nil
}

// Unlockable is the part of the allocation released by the curve at time t, truncated.
func (s Schedule) Unlockable(t library.Timestamp) library.Amount {
	if t < s.CliffTimestamp {
		return 0
	}
	if t-s.CliffTimestamp >= s.VestingDuration {
		return s.AllocatedTokens
	}
	elapsed := library.Amount(t - s.CliffTimestamp)
	// elapsed < duration so the result is always below AllocatedTokens
	v, err := library.MulDiv(s.AllocatedTokens, elapsed, library.Amount(s.VestingDuration))
	if err != nil {
		return s.AllocatedTokens
	}
	return v
}

// Claimable is what a claim at t would release.
func (s Schedule) Claimable(t library.Timestamp) library.Amount {
	u := s.Unlockable(t)
	if u <= s.ClaimedTokens {
		return 0
	}
	return u - s.ClaimedTokens
}

// Locked is the part of the allocation that has not been claimed yet (vested or not).
func (s Schedule) Locked() library.Amount {
	return s.AllocatedTokens - s.ClaimedTokens
}

// Unvested is the part of the allocation the curve has not released at t.
func (s Schedule) Unvested(t library.Timestamp) library.Amount {
	return s.AllocatedTokens - s.Unlockable(t)
}

// Claim advances ClaimedTokens to the curve and returns the delta.
func (s *Schedule) Claim(t library.Timestamp) (library.Amount, error) {
	delta := s.Claimable(t)
	if delta == 0 {
		return 0, fmt.Errorf("claimed %d of %d at %d: %w", s.ClaimedTokens, s.AllocatedTokens, t, library.ErrNothingToClaim)
	}
	s.ClaimedTokens += delta
	return delta, nil
}
