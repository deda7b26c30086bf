package service

import (
	"time"

	"github.com/iliyamo/ev-charging-reservation/internal/model"
)

// DefaultRatePerHour is the reward rate used when none is configured.
const DefaultRatePerHour = 10.0

// RewardPolicy maps a time interval to a suggested reward amount.  It is
// a pure calculator consumed by callers pricing a proposal before
// initiating a negotiation; the negotiation service itself never invokes
// it, so swapping the policy does not affect the state machine.
type RewardPolicy func(start, end time.Time) (float64, error)

// LinearRate returns the default policy: duration in hours multiplied by
// a fixed hourly rate.  It fails with ErrInvalidInterval when end <=
// start.
func LinearRate(ratePerHour float64) RewardPolicy {
	return func(start, end time.Time) (float64, error) {
		if !end.After(start) {
			return 0, model.ErrInvalidInterval
		}
		return end.Sub(start).Hours() * ratePerHour, nil
	}
}
