package engine

import "time"

// Clock is the time source a Runner measures real deltas against
type Clock interface {
	Now() time.Time
}

// TimeProvider reads the system clock with its monotonic component
type TimeProvider struct{}

func NewTimeProvider() *TimeProvider {
	return &TimeProvider{}
}

func (p *TimeProvider) Now() time.Time {
	return time.Now()
}
