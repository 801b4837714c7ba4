package appcore

import "time"

// Recorder receives business counters. The Prometheus implementation lives in infrastructure/metrics.
type Recorder interface {
	WriteConflict()
	ThreadMutation(op string)
	DailyReward(granted bool)
	BadgePurchase(outcome string)
}

// NopRecorder discards everything
type NopRecorder struct{}

func (NopRecorder) WriteConflict()        {}
func (NopRecorder) ThreadMutation(string) {}
func (NopRecorder) DailyReward(bool)      {}
func (NopRecorder) BadgePurchase(string)  {}

// Clock returns the current time; injected so day boundaries can be tested
type Clock func() time.Time

// SystemClock is the wall clock in UTC
func SystemClock() time.Time {
	return time.Now().UTC()
}
