package history

import "time"

// Timer is a scheduled callback that can be stopped.
// *time.Timer satisfies it.
type Timer interface {
	Stop() bool
}

// Scheduler schedules single-shot deferred callbacks.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// SchedulerFunc adapts a function to the Scheduler interface.
type SchedulerFunc func(d time.Duration, f func()) Timer

// AfterFunc calls fn(d, f).
func (fn SchedulerFunc) AfterFunc(d time.Duration, f func()) Timer {
	return fn(d, f)
}

// RealScheduler schedules callbacks with time.AfterFunc.
var RealScheduler Scheduler = SchedulerFunc(func(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
})
