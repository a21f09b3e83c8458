package model

import (
	"fmt"
	"time"
)

// VirtualTime is a timestamp within the simulation, measured in nanoseconds
// since trial start. Negative values mean "no such time."
type VirtualTime int64

const TimeNever VirtualTime = -1
const TimeZero VirtualTime = 0

const nsPerSecond = int64(time.Second / time.Nanosecond)

func (t VirtualTime) String() string {
	if !t.TimeExists() {
		return "[never]"
	}
	ns := int64(t)
	return fmt.Sprintf("[%ds+%09dns]", ns/nsPerSecond, ns%nsPerSecond)
}

func (t VirtualTime) TimeExists() bool {
	return t >= 0
}

func checkExists(times ...VirtualTime) {
	for _, t := range times {
		if !t.TimeExists() {
			panic("times don't exist")
		}
	}
}

func (t VirtualTime) Before(t2 VirtualTime) bool {
	checkExists(t, t2)
	return t < t2
}

func (t VirtualTime) AtOrBefore(t2 VirtualTime) bool {
	checkExists(t, t2)
	return t <= t2
}

func (t VirtualTime) After(t2 VirtualTime) bool {
	checkExists(t, t2)
	return t > t2
}

func (t VirtualTime) AtOrAfter(t2 VirtualTime) bool {
	checkExists(t, t2)
	return t >= t2
}

func (t VirtualTime) Add(duration time.Duration) VirtualTime {
	if !t.TimeExists() {
		return t
	}
	t2 := t + VirtualTime(duration.Nanoseconds())
	if (duration > 0 && t2 < t) || (duration < 0 && t2 > t) {
		panic("times wrapped around")
	}
	return t2
}

// Since computes the duration elapsed from base to t. base must be at or
// before t.
func (t VirtualTime) Since(base VirtualTime) time.Duration {
	checkExists(t, base)
	if base > t {
		panic("cannot compute negative duration in Since")
	}
	return time.Duration(t-base) * time.Nanosecond
}

func (t VirtualTime) Nanoseconds() uint64 {
	checkExists(t)
	return uint64(t)
}

func FromNanoseconds(ns uint64) (VirtualTime, bool) {
	vt := VirtualTime(ns)
	return vt, vt.TimeExists()
}
