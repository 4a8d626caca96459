package timestamp

import (
	"time"

	"go.uber.org/atomic"
)

//DefaultFrozenTime is the moment FreezeTime stops the clock at
var DefaultFrozenTime = time.Date(2023, 03, 14, 10, 30, 0, 0, time.UTC)

var (
	frozen   = atomic.NewBool(false)
	frozenAt atomic.Value
)

//Now returns the current time or the frozen moment
func Now() time.Time {
	if frozen.Load() {
		if t, ok := frozenAt.Load().(time.Time); ok {
			return t
		}
	}
	return time.Now()
}

//FreezeTime stops the clock at DefaultFrozenTime
func FreezeTime() {
	FreezeTimeAt(DefaultFrozenTime)
}

//FreezeTimeAt stops the clock at t
func FreezeTimeAt(t time.Time) {
	frozenAt.Store(t)
	frozen.Store(true)
}

//Advance moves the frozen clock forward. No-op on a running clock
func Advance(d time.Duration) {
	if frozen.Load() {
		FreezeTimeAt(Now().Add(d))
	}
}

func UnfreezeTime() {
	frozen.Store(false)
}
