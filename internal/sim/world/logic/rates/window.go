package rates

// Window is a fixed tick window that admits at most Max events. A zero Ticks or Max
// admits everything.
type Window struct {
	Ticks uint64
	Max   int

	start uint64
	count int
}

// Allow records one event at nowTick. When the event is refused, cooldown is the number
// of ticks until the window reopens.
func (w *Window) Allow(nowTick uint64) (ok bool, cooldown uint64) {
	if w.Ticks == 0 || w.Max <= 0 {
		return true, 0
	}
	if nowTick-w.start >= w.Ticks {
		w.start = nowTick
		w.count = 0
	}
	w.count++
	if w.count <= w.Max {
		return true, 0
	}
	return false, (w.start + w.Ticks) - nowTick
}
