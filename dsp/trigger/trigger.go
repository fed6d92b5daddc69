// Package trigger implements rising-edge detection over a channel/time pair
// and the holdoff state machine that debounces repeated triggers across
// scope-style redraws.
package trigger

// Result is a detected rising edge: sample index and its timestamp.
type Result struct {
	Index int
	Time  float64
}

// Find scans indices i>=1 whose time[i] falls within [tStart, tEnd] and
// returns the first i where channel crosses threshold on a rising edge:
// channel[i-1] < threshold <= channel[i]. Returns false if none is found.
func Find(channel, time []float64, threshold, tStart, tEnd float64) (Result, bool) {
	n := len(channel)
	if n != len(time) || n < 2 {
		return Result{}, false
	}
	for i := 1; i < n; i++ {
		if time[i] < tStart || time[i] > tEnd {
			continue
		}
		if channel[i-1] < threshold && threshold <= channel[i] {
			return Result{Index: i, Time: time[i]}, true
		}
	}
	return Result{}, false
}

// Holdoff tracks a single active trigger and suppresses new searches until
// the display window has fully advanced past it.
type Holdoff struct {
	active      bool
	triggerTime float64
}

// DisplayWindow returns the "5 divisions" holdoff duration in seconds for
// the given time scale in ms/div.
func DisplayWindow(timeScaleMsPerDiv float64) float64 {
	return (timeScaleMsPerDiv * 5) / 1000
}

// Evaluate runs the holdoff state machine for one redraw. tEarliest and
// tLatest describe the currently visible buffer's time range; threshold and
// channel/time are the search inputs. window is DisplayWindow(timeScale).
//
// If the buffer timeline has gone backward (tLatest < previous trigger
// time), the holdoff clears. If the buffer duration is shorter than
// window, the search collapses to the first 10% of the buffer.
func (h *Holdoff) Evaluate(channel, time []float64, threshold, tEarliest, tLatest, window float64) (Result, bool) {
	if h.active {
		if tLatest < h.triggerTime {
			h.active = false // timeline went backward; reset
		} else if tLatest < h.triggerTime+window {
			return Result{Time: h.triggerTime}, true // still within holdoff: keep showing it
		} else {
			h.active = false // window elapsed, ready to search again
		}
	}

	tStart, tEnd := tEarliest, tLatest
	if tLatest-tEarliest < window {
		span := tLatest - tEarliest
		tEnd = tEarliest + span*0.1
	}

	res, ok := Find(channel, time, threshold, tStart, tEnd)
	if ok {
		h.active = true
		h.triggerTime = res.Time
	}
	return res, ok
}

// Reset clears the holdoff state, e.g. when the buffer timeline resets.
func (h *Holdoff) Reset() {
	h.active = false
	h.triggerTime = 0
}
