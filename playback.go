package gifbolt

import (
	"strconv"
	"strings"
)

// Advance is the result of one step of the frame-advance state machine.
type Advance struct {
	// NextFrame is the frame to display after the step.
	NextFrame int

	// Complete reports that the animation has finished. A complete
	// animation stays on its last frame.
	Complete bool

	// RepeatCount is the repeat budget after the step: -1 infinite,
	// 0 exhausted, >0 full passes still owed.
	RepeatCount int
}

// AdvanceFrame computes the next playback state from the current one.
// It is a pure function with no decoder state, so any host can drive
// playback with its own clock and state storage and two hosts stepping
// the same inputs always agree.
//
// repeat follows the repeat-count convention: -1 loops forever, 0 means
// the animation already completed, a positive value is the number of
// full passes remaining.
func AdvanceFrame(current, frameCount, repeat int) Advance {
	if frameCount < 1 {
		return Advance{NextFrame: current, Complete: true, RepeatCount: repeat}
	}

	next := current + 1
	if next < frameCount {
		return Advance{NextFrame: next, RepeatCount: repeat}
	}

	// End of the sequence: wrap, consume a repeat, or finish.
	switch {
	case repeat == -1:
		return Advance{NextFrame: 0, RepeatCount: -1}
	case repeat > 0:
		return Advance{NextFrame: 0, RepeatCount: repeat - 1}
	default:
		return Advance{NextFrame: current, Complete: true, RepeatCount: 0}
	}
}

// AdvanceFrameTimed advances like AdvanceFrame and applies the delay
// floor to rawDelayMs in the same call, returning the effective delay of
// the frame being left. Consolidating the two keeps a render loop at one
// call per tick.
func AdvanceFrameTimed(current, frameCount, repeat, rawDelayMs, minDelayMs int) (Advance, int) {
	return AdvanceFrame(current, frameCount, repeat), EffectiveFrameDelay(rawDelayMs, minDelayMs)
}

// EffectiveFrameDelay applies the minimum-delay floor to a raw frame
// delay. Many GIFs encode delays well below anything a display loop can
// honor; the floor keeps them from spinning.
func EffectiveFrameDelay(rawDelayMs, minDelayMs int) int {
	if rawDelayMs < minDelayMs {
		return minDelayMs
	}
	return rawDelayMs
}

// initialRepeat is the repeat budget a fresh playback starts from. The
// state machine counts remaining wraps, so a single pass is budget 0,
// not 1.
func initialRepeat(isLooping bool) int {
	if isLooping {
		return -1
	}
	return 0
}

// ComputeRepeatCount parses a host repeat-behavior string into a repeat
// count. "Forever" in any case loops forever. "Nx" or "NX" with a
// positive decimal N repeats N times. Empty, "0x" and anything
// unparsable defer to the stream metadata: -1 when the stream loops,
// otherwise a single pass.
func ComputeRepeatCount(behavior string, isLooping bool) int {
	fromMetadata := 1
	if isLooping {
		fromMetadata = -1
	}

	if behavior == "" || behavior == "0x" {
		return fromMetadata
	}
	if strings.EqualFold(behavior, "Forever") {
		return -1
	}

	// "Nx" accepts bare decimal digits only; a sign is not a count.
	if n := len(behavior); n >= 2 && (behavior[n-1] == 'x' || behavior[n-1] == 'X') {
		digits := behavior[:n-1]
		if count, err := strconv.Atoi(digits); err == nil && count > 0 && !strings.ContainsAny(digits, "+-") {
			return count
		}
	}
	return fromMetadata
}
