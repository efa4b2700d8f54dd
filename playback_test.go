package gifbolt

import "testing"

func TestAdvanceFrameSequential(t *testing.T) {
	adv := AdvanceFrame(3, 10, -1)
	if adv.NextFrame != 4 || adv.Complete || adv.RepeatCount != -1 {
		t.Errorf("expected {4 false -1}, got %+v", adv)
	}
}

func TestAdvanceFrameTwoFrameLoop(t *testing.T) {
	adv := AdvanceFrame(0, 2, -1)
	if adv.NextFrame != 1 || adv.Complete || adv.RepeatCount != -1 {
		t.Errorf("expected {1 false -1}, got %+v", adv)
	}
	adv = AdvanceFrame(1, 2, -1)
	if adv.NextFrame != 0 || adv.Complete || adv.RepeatCount != -1 {
		t.Errorf("expected {0 false -1}, got %+v", adv)
	}
}

func TestAdvanceFrameFiniteRepeats(t *testing.T) {
	// Wrapping with repeats remaining consumes one.
	adv := AdvanceFrame(2, 3, 2)
	if adv.NextFrame != 0 || adv.Complete || adv.RepeatCount != 1 {
		t.Errorf("expected {0 false 1}, got %+v", adv)
	}

	// The last repeat runs to its end before completing.
	adv = AdvanceFrame(2, 3, 1)
	if adv.NextFrame != 0 || adv.Complete || adv.RepeatCount != 0 {
		t.Errorf("expected {0 false 0}, got %+v", adv)
	}
	adv = AdvanceFrame(2, 3, 0)
	if adv.NextFrame != 2 || !adv.Complete || adv.RepeatCount != 0 {
		t.Errorf("expected {2 true 0}, got %+v", adv)
	}
}

func TestAdvanceFrameEmptyAnimation(t *testing.T) {
	adv := AdvanceFrame(5, 0, -1)
	if adv.NextFrame != 5 || !adv.Complete || adv.RepeatCount != -1 {
		t.Errorf("expected {5 true -1}, got %+v", adv)
	}
}

func TestAdvanceFramePure(t *testing.T) {
	first := AdvanceFrame(7, 12, 3)
	for i := 0; i < 5; i++ {
		if got := AdvanceFrame(7, 12, 3); got != first {
			t.Fatalf("expected identical results for identical inputs, got %+v then %+v", first, got)
		}
	}
}

func TestAdvanceFrameTimed(t *testing.T) {
	adv, delay := AdvanceFrameTimed(0, 2, -1, 5, 10)
	if adv.NextFrame != 1 || adv.Complete {
		t.Errorf("expected advance to frame 1, got %+v", adv)
	}
	if delay != 10 {
		t.Errorf("expected floored delay 10, got %d", delay)
	}

	_, delay = AdvanceFrameTimed(0, 2, -1, 40, 10)
	if delay != 40 {
		t.Errorf("expected raw delay 40, got %d", delay)
	}
}

func TestEffectiveFrameDelay(t *testing.T) {
	tests := []struct {
		raw, min, want int
	}{
		{0, 10, 10},
		{5, 10, 10},
		{10, 10, 10},
		{100, 10, 100},
		{50, 0, 50},
	}
	for _, tt := range tests {
		if got := EffectiveFrameDelay(tt.raw, tt.min); got != tt.want {
			t.Errorf("EffectiveFrameDelay(%d, %d) = %d, want %d", tt.raw, tt.min, got, tt.want)
		}
	}
}

func TestComputeRepeatCount(t *testing.T) {
	tests := []struct {
		behavior  string
		isLooping bool
		want      int
	}{
		{"3x", true, 3},
		{"3x", false, 3},
		{"12X", false, 12},
		{"Forever", false, -1},
		{"forever", true, -1},
		{"FOREVER", false, -1},
		{"", false, 1},
		{"", true, -1},
		{"0x", true, -1},
		{"0x", false, 1},
		{"x", true, -1},
		{"-2x", false, 1},
		{"+2x", false, 1},
		{"2.5x", false, 1},
		{"nonsense", true, -1},
		{"nonsense", false, 1},
	}
	for _, tt := range tests {
		if got := ComputeRepeatCount(tt.behavior, tt.isLooping); got != tt.want {
			t.Errorf("ComputeRepeatCount(%q, %v) = %d, want %d", tt.behavior, tt.isLooping, got, tt.want)
		}
	}
}
