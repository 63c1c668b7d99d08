package forecast

import "testing"

func TestPositionAtMonth(t *testing.T) {
	t.Run("StartsAtCurrentPosition", func(t *testing.T) {
		k := Keyword{Text: "gas bbq", SearchVolume: 8000, Position: 8, TargetPosition: 3, Difficulty: 50}
		if got := PositionAtMonth(k, 1, 6); got != 8 {
			t.Errorf("Expected position 8 at month 1, got %v", got)
		}
	})

	t.Run("MonotonicConvergence", func(t *testing.T) {
		k := Keyword{Text: "bbq grill", SearchVolume: 5000, Position: 30, TargetPosition: 2, Difficulty: 10}
		prev := PositionAtMonth(k, 1, 12)
		for month := 2; month <= 24; month++ {
			got := PositionAtMonth(k, month, 12)
			if got > prev {
				t.Errorf("Position increased from %v to %v at month %d", prev, got, month)
			}
			if got < k.TargetPosition {
				t.Errorf("Position %v crossed target %v at month %d", got, k.TargetPosition, month)
			}
			prev = got
		}
	})

	t.Run("LinearStep", func(t *testing.T) {
		// gap 10 over 5 months at difficulty 50 is one rank per month
		k := Keyword{Position: 15, TargetPosition: 5, Difficulty: 50}
		expected := []float64{15, 14, 13, 12, 11}
		for i, want := range expected {
			if got := PositionAtMonth(k, i+1, 5); got != want {
				t.Errorf("Expected %v at month %d, got %v", want, i+1, got)
			}
		}
	})

	t.Run("MaxDifficultyFreezes", func(t *testing.T) {
		k := Keyword{Position: 40, TargetPosition: 1, Difficulty: 100}
		for month := 1; month <= 12; month++ {
			if got := PositionAtMonth(k, month, 12); got != 40 {
				t.Errorf("Expected frozen position 40 at month %d, got %v", month, got)
			}
		}
	})

	t.Run("AlreadyAtTarget", func(t *testing.T) {
		k := Keyword{Position: 4, TargetPosition: 4, Difficulty: 20}
		for month := 1; month <= 6; month++ {
			if got := PositionAtMonth(k, month, 6); got != 4 {
				t.Errorf("Expected constant position 4 at month %d, got %v", month, got)
			}
		}
	})

	t.Run("ZeroDifficultyReachesTarget", func(t *testing.T) {
		k := Keyword{Position: 13, TargetPosition: 1, Difficulty: 0}
		if got := PositionAtMonth(k, 13, 12); got != 1 {
			t.Errorf("Expected target 1 after the full gap, got %v", got)
		}
	})

	// Target worse than current position: the clamp jumps straight to the target.
	t.Run("TargetWorseThanCurrent", func(t *testing.T) {
		k := Keyword{Position: 5, TargetPosition: 10, Difficulty: 50}
		for month := 1; month <= 6; month++ {
			if got := PositionAtMonth(k, month, 6); got != 10 {
				t.Errorf("Expected clamp to target 10 at month %d, got %v", month, got)
			}
		}
	})
}
