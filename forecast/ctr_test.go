package forecast

import (
	"errors"
	"testing"
)

func TestLookupCTR(t *testing.T) {
	def := BuiltinModel(CTRDefault)

	t.Run("DefaultTable", func(t *testing.T) {
		expected := []float64{0.317, 0.247, 0.187, 0.133, 0.095, 0.068, 0.049, 0.035, 0.025, 0.018}
		for i, want := range expected {
			pos := float64(i + 1)
			if got := LookupCTR(pos, def); got != want {
				t.Errorf("Expected CTR %v at position %v, got %v", want, pos, got)
			}
		}
	})

	t.Run("CeilingRounding", func(t *testing.T) {
		if got := LookupCTR(7.5, def); got != 0.035 {
			t.Errorf("Expected 0.035 for position 7.5, got %v", got)
		}
		if got := LookupCTR(7.4, def); got != LookupCTR(8, def) {
			t.Errorf("Expected position 7.4 to use position 8, got %v", got)
		}
		if got := LookupCTR(10.2, def); got != TailCTR {
			t.Errorf("Expected tail CTR for position 10.2, got %v", got)
		}
	})

	t.Run("TailForEveryModel", func(t *testing.T) {
		custom, err := CustomModel(map[int]float64{1: 0.5, 10: 0.3})
		if err != nil {
			t.Fatalf("Failed to build custom model: %v", err)
		}
		models := []CTRModel{def, BuiltinModel(CTREcommerce), BuiltinModel(CTRInformational), custom}
		for _, m := range models {
			for _, pos := range []float64{11, 20, 55.5, 100} {
				if got := LookupCTR(pos, m); got != 0.01 {
					t.Errorf("Expected 0.01 for %s at position %v, got %v", m.Name(), pos, got)
				}
			}
		}
	})

	t.Run("CustomMissingEntries", func(t *testing.T) {
		custom, err := CustomModel(map[int]float64{1: 0.42, 2: 0})
		if err != nil {
			t.Fatalf("Failed to build custom model: %v", err)
		}
		if got := LookupCTR(1, custom); got != 0.42 {
			t.Errorf("Expected 0.42 at position 1, got %v", got)
		}
		if got := LookupCTR(2, custom); got != TailCTR {
			t.Errorf("Expected zero entry to fall back to %v, got %v", TailCTR, got)
		}
		if got := LookupCTR(5, custom); got != TailCTR {
			t.Errorf("Expected missing entry to fall back to %v, got %v", TailCTR, got)
		}
	})

	t.Run("ZeroValueIsDefault", func(t *testing.T) {
		var m CTRModel
		if got := LookupCTR(1, m); got != 0.317 {
			t.Errorf("Expected zero-value model to behave as Default, got %v", got)
		}
	})
}

func TestParseCTRModel(t *testing.T) {
	tests := []struct {
		name string
		kind CTRModelKind
	}{
		{"Default", CTRDefault},
		{"E-commerce", CTREcommerce},
		{"Informational", CTRInformational},
		{"Custom", CTRCustom},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ParseCTRModel(tt.name, map[int]float64{3: 0.2})
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if m.Kind() != tt.kind {
				t.Errorf("Expected kind %v, got %v", tt.kind, m.Kind())
			}
			if m.Name() != tt.name {
				t.Errorf("Expected name %q, got %q", tt.name, m.Name())
			}
		})
	}

	if _, err := ParseCTRModel("Voice Search", nil); !errors.Is(err, ErrUnknownCTRModel) {
		t.Errorf("Expected ErrUnknownCTRModel, got %v", err)
	}
	if _, err := ParseCTRModel("Custom", map[int]float64{11: 0.1}); !errors.Is(err, ErrInvalidCTRRate) {
		t.Errorf("Expected ErrInvalidCTRRate for position 11, got %v", err)
	}
	if _, err := ParseCTRModel("Custom", map[int]float64{1: 1.5}); !errors.Is(err, ErrInvalidCTRRate) {
		t.Errorf("Expected ErrInvalidCTRRate for rate 1.5, got %v", err)
	}
}

func TestCustomModelCopiesInput(t *testing.T) {
	rates := map[int]float64{1: 0.3}
	m, err := CustomModel(rates)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	rates[1] = 0.9
	if got := LookupCTR(1, m); got != 0.3 {
		t.Errorf("Expected model to keep 0.3 after caller mutation, got %v", got)
	}
}

func TestCTRModels(t *testing.T) {
	models := CTRModels()
	if len(models) != 3 {
		t.Fatalf("Expected 3 built-in models, got %d", len(models))
	}
	if got := models["Informational"][1]; got != 0.40 {
		t.Errorf("Expected Informational position 1 to be 0.40, got %v", got)
	}
	if got := models["E-commerce"][10]; got != 0.015 {
		t.Errorf("Expected E-commerce position 10 to be 0.015, got %v", got)
	}
}
