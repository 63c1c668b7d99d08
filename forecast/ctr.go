package forecast

import (
	"fmt"
	"math"
)

const (
	// MaxRankedPosition is the last position covered by a CTR table
	MaxRankedPosition = 10
	// TailCTR applies beyond MaxRankedPosition and to missing table entries
	TailCTR = 0.01
)

// CTRModelKind enumerates the available click-through-rate models
type CTRModelKind int

const (
	CTRDefault CTRModelKind = iota
	CTREcommerce
	CTRInformational
	CTRCustom
)

var ctrModelNames = map[CTRModelKind]string{
	CTRDefault:       "Default",
	CTREcommerce:     "E-commerce",
	CTRInformational: "Informational",
	CTRCustom:        "Custom",
}

func (k CTRModelKind) String() string {
	if name, ok := ctrModelNames[k]; ok {
		return name
	}
	return fmt.Sprintf("CTRModelKind(%d)", int(k))
}

var builtinCTR = map[CTRModelKind][MaxRankedPosition]float64{
	CTRDefault:       {0.317, 0.247, 0.187, 0.133, 0.095, 0.068, 0.049, 0.035, 0.025, 0.018},
	CTREcommerce:     {0.25, 0.20, 0.15, 0.10, 0.08, 0.06, 0.04, 0.03, 0.02, 0.015},
	CTRInformational: {0.40, 0.30, 0.22, 0.15, 0.10, 0.07, 0.05, 0.04, 0.03, 0.02},
}

// CTRModel maps positions 1..10 to click-through rates. The zero value is the Default model.
type CTRModel struct {
	kind   CTRModelKind
	custom map[int]float64
}

// BuiltinModel returns one of the named models. CTRCustom yields an empty custom table.
func BuiltinModel(kind CTRModelKind) CTRModel {
	if kind == CTRCustom {
		return CTRModel{kind: CTRCustom, custom: map[int]float64{}}
	}
	return CTRModel{kind: kind}
}

// CustomModel builds the operator-defined model. The rates map is copied.
func CustomModel(rates map[int]float64) (CTRModel, error) {
	table := make(map[int]float64, len(rates))
	for pos, rate := range rates {
		if pos < 1 || pos > MaxRankedPosition {
			return CTRModel{}, fmt.Errorf("%w: position %d", ErrInvalidCTRRate, pos)
		}
		if math.IsNaN(rate) || rate < 0 || rate > 1 {
			return CTRModel{}, fmt.Errorf("%w: rate %v at position %d", ErrInvalidCTRRate, rate, pos)
		}
		table[pos] = rate
	}
	return CTRModel{kind: CTRCustom, custom: table}, nil
}

// ParseCTRModel resolves a model name as stored in Settings.CTRModel
func ParseCTRModel(name string, custom map[int]float64) (CTRModel, error) {
	for kind, n := range ctrModelNames {
		if n != name {
			continue
		}
		if kind == CTRCustom {
			return CustomModel(custom)
		}
		return BuiltinModel(kind), nil
	}
	return CTRModel{}, fmt.Errorf("%w: %q", ErrUnknownCTRModel, name)
}

// Kind reports which model variant this is
func (m CTRModel) Kind() CTRModelKind {
	return m.kind
}

// Name returns the settings label of the model
func (m CTRModel) Name() string {
	return m.kind.String()
}

// Rate returns the table entry for an integer position, if the model defines one
func (m CTRModel) Rate(position int) (float64, bool) {
	if position < 1 || position > MaxRankedPosition {
		return 0, false
	}
	if m.kind == CTRCustom {
		rate, ok := m.custom[position]
		return rate, ok
	}
	table, ok := builtinCTR[m.kind]
	if !ok {
		return 0, false
	}
	return table[position-1], true
}

// Table returns the model's rates for positions 1..10. Missing custom entries are 0.
func (m CTRModel) Table() map[int]float64 {
	out := make(map[int]float64, MaxRankedPosition)
	for pos := 1; pos <= MaxRankedPosition; pos++ {
		rate, _ := m.Rate(pos)
		out[pos] = rate
	}
	return out
}

// LookupCTR returns the expected click-through rate at a fractional position.
// The position is rounded up, so partial improvement is not credited until
// it reaches the next whole rank. Missing or zero entries fall back to TailCTR.
func LookupCTR(position float64, model CTRModel) float64 {
	rounded := math.Ceil(position)
	if rounded > MaxRankedPosition {
		return TailCTR
	}
	rate, ok := model.Rate(int(rounded))
	if !ok || rate == 0 {
		return TailCTR
	}
	return rate
}

// CTRModels lists the built-in models for display
func CTRModels() map[string]map[int]float64 {
	out := make(map[string]map[int]float64, len(builtinCTR))
	for kind := range builtinCTR {
		out[kind.String()] = BuiltinModel(kind).Table()
	}
	return out
}
