package forecast

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidPeriod is returned when the projection period is outside 1..12
	ErrInvalidPeriod = errors.New("projection period must be between 1 and 12 months")
	// ErrNoKeywords is returned for an empty keyword set
	ErrNoKeywords = errors.New("no keywords supplied")
	// ErrMalformedKeyword is wrapped by every *KeywordError
	ErrMalformedKeyword = errors.New("invalid keyword data")
	// ErrUnknownCTRModel is returned for a CTR model name that is not recognised
	ErrUnknownCTRModel = errors.New("unknown CTR model")
	// ErrInvalidCTRRate is returned for custom CTR entries outside positions 1..10 or rates outside [0,1]
	ErrInvalidCTRRate = errors.New("invalid custom CTR entry")
	// ErrUnknownSweepVariable is returned when a sweep names an unsupported parameter
	ErrUnknownSweepVariable = errors.New("unknown sweep variable")
)

// KeywordError describes a keyword rejected as corrupt input during aggregation
type KeywordError struct {
	Index   int
	Keyword string
	Field   string
	Value   float64
}

func (e *KeywordError) Error() string {
	return fmt.Sprintf("invalid keyword data: keyword %d (%q) has non-positive %s %v", e.Index, e.Keyword, e.Field, e.Value)
}

func (e *KeywordError) Unwrap() error {
	return ErrMalformedKeyword
}
