package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/seo-optimizer/forecaster/forecast"
)

var validate = validator.New()

// State is what the store persists: the forecast settings and the Custom CTR table
type State struct {
	Settings  forecast.Settings `json:"settings"`
	CustomCTR map[int]float64   `json:"customCtr"`
}

// Defaults returns the documented default settings
func Defaults() forecast.Settings {
	var s forecast.Settings
	if err := defaults.Set(&s); err != nil {
		// struct tags are static; a failure here is a programming error
		panic(fmt.Sprintf("settings defaults: %v", err))
	}
	return s
}

// DefaultKeywords returns the sample keyword set shown before any import
func DefaultKeywords() []forecast.Keyword {
	return []forecast.Keyword{
		{Text: "gas bbq", SearchVolume: 8000, Position: 8, TargetPosition: 3, Difficulty: 50},
		{Text: "charcoal bbq/orange bbq", SearchVolume: 6500, Position: 12, TargetPosition: 5, Difficulty: 60},
		{Text: "bbq grill", SearchVolume: 5000, Position: 9, TargetPosition: 4, Difficulty: 55},
	}
}

// Validate checks settings against their field constraints
func Validate(s forecast.Settings) error {
	return validate.Struct(s)
}

// Store persists settings as a JSON file
type Store struct {
	mutex    sync.Mutex
	filePath string
}

// NewStore creates a store backed by settings.json in dataDir
func NewStore(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &Store{filePath: filepath.Join(dataDir, "settings.json")}, nil
}

// Load returns the persisted state. A missing, unreadable or invalid file
// yields the defaults.
func (s *Store) Load() State {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	fallback := State{Settings: Defaults(), CustomCTR: map[int]float64{}}

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", s.filePath).Msg("could not read settings, using defaults")
		}
		return fallback
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		log.Warn().Err(err).Str("path", s.filePath).Msg("could not decode settings, using defaults")
		return fallback
	}
	if err := Validate(st.Settings); err != nil {
		log.Warn().Err(err).Str("path", s.filePath).Msg("stored settings are invalid, using defaults")
		return fallback
	}
	if _, err := forecast.CustomModel(st.CustomCTR); err != nil {
		log.Warn().Err(err).Msg("stored custom CTR table is invalid, discarding it")
		st.CustomCTR = nil
	}
	if st.CustomCTR == nil {
		st.CustomCTR = map[int]float64{}
	}
	return st
}

// Save validates and writes st atomically
func (s *Store) Save(st State) error {
	if err := Validate(st.Settings); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	if _, err := forecast.CustomModel(st.CustomCTR); err != nil {
		return err
	}

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	tempFile := s.filePath + ".tmp"
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write temporary file: %w", err)
	}
	if err := os.Rename(tempFile, s.filePath); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}
	return nil
}

// Reset removes the persisted state and returns the defaults
func (s *Store) Reset() (State, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if err := os.Remove(s.filePath); err != nil && !os.IsNotExist(err) {
		return State{}, fmt.Errorf("failed to remove settings: %w", err)
	}
	return State{Settings: Defaults(), CustomCTR: map[int]float64{}}, nil
}
