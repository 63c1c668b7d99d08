package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/seo-optimizer/forecaster/forecast"
	"github.com/seo-optimizer/forecaster/keywords"
	"github.com/seo-optimizer/forecaster/settings"
)

// fileSettings is the YAML layout accepted by -settings
type fileSettings struct {
	forecast.Settings `yaml:",inline"`
	CustomCTR         map[int]float64 `yaml:"customCtr"`
}

func loadSettings(path string) (fileSettings, error) {
	fs := fileSettings{Settings: settings.Defaults()}
	if path == "" {
		return fs, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fs, fmt.Errorf("read settings: %w", err)
	}
	if err := yaml.Unmarshal(data, &fs); err != nil {
		return fs, fmt.Errorf("parse settings: %w", err)
	}
	return fs, nil
}

func run(out io.Writer, keywordFile, settingsFile, ctrName string, period int) error {
	f, err := os.Open(keywordFile)
	if err != nil {
		return fmt.Errorf("open keywords: %w", err)
	}
	defer f.Close()

	set, err := keywords.Parse(keywordFile, f)
	if err != nil {
		return err
	}
	if err := keywords.Validate(set); err != nil {
		return err
	}

	fs, err := loadSettings(settingsFile)
	if err != nil {
		return err
	}
	if ctrName != "" {
		fs.CTRModel = ctrName
	}
	if period != 0 {
		fs.ProjectionPeriod = period
	}

	model, err := forecast.ParseCTRModel(fs.CTRModel, fs.CustomCTR)
	if err != nil {
		return err
	}

	projections, err := forecast.Forecast(set, fs.Settings, model)
	if err != nil {
		return err
	}
	summary := forecast.Summarize(projections, fs.Settings)

	if err := forecast.WriteCSV(out, projections); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	if _, err := fmt.Fprintf(out, "\n\nYou will recover your %s%s investment by %s.\n",
		forecast.CurrencySymbol(fs.Currency),
		strconv.FormatFloat(fs.Investment, 'f', -1, 64),
		summary.BreakEvenMonth); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	keywordFile := flag.String("keywords", "", "Keyword file to forecast (.csv or .xlsx)")
	settingsFile := flag.String("settings", "", "Optional YAML settings file")
	ctrName := flag.String("ctr", "", "CTR model override (Default, E-commerce, Informational, Custom)")
	period := flag.Int("period", 0, "Projection period override in months (1-12)")
	flag.Parse()

	if *keywordFile == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(os.Stdout, *keywordFile, *settingsFile, *ctrName, *period); err != nil {
		logger.Fatal().Err(err).Msg("Forecast failed")
	}
}
