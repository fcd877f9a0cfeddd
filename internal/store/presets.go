package store

import (
	"context"
	"fmt"
	"gopkg.in/yaml.v3"
	"os"
	"tradesync/internal/journal"
)

// AccountPreset describes a prop-firm account to create on first run.
type AccountPreset struct {
	Name     string               `yaml:"name"`
	PropFirm string               `yaml:"prop_firm"`
	Capital  float64              `yaml:"capital"`
	Phase    string               `yaml:"phase"`
	Rules    journal.AccountRules `yaml:"rules"`
}

// StrategyPreset describes a strategy to create on first run.
type StrategyPreset struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Rules       []string `yaml:"rules"`
	Tags        []string `yaml:"tags"`
}

// Presets is the content of the presets file.
type Presets struct {
	Accounts   []AccountPreset  `yaml:"accounts"`
	Strategies []StrategyPreset `yaml:"strategies"`
}

// LoadPresets reads a presets YAML file.
func LoadPresets(path string) (Presets, error) {
	var p Presets
	b, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("could not read presets: %w", err)
	}
	if err := yaml.Unmarshal(b, &p); err != nil {
		return p, fmt.Errorf("could not parse presets %s: %w", path, err)
	}
	return p, nil
}

// Seed creates the preset accounts and strategies whose names are not taken yet and
// returns how many records it created.
func (s *Store) Seed(ctx context.Context, p Presets) (int, error) {
	accounts, err := s.ListAccounts(ctx)
	if err != nil {
		return 0, err
	}
	strategies, err := s.ListStrategies(ctx)
	if err != nil {
		return 0, err
	}

	taken := make(map[string]bool)
	for _, a := range accounts {
		taken["account:"+a.Name] = true
	}
	for _, st := range strategies {
		taken["strategy:"+st.Name] = true
	}

	created := 0
	for _, ap := range p.Accounts {
		if ap.Name == "" || taken["account:"+ap.Name] {
			continue
		}
		_, err := s.CreateAccount(ctx, journal.Account{
			Name:           ap.Name,
			PropFirm:       ap.PropFirm,
			Phase:          ap.Phase,
			InitialBalance: ap.Capital,
			Rules:          ap.Rules,
		})
		if err != nil {
			return created, err
		}
		taken["account:"+ap.Name] = true
		created++
	}
	for _, sp := range p.Strategies {
		if sp.Name == "" || taken["strategy:"+sp.Name] {
			continue
		}
		_, err := s.CreateStrategy(ctx, journal.Strategy{
			Name:        sp.Name,
			Description: sp.Description,
			Rules:       sp.Rules,
			Tags:        sp.Tags,
			IsActive:    true,
		})
		if err != nil {
			return created, err
		}
		taken["strategy:"+sp.Name] = true
		created++
	}
	return created, nil
}
