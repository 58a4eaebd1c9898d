package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"tariff-compare/internal/comparison"
	"tariff-compare/internal/model"

	"gopkg.in/yaml.v3"
)

// ScenarioFile is the on-disk shape of a batch of comparisons (YAML, or JSON by extension).
type ScenarioFile struct {
	// Optional: load the base input from a separate file.
	// If both BaseFile and Base are provided, Base overrides BaseFile field by field.
	BaseFile  string           `yaml:"base_file" json:"base_file"`
	Base      InputConfig      `yaml:"base" json:"base"`
	Scenarios []ScenarioConfig `yaml:"scenarios" json:"scenarios"`
}

type ScenarioConfig struct {
	Name  string      `yaml:"name" json:"name"`
	Input InputConfig `yaml:"input" json:"input"`
}

// InputConfig is a partially specified tariff input. Nil means "not given",
// so an override can set a field back to zero or false.
type InputConfig struct {
	PeakConsumptionKWh    *float64 `yaml:"peak_consumption_kwh" json:"peak_consumption_kwh"`
	OffPeakConsumptionKWh *float64 `yaml:"off_peak_consumption_kwh" json:"off_peak_consumption_kwh"`
	CaptivePeakTariff     *float64 `yaml:"captive_peak_tariff" json:"captive_peak_tariff"`
	CaptiveOffPeakTariff  *float64 `yaml:"captive_off_peak_tariff" json:"captive_off_peak_tariff"`
	TaxRatePercent        *float64 `yaml:"tax_rate_percent" json:"tax_rate_percent"`
	FreeMarketTariff      *float64 `yaml:"free_market_tariff" json:"free_market_tariff"`
	IncludeSolar          *bool    `yaml:"include_solar" json:"include_solar"`
	SolarGenerationKWh    *float64 `yaml:"solar_generation_kwh" json:"solar_generation_kwh"`
	CaptiveOffsetPercent  *float64 `yaml:"captive_offset_percent" json:"captive_offset_percent"`
	FreeOffsetPercent     *float64 `yaml:"free_offset_percent" json:"free_offset_percent"`
}

// LoadScenarios loads a scenario file, resolves base_file and validates the result.
func LoadScenarios(path string) (*ScenarioFile, error) {
	f, err := LoadScenariosUnchecked(path)
	if err != nil {
		return nil, err
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// LoadScenariosUnchecked loads and merges a scenario file, but does not validate it.
func LoadScenariosUnchecked(path string) (*ScenarioFile, error) {
	var f ScenarioFile
	if err := decodeFile(path, &f); err != nil {
		return nil, err
	}
	if f.BaseFile != "" {
		basePath := f.BaseFile
		if !filepath.IsAbs(basePath) {
			// Prefer paths relative to the scenario file, fall back to the working directory.
			cand := filepath.Join(filepath.Dir(path), basePath)
			if _, err := os.Stat(cand); err == nil {
				basePath = cand
			}
		}
		var wrapper struct {
			Base InputConfig `yaml:"base" json:"base"`
		}
		if err := decodeFile(basePath, &wrapper); err != nil {
			return nil, fmt.Errorf("base_file %s: %w", f.BaseFile, err)
		}
		f.Base = MergeInput(wrapper.Base, f.Base)
	}
	return &f, nil
}

func (f *ScenarioFile) Validate() error {
	if f == nil {
		return errors.New("scenario file is nil")
	}
	seen := make(map[string]bool, len(f.Scenarios))
	for i, sc := range f.Scenarios {
		name := strings.TrimSpace(sc.Name)
		if name == "" {
			return fmt.Errorf("scenarios[%d].name is required", i)
		}
		if seen[name] {
			return fmt.Errorf("duplicate scenario name %q", name)
		}
		seen[name] = true
	}
	return nil
}

// Build resolves every scenario against the base and defaults. With no scenarios
// the base alone is returned under the name "base". Scenarios that miss a required
// field come back with Err set so the batch keeps its shape.
func (f *ScenarioFile) Build(d Defaults) []comparison.Scenario {
	if len(f.Scenarios) == 0 {
		in, err := f.Base.ToModelInput(d)
		return []comparison.Scenario{{Name: "base", Input: in, Err: err}}
	}
	out := make([]comparison.Scenario, 0, len(f.Scenarios))
	for _, sc := range f.Scenarios {
		in, err := MergeInput(f.Base, sc.Input).ToModelInput(d)
		out = append(out, comparison.Scenario{Name: sc.Name, Input: in, Err: err})
	}
	return out
}

// ToModelInput fills the optional fields from d and reports every missing
// required field in one ValidationError. Solar generation is required only
// when solar is included.
func (c InputConfig) ToModelInput(d Defaults) (model.TariffInput, error) {
	verr := &model.ValidationError{}
	required := func(field string, v *float64) float64 {
		if v == nil {
			verr.Add(field, "is required")
			return 0
		}
		return *v
	}
	optional := func(v *float64, def float64) float64 {
		if v == nil {
			return def
		}
		return *v
	}

	in := model.TariffInput{
		PeakConsumptionKWh:    required(model.FieldPeakConsumption, c.PeakConsumptionKWh),
		OffPeakConsumptionKWh: required(model.FieldOffPeakConsumption, c.OffPeakConsumptionKWh),
		CaptivePeakTariff:     required(model.FieldCaptivePeakTariff, c.CaptivePeakTariff),
		CaptiveOffPeakTariff:  required(model.FieldCaptiveOffPeakTariff, c.CaptiveOffPeakTariff),
		TaxRatePercent:        required(model.FieldTaxRatePercent, c.TaxRatePercent),
		FreeMarketTariff:      required(model.FieldFreeMarketTariff, c.FreeMarketTariff),
		IncludeSolar:          c.IncludeSolar != nil && *c.IncludeSolar,
		CaptiveOffsetPercent:  optional(c.CaptiveOffsetPercent, d.CaptiveOffsetPercent),
		FreeOffsetPercent:     optional(c.FreeOffsetPercent, d.FreeOffsetPercent),
	}
	if in.IncludeSolar {
		in.SolarGenerationKWh = required(model.FieldSolarGeneration, c.SolarGenerationKWh)
	} else {
		in.SolarGenerationKWh = optional(c.SolarGenerationKWh, 0)
	}

	if err := verr.OrNil(); err != nil {
		return model.TariffInput{}, err
	}
	return in, nil
}

// MergeInput overlays the fields set in override onto base.
func MergeInput(base, override InputConfig) InputConfig {
	out := base
	if override.PeakConsumptionKWh != nil {
		out.PeakConsumptionKWh = override.PeakConsumptionKWh
	}
	if override.OffPeakConsumptionKWh != nil {
		out.OffPeakConsumptionKWh = override.OffPeakConsumptionKWh
	}
	if override.CaptivePeakTariff != nil {
		out.CaptivePeakTariff = override.CaptivePeakTariff
	}
	if override.CaptiveOffPeakTariff != nil {
		out.CaptiveOffPeakTariff = override.CaptiveOffPeakTariff
	}
	if override.TaxRatePercent != nil {
		out.TaxRatePercent = override.TaxRatePercent
	}
	if override.FreeMarketTariff != nil {
		out.FreeMarketTariff = override.FreeMarketTariff
	}
	if override.IncludeSolar != nil {
		out.IncludeSolar = override.IncludeSolar
	}
	if override.SolarGenerationKWh != nil {
		out.SolarGenerationKWh = override.SolarGenerationKWh
	}
	if override.CaptiveOffsetPercent != nil {
		out.CaptiveOffsetPercent = override.CaptiveOffsetPercent
	}
	if override.FreeOffsetPercent != nil {
		out.FreeOffsetPercent = override.FreeOffsetPercent
	}
	return out
}

func decodeFile(path string, target any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return json.Unmarshal(raw, target)
	}
	return yaml.Unmarshal(raw, target)
}
