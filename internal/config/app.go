package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type AppConfigApi struct {
	Address string
	Port    int
	// "production" switches gin to release mode.
	Env string
	// Origins allowed by CORS. Empty allows any origin.
	CorsOrigins []string `mapstructure:"cors_origins"`
}

func (a AppConfigApi) Addr() string {
	return fmt.Sprintf("%s:%d", a.Address, a.Port)
}

func (a AppConfigApi) IsProduction() bool {
	return strings.EqualFold(a.Env, "production")
}

type AppConfigLog struct {
	// "debug", "info", "warn", "error"; unknown values fall back to info.
	Level string
}

type AppConfigMetrics struct {
	Enabled bool
}

type AppConfigReport struct {
	Currency string // Printed before every amount, e.g. "R$"
	Title    string
	Company  string // Optional line under the title
}

// Defaults fill the optional fields of an input. The offsets default to full
// compensation, matching the values a user sees pre-filled.
type Defaults struct {
	CaptiveOffsetPercent float64 `mapstructure:"captive_offset_percent"`
	FreeOffsetPercent    float64 `mapstructure:"free_offset_percent"`
}

type AppConfig struct {
	Api      AppConfigApi     `mapstructure:"api"`
	Log      AppConfigLog     `mapstructure:"log"`
	Metrics  AppConfigMetrics `mapstructure:"metrics"`
	Report   AppConfigReport  `mapstructure:"report"`
	Defaults Defaults         `mapstructure:"defaults"`
}

// LoadApp reads the service configuration. An empty path skips the file and
// uses defaults plus TARIFF_* environment variables (TARIFF_API_PORT, ...).
func LoadApp(path string) (*AppConfig, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("TARIFF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("unable to read config file: %w", err)
		}
	}

	var c AppConfig
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unable to unmarshal config file: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *AppConfig) Validate() error {
	if c.Api.Port <= 0 || c.Api.Port > 65535 {
		return fmt.Errorf("api.port must be in 1..65535, got %d", c.Api.Port)
	}
	if strings.TrimSpace(c.Report.Currency) == "" {
		return fmt.Errorf("report.currency is required")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.address", "")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.env", "development")
	v.SetDefault("api.cors_origins", []string{})
	v.SetDefault("log.level", "info")
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("report.currency", "R$")
	v.SetDefault("report.title", "Energy Comparison Report")
	v.SetDefault("report.company", "")
	v.SetDefault("defaults.captive_offset_percent", 100.0)
	v.SetDefault("defaults.free_offset_percent", 100.0)
}

// DefaultApp is the configuration LoadApp produces with no file and no environment.
func DefaultApp() *AppConfig {
	return &AppConfig{
		Api:      AppConfigApi{Port: 8080, Env: "development"},
		Log:      AppConfigLog{Level: "info"},
		Metrics:  AppConfigMetrics{Enabled: true},
		Report:   AppConfigReport{Currency: "R$", Title: "Energy Comparison Report"},
		Defaults: Defaults{CaptiveOffsetPercent: 100, FreeOffsetPercent: 100},
	}
}
