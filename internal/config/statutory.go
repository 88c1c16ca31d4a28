package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// StatutoryBand is one progressive bracket seeded at bootstrap. Upper nil
// means unbounded; Rate is a percentage.
type StatutoryBand struct {
	Kind      string   `mapstructure:"kind"`
	Frequency string   `mapstructure:"frequency"`
	Lower     float64  `mapstructure:"lower"`
	Upper     *float64 `mapstructure:"upper"`
	Rate      float64  `mapstructure:"rate"`
}

type StatutoryConfig struct {
	EffectiveFrom string          `mapstructure:"effectiveFrom"`
	EffectiveTo   string          `mapstructure:"effectiveTo"`
	Bands         []StatutoryBand `mapstructure:"bands"`
}

// DefaultStatutoryConfig carries the monthly brackets in force since
// 1 July 2023: five graduated tax bands and the two statutory contribution
// tiers, both at 6%.
func DefaultStatutoryConfig() StatutoryConfig {
	return StatutoryConfig{
		EffectiveFrom: "2023-07-01",
		EffectiveTo:   "2033-07-01",
		Bands: []StatutoryBand{
			{Kind: "TAX", Frequency: "MONTHLY", Lower: 0, Upper: floatPtr(24_000), Rate: 10},
			{Kind: "TAX", Frequency: "MONTHLY", Lower: 24_000, Upper: floatPtr(32_333), Rate: 25},
			{Kind: "TAX", Frequency: "MONTHLY", Lower: 32_333, Upper: floatPtr(500_000), Rate: 30},
			{Kind: "TAX", Frequency: "MONTHLY", Lower: 500_000, Upper: floatPtr(800_000), Rate: 32.5},
			{Kind: "TAX", Frequency: "MONTHLY", Lower: 800_000, Upper: nil, Rate: 35},
			{Kind: "CONTRIBUTION", Frequency: "MONTHLY", Lower: 0, Upper: floatPtr(7_000), Rate: 6},
			{Kind: "CONTRIBUTION", Frequency: "MONTHLY", Lower: 7_000, Upper: floatPtr(36_000), Rate: 6},
		},
	}
}

func floatPtr(v float64) *float64 { return &v }

// StatutoryConfigHolder serves the current statutory band configuration and
// hot-reloads it when the file changes.
type StatutoryConfigHolder struct {
	current atomic.Value // holds StatutoryConfig
}

func NewStatutoryConfigHolder() (*StatutoryConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("statutory")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/malipo/config")
	v.AddConfigPath("/etc/malipo")
	v.AddConfigPath(".")

	v.SetEnvPrefix("MALIPO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		defaults := DefaultStatutoryConfig()
		v.SetDefault("statutory.effectiveFrom", defaults.EffectiveFrom)
		v.SetDefault("statutory.effectiveTo", defaults.EffectiveTo)
		v.SetDefault("statutory.bands", defaults.Bands)
	}

	var cfg StatutoryConfig
	if err := v.UnmarshalKey("statutory", &cfg); err != nil {
		return nil, err
	}
	if err := validateStatutoryConfig(cfg); err != nil {
		return nil, err
	}

	holder := &StatutoryConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated StatutoryConfig
		if err := v.UnmarshalKey("statutory", &updated); err != nil {
			log.Printf("[statutory-config] reload failed: %v", err)
			return
		}
		if err := validateStatutoryConfig(updated); err != nil {
			log.Printf("[statutory-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[statutory-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *StatutoryConfigHolder) Get() StatutoryConfig {
	return h.current.Load().(StatutoryConfig)
}

func validateStatutoryConfig(cfg StatutoryConfig) error {
	if len(cfg.Bands) == 0 {
		return errors.New("statutory.bands cannot be empty")
	}
	for _, band := range cfg.Bands {
		if band.Kind != "TAX" && band.Kind != "CONTRIBUTION" {
			return errors.New("statutory band kind must be TAX or CONTRIBUTION")
		}
		if band.Frequency != "MONTHLY" && band.Frequency != "ANNUAL" {
			return errors.New("statutory band frequency must be MONTHLY or ANNUAL")
		}
		if band.Lower < 0 || band.Rate < 0 {
			return errors.New("statutory band bounds and rate must be non-negative")
		}
		if band.Upper != nil && *band.Upper <= band.Lower {
			return errors.New("statutory band upper must exceed lower")
		}
	}
	return nil
}
