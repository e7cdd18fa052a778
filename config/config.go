package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config holds application configuration. Values come from defaults, then an
// optional TOML desk file, then .env, then the shell environment.
type Config struct {
	Port     string `toml:"port"`
	LogLevel string `toml:"log_level"`
	AVKey    string `toml:"av_key"`

	FXCacheTTL time.Duration      `toml:"-"`
	FXRates    map[string]float64 `toml:"fx_rates"`

	BreakToleranceAbsUSD float64 `toml:"break_tolerance_abs_usd"`
	BreakToleranceRelBps float64 `toml:"break_tolerance_rel_bps"`

	RebalanceTargetCashPct float64 `toml:"rebalance_target_cash_pct"`
	RebalanceHorizon       string  `toml:"rebalance_horizon"`
	RebalanceAutoFX        bool    `toml:"rebalance_auto_fx"`
	FXExecution            string  `toml:"fx_execution"`

	ManagementFeeBps float64 `toml:"management_fee_bps"`
}

// Defaults returns the built-in desk configuration
func Defaults() Config {
	return Config{
		Port:       "8080",
		LogLevel:   "info",
		FXCacheTTL: 5 * time.Minute,
		FXRates: map[string]float64{
			"USD": 1.0,
			"EUR": 1.085,
			"GBP": 1.333,
			"CHF": 1.12,
			"JPY": 0.0067,
		},
		BreakToleranceAbsUSD:   1000,
		BreakToleranceRelBps:   1,
		RebalanceTargetCashPct: 0.5,
		RebalanceHorizon:       "T2",
		RebalanceAutoFX:        true,
		FXExecution:            "SPOT",
		ManagementFeeBps:       25,
	}
}

// Load reads configuration. COCKPIT_DESK_FILE names an optional TOML file;
// a .env file in the working directory is read but never overrides the shell.
func Load() (*Config, error) {
	cfg := Defaults()

	if path := os.Getenv("COCKPIT_DESK_FILE"); path != "" {
		var file Config
		meta, err := toml.DecodeFile(path, &file)
		if err != nil {
			return nil, fmt.Errorf("failed to read desk file %s: %w", path, err)
		}
		mergeDeskFile(&cfg, file, meta)
	}

	_ = godotenv.Load()

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, err
	}
	if cfg.FXRates["USD"] != 1 {
		cfg.FXRates["USD"] = 1
	}
	return &cfg, nil
}

// mergeDeskFile copies only the keys present in the file. Desk rates are
// merged per currency.
func mergeDeskFile(cfg *Config, file Config, meta toml.MetaData) {
	if meta.IsDefined("port") {
		cfg.Port = file.Port
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = file.LogLevel
	}
	if meta.IsDefined("av_key") {
		cfg.AVKey = file.AVKey
	}
	for ccy, rate := range file.FXRates {
		cfg.FXRates[strings.ToUpper(ccy)] = rate
	}
	if meta.IsDefined("break_tolerance_abs_usd") {
		cfg.BreakToleranceAbsUSD = file.BreakToleranceAbsUSD
	}
	if meta.IsDefined("break_tolerance_rel_bps") {
		cfg.BreakToleranceRelBps = file.BreakToleranceRelBps
	}
	if meta.IsDefined("rebalance_target_cash_pct") {
		cfg.RebalanceTargetCashPct = file.RebalanceTargetCashPct
	}
	if meta.IsDefined("rebalance_horizon") {
		cfg.RebalanceHorizon = file.RebalanceHorizon
	}
	if meta.IsDefined("rebalance_auto_fx") {
		cfg.RebalanceAutoFX = file.RebalanceAutoFX
	}
	if meta.IsDefined("fx_execution") {
		cfg.FXExecution = file.FXExecution
	}
	if meta.IsDefined("management_fee_bps") {
		cfg.ManagementFeeBps = file.ManagementFeeBps
	}
}

func applyEnvOverrides(cfg *Config) error {
	setStr(&cfg.Port, "PORT")
	setStr(&cfg.LogLevel, "LOG_LEVEL")
	setStr(&cfg.AVKey, "AV_KEY")
	setStr(&cfg.RebalanceHorizon, "REBALANCE_HORIZON")
	setStr(&cfg.FXExecution, "FX_EXECUTION")

	for _, err := range []error{
		setDuration(&cfg.FXCacheTTL, "FX_CACHE_TTL"),
		setFloat64(&cfg.BreakToleranceAbsUSD, "BREAK_TOLERANCE_ABS_USD"),
		setFloat64(&cfg.BreakToleranceRelBps, "BREAK_TOLERANCE_REL_BPS"),
		setFloat64(&cfg.RebalanceTargetCashPct, "REBALANCE_TARGET_CASH_PCT"),
		setBool(&cfg.RebalanceAutoFX, "REBALANCE_AUTO_FX"),
		setFloat64(&cfg.ManagementFeeBps, "MANAGEMENT_FEE_BPS"),
	} {
		if err != nil {
			return err
		}
	}
	return nil
}

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setFloat64(dst *float64, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return fmt.Errorf("%s must be a number, got %q", key, v)
	}
	*dst = f
	return nil
}

func setBool(dst *bool, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("%s must be true or false, got %q", key, v)
	}
	*dst = b
	return nil
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("%s must be a duration like 5m, got %q", key, v)
	}
	*dst = d
	return nil
}
