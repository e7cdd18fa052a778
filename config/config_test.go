package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/epeers/pmscockpit/config"
)

// chdirTemp moves into an empty temp dir so godotenv.Load() finds no .env file
func chdirTemp(t *testing.T) string {
	t.Helper()
	origDir, _ := os.Getwd()
	tmpDir := t.TempDir()
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("failed to change directory: %v", err)
	}
	t.Cleanup(func() { os.Chdir(origDir) })
	return tmpDir
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "LOG_LEVEL", "AV_KEY", "FX_CACHE_TTL", "COCKPIT_DESK_FILE",
		"BREAK_TOLERANCE_ABS_USD", "BREAK_TOLERANCE_REL_BPS",
		"REBALANCE_TARGET_CASH_PCT", "REBALANCE_HORIZON", "REBALANCE_AUTO_FX",
		"FX_EXECUTION", "MANAGEMENT_FEE_BPS",
	} {
		t.Setenv(key, "")
	}
}

func TestConfigLoad_Defaults(t *testing.T) {
	clearEnv(t)
	chdirTemp(t)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("expected default PORT to be '8080', got %q", cfg.Port)
	}
	if cfg.AVKey != "" {
		t.Errorf("expected no AV key by default, got %q", cfg.AVKey)
	}
	if cfg.FXCacheTTL != 5*time.Minute {
		t.Errorf("expected 5m cache TTL, got %v", cfg.FXCacheTTL)
	}
	if cfg.BreakToleranceAbsUSD != 1000 || cfg.BreakToleranceRelBps != 1 {
		t.Errorf("unexpected tolerance defaults: %v / %v", cfg.BreakToleranceAbsUSD, cfg.BreakToleranceRelBps)
	}
	if cfg.RebalanceHorizon != "T2" || !cfg.RebalanceAutoFX || cfg.FXExecution != "SPOT" {
		t.Errorf("unexpected rebalance defaults: %+v", cfg)
	}
	if cfg.FXRates["EUR"] != 1.085 || cfg.FXRates["USD"] != 1 {
		t.Errorf("unexpected desk rates: %v", cfg.FXRates)
	}
	if cfg.ManagementFeeBps != 25 {
		t.Errorf("expected fee default 25, got %v", cfg.ManagementFeeBps)
	}
}

func TestConfigLoad_CustomPort(t *testing.T) {
	clearEnv(t)
	chdirTemp(t)
	t.Setenv("PORT", "3000")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Port != "3000" {
		t.Errorf("expected PORT to be '3000', got %q", cfg.Port)
	}
}

func TestConfigLoad_InvalidNumbers(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"BREAK_TOLERANCE_ABS_USD", "lots"},
		{"BREAK_TOLERANCE_REL_BPS", "1bp"},
		{"REBALANCE_TARGET_CASH_PCT", "half"},
		{"REBALANCE_AUTO_FX", "maybe"},
		{"FX_CACHE_TTL", "five minutes"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			clearEnv(t)
			chdirTemp(t)
			t.Setenv(tt.key, tt.value)

			if _, err := config.Load(); err == nil {
				t.Fatalf("expected error for %s=%q, got nil", tt.key, tt.value)
			}
		})
	}
}

func TestConfigLoad_DeskFile(t *testing.T) {
	clearEnv(t)
	dir := chdirTemp(t)

	desk := `
break_tolerance_abs_usd = 500
rebalance_auto_fx = false

[fx_rates]
EUR = 1.1
sek = 0.095
`
	path := filepath.Join(dir, "desk.toml")
	if err := os.WriteFile(path, []byte(desk), 0644); err != nil {
		t.Fatalf("failed to write desk file: %v", err)
	}
	t.Setenv("COCKPIT_DESK_FILE", path)
	t.Setenv("BREAK_TOLERANCE_REL_BPS", "2.5")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.BreakToleranceAbsUSD != 500 {
		t.Errorf("expected desk file tolerance 500, got %v", cfg.BreakToleranceAbsUSD)
	}
	if cfg.BreakToleranceRelBps != 2.5 {
		t.Errorf("expected env tolerance 2.5, got %v", cfg.BreakToleranceRelBps)
	}
	if cfg.RebalanceAutoFX {
		t.Error("expected desk file to turn auto FX off")
	}
	if cfg.FXRates["EUR"] != 1.1 || cfg.FXRates["SEK"] != 0.095 {
		t.Errorf("expected merged desk rates, got %v", cfg.FXRates)
	}
	if cfg.FXRates["GBP"] != 1.333 {
		t.Errorf("expected default GBP to survive merge, got %v", cfg.FXRates["GBP"])
	}
	if cfg.RebalanceHorizon != "T2" {
		t.Errorf("expected untouched horizon default, got %q", cfg.RebalanceHorizon)
	}
}

func TestConfigLoad_MissingDeskFile(t *testing.T) {
	clearEnv(t)
	chdirTemp(t)
	t.Setenv("COCKPIT_DESK_FILE", "/nonexistent/desk.toml")

	if _, err := config.Load(); err == nil {
		t.Fatal("expected error for missing desk file, got nil")
	}
}

func TestConfigLoad_ShellEnvTakesPrecedence(t *testing.T) {
	clearEnv(t)
	tmpDir := chdirTemp(t)

	envContent := `AV_KEY=dotenv-api-key
PORT=9999
`
	if err := os.WriteFile(filepath.Join(tmpDir, ".env"), []byte(envContent), 0644); err != nil {
		t.Fatalf("failed to write .env file: %v", err)
	}
	t.Setenv("AV_KEY", "shell-api-key")
	os.Unsetenv("PORT")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.AVKey != "shell-api-key" {
		t.Errorf("expected shell AV_KEY to take precedence, got %q", cfg.AVKey)
	}
	if cfg.Port != "9999" {
		t.Errorf("expected .env PORT to fill the gap, got %q", cfg.Port)
	}
	os.Unsetenv("PORT")
}
