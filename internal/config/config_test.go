package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("default port = %q, want 8080", cfg.Port)
	}
	if cfg.Timezone != "America/Mexico_City" {
		t.Errorf("default timezone = %q", cfg.Timezone)
	}
	if cfg.WorkStartHour != 9 || cfg.WorkEndHour != 18 || cfg.WorkEndSaturday != 14 {
		t.Errorf("default work hours = %d-%d (sat %d), want 9-18 (sat 14)",
			cfg.WorkStartHour, cfg.WorkEndHour, cfg.WorkEndSaturday)
	}
	if cfg.AmbiguousHourPMCutoff != 7 {
		t.Errorf("default PM cutoff = %d, want 7", cfg.AmbiguousHourPMCutoff)
	}
	if cfg.CalendarTimeout != 5*time.Second {
		t.Errorf("default calendar timeout = %s, want 5s", cfg.CalendarTimeout)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("WORK_END_HOUR", "19")
	t.Setenv("AMBIGUOUS_HOUR_PM_CUTOFF", "0")
	t.Setenv("CALENDAR_TIMEOUT", "2s")
	t.Setenv("REDIS_TLS", "true")

	cfg := Load()
	if cfg.WorkEndHour != 19 {
		t.Errorf("WorkEndHour = %d, want 19", cfg.WorkEndHour)
	}
	if cfg.AmbiguousHourPMCutoff != 0 {
		t.Errorf("AmbiguousHourPMCutoff = %d, want 0", cfg.AmbiguousHourPMCutoff)
	}
	if cfg.CalendarTimeout != 2*time.Second {
		t.Errorf("CalendarTimeout = %s, want 2s", cfg.CalendarTimeout)
	}
	if !cfg.RedisTLS {
		t.Error("RedisTLS should be true")
	}
}
