package wizfs

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/wizkit/wizfs/pkg/wizfs/identity"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(cfg, DefaultConfig()) {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}
}

func TestLoadConfigOverlay(t *testing.T) {
	dir := t.TempDir()
	yaml := "modes: [component, page]\nlisten: \"127.0.0.1:9999\"\nwrite_grace_ms: 200\n"
	if err := os.WriteFile(filepath.Join(dir, ConfigFile), []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(cfg.Modes, []string{"component", "page"}) {
		t.Errorf("Modes = %v", cfg.Modes)
	}
	if cfg.Listen != "127.0.0.1:9999" {
		t.Errorf("Listen = %q", cfg.Listen)
	}
	if cfg.WriteGraceMs != 200 {
		t.Errorf("WriteGraceMs = %d", cfg.WriteGraceMs)
	}
	// Unset fields keep their defaults.
	if cfg.WatchDebounceMs != DefaultConfig().WatchDebounceMs {
		t.Errorf("WatchDebounceMs = %d", cfg.WatchDebounceMs)
	}
}

func TestLoadConfigMalformed(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ConfigFile), []byte("modes: ["), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(dir); err == nil {
		t.Error("malformed yaml accepted")
	}
}

func TestCreationModesFiltering(t *testing.T) {
	tests := []struct {
		name  string
		modes []string
		want  []string
	}{
		{"valid subset keeps order", []string{"layout", "page"}, []string{"layout", "page"}},
		{"invalid entries dropped", []string{"page", "widget", "component"}, []string{"page", "component"}},
		{"all invalid falls back", []string{"widget", "gadget"}, identity.AllModes},
		{"empty falls back", nil, identity.AllModes},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Modes: tt.modes}
			if got := cfg.CreationModes(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("CreationModes() = %v, want %v", got, tt.want)
			}
		})
	}
}
