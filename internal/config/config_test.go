package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MemoryDefaults(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("SHEETS_BACKEND", "Memory")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8081" {
		t.Errorf("port = %q, want 8081", cfg.Port)
	}
	if cfg.SheetsBackend != BackendMemory {
		t.Errorf("backend = %q", cfg.SheetsBackend)
	}
	if cfg.MovementsTab != "STOCK_MOVEMENTS" {
		t.Errorf("movements tab = %q", cfg.MovementsTab)
	}
	if cfg.Log.Level != "info" || cfg.Log.MaxBackups != 5 {
		t.Errorf("log config = %+v", cfg.Log)
	}
}

func TestLoad_EnvFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "test.env")
	content := "SHEETS_BACKEND=memory\nPORT=9090\nCORS_ORIGINS=https://a.example,https://b.example\nLOG_FORMAT=json\n"
	if err := os.WriteFile(file, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ENV_FILE", file)
	// godotenv never overrides variables that are already set; clear ours.
	for _, k := range []string{"PORT", "CORS_ORIGINS", "LOG_FORMAT", "SHEETS_BACKEND"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("port = %q, want 9090", cfg.Port)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Errorf("cors = %v", cfg.CORSOrigins)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("log format = %q", cfg.Log.Format)
	}
}

func TestLoad_SeedSettings(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("SHEETS_BACKEND", "memory")
	t.Setenv("SEED_LOCATIONS", "silom,ARI")
	t.Setenv("SEED_USERNAME", "owner")
	t.Setenv("SEED_PIN", "1234")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Seed.Locations) != 2 || cfg.Seed.Locations[0] != "silom" {
		t.Errorf("seed locations = %v", cfg.Seed.Locations)
	}
	if cfg.Seed.Username != "owner" || cfg.Seed.PIN != "1234" {
		t.Errorf("seed owner = %+v", cfg.Seed)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"memory", Config{SheetsBackend: BackendMemory}, false},
		{"google ok", Config{SheetsBackend: BackendGoogle, SpreadsheetID: "id", GoogleCredentialsJSON: "{}"}, false},
		{"google missing id", Config{SheetsBackend: BackendGoogle, GoogleCredentialsJSON: "{}"}, true},
		{"google missing creds", Config{SheetsBackend: BackendGoogle, SpreadsheetID: "id"}, true},
		{"unknown", Config{SheetsBackend: "sqlite"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCredentials(t *testing.T) {
	file := filepath.Join(t.TempDir(), "sa.json")
	os.WriteFile(file, []byte(`{"type":"service_account"}`), 0o600)

	cfg := Config{GoogleCredentialsFile: file}
	b, err := cfg.Credentials()
	if err != nil || string(b) != `{"type":"service_account"}` {
		t.Errorf("Credentials() = %s, %v", b, err)
	}

	cfg.GoogleCredentialsJSON = `{"inline":true}`
	b, _ = cfg.Credentials()
	if string(b) != `{"inline":true}` {
		t.Errorf("inline JSON must win, got %s", b)
	}
}
