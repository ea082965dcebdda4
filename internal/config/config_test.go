package config

import (
	"bytes"
	stderrors "errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/carbyne-dev/carbyne/internal/errors"
)

func errorCode(t *testing.T, err error) string {
	t.Helper()
	var ce *errors.Error
	if !stderrors.As(err, &ce) {
		t.Fatalf("expected a coded error, got %v", err)
	}
	return ce.Code
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"CARBYNE_ADDR", "CARBYNE_LOG_LEVEL", "CARBYNE_S3_BUCKET"} {
		t.Setenv(k, "")
	}
}

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Devtools.Addr != DefaultAddr {
		t.Errorf("Devtools.Addr = %q, want %q", cfg.Devtools.Addr, DefaultAddr)
	}
	if cfg.TickDuration() != time.Second {
		t.Errorf("TickDuration = %v, want 1s", cfg.TickDuration())
	}
	if !cfg.Metrics.Enabled || cfg.Metrics.Namespace != DefaultNamespace {
		t.Errorf("Metrics = %+v", cfg.Metrics)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadJSON(t *testing.T) {
	clearEnv(t)
	tmpDir := t.TempDir()
	configJSON := `{
  "devtools": {"addr": ":9000", "tickInterval": "250ms", "allowedOrigins": ["http://a"]},
  "metrics": {"enabled": false},
  "log": {"level": "debug"}
}
`
	if err := os.WriteFile(filepath.Join(tmpDir, "carbyne.json"), []byte(configJSON), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Devtools.Addr != ":9000" {
		t.Errorf("Devtools.Addr = %q", cfg.Devtools.Addr)
	}
	if cfg.TickDuration() != 250*time.Millisecond {
		t.Errorf("TickDuration = %v", cfg.TickDuration())
	}
	if cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled should be false")
	}
	if cfg.Metrics.Namespace != DefaultNamespace {
		t.Errorf("Metrics.Namespace default not applied: %q", cfg.Metrics.Namespace)
	}
	if level, _ := cfg.LogLevel(); level != slog.LevelDebug {
		t.Errorf("LogLevel = %v", level)
	}
	if cfg.Dir() != tmpDir {
		t.Errorf("Dir = %q, want %q", cfg.Dir(), tmpDir)
	}
}

func TestLoadYAML(t *testing.T) {
	clearEnv(t)
	tmpDir := t.TempDir()
	configYAML := `devtools:
  addr: 0.0.0.0:7000
snapshot:
  bucket: snaps
  region: eu-west-1
  prefix: demo/
log:
  format: json
`
	if err := os.WriteFile(filepath.Join(tmpDir, "carbyne.yaml"), []byte(configYAML), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Devtools.Addr != "0.0.0.0:7000" || cfg.Snapshot.Bucket != "snaps" || cfg.Snapshot.Prefix != "demo/" {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.SnapshotPath() != filepath.Join(tmpDir, DefaultSnapshotDir) {
		t.Errorf("SnapshotPath = %q", cfg.SnapshotPath())
	}

	var buf bytes.Buffer
	cfg.Logger(&buf).Info("hello")
	if !strings.HasPrefix(buf.String(), "{") {
		t.Errorf("expected JSON log output, got %q", buf.String())
	}
}

func TestLoadWithoutFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("CARBYNE_ADDR", ":1234")
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Devtools.Addr != ":1234" {
		t.Errorf("env override not applied: %q", cfg.Devtools.Addr)
	}
	if cfg.Path() != "" {
		t.Errorf("Path = %q, want empty", cfg.Path())
	}
}

func TestLoadFileErrors(t *testing.T) {
	tmpDir := t.TempDir()

	_, err := LoadFile(filepath.Join(tmpDir, "missing.json"))
	if code := errorCode(t, err); code != errors.CodeConfigRead {
		t.Errorf("missing file: code %s", code)
	}

	bad := filepath.Join(tmpDir, "bad.json")
	os.WriteFile(bad, []byte("{"), 0644)
	_, err = LoadFile(bad)
	if code := errorCode(t, err); code != errors.CodeConfigInvalid {
		t.Errorf("bad json: code %s", code)
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"CARBYNE_ADDR":      ":8000",
		"CARBYNE_LOG_LEVEL": "warn",
		"CARBYNE_S3_BUCKET": "bucket",
	}
	cfg := New()
	cfg.applyEnv(func(k string) string { return env[k] })

	if cfg.Devtools.Addr != ":8000" || cfg.Log.Level != "warn" || cfg.Snapshot.Bucket != "bucket" {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"bad tick", func(c *Config) { c.Devtools.TickInterval = "soon" }, false},
		{"zero tick", func(c *Config) { c.Devtools.TickInterval = "0s" }, false},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, false},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, false},
		{"bucket without region", func(c *Config) { c.Snapshot.Bucket = "b" }, false},
		{"bucket with endpoint", func(c *Config) {
			c.Snapshot.Bucket = "b"
			c.Snapshot.Endpoint = "http://localhost:9000"
		}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok {
				if err == nil {
					t.Fatal("expected error")
				}
				if code := errorCode(t, err); code != errors.CodeConfigInvalid {
					t.Errorf("code = %s", code)
				}
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	clearEnv(t)
	tmpDir := t.TempDir()
	for _, name := range []string{"carbyne.json", "carbyne.yaml"} {
		t.Run(name, func(t *testing.T) {
			cfg := New()
			cfg.Devtools.Addr = ":4242"
			path := filepath.Join(tmpDir, name)
			if err := cfg.SaveTo(path); err != nil {
				t.Fatal(err)
			}
			loaded, err := LoadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			if loaded.Devtools.Addr != ":4242" {
				t.Errorf("Addr = %q", loaded.Devtools.Addr)
			}
		})
	}
}

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "carbyne.yml"), []byte("{}\n"), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := FindProjectRoot(nested)
	if err != nil {
		t.Fatal(err)
	}
	want, _ := filepath.Abs(root)
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
