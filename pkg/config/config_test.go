package config

import (
	"os"
	"path/filepath"
	"testing"

	"pixelgardenlabs.io/pgl-sync/pkg/target"
)

func TestConfig_Validate(t *testing.T) {
	// Helper to get a valid base config for testing
	newValidConfig := func(t *testing.T) Config {
		cfg := NewDefault()
		cfg.Targets = []TargetConfig{
			{
				Path:       t.TempDir(),
				TargetPath: t.TempDir(),
				Tag:        "docs",
				KeepNum:    1,
			},
		}
		return cfg
	}

	t.Run("Valid Config", func(t *testing.T) {
		cfg := newValidConfig(t)
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected valid config to pass validation, but got error: %v", err)
		}
	})

	t.Run("Empty Source Path", func(t *testing.T) {
		cfg := newValidConfig(t)
		cfg.Targets[0].Path = ""
		if err := cfg.Validate(); err == nil {
			t.Error("expected error for empty source path, but got nil")
		}
	})

	t.Run("Empty Target Path", func(t *testing.T) {
		cfg := newValidConfig(t)
		cfg.Targets[0].TargetPath = ""
		if err := cfg.Validate(); err == nil {
			t.Error("expected error for empty target path, but got nil")
		}
	})

	t.Run("Omitted KeepNum Defaults To 1", func(t *testing.T) {
		cfg := newValidConfig(t)
		cfg.Targets[0].KeepNum = 0
		if err := cfg.Validate(); err != nil {
			t.Errorf("omitted keepNum should default to 1 and validate, got: %v", err)
		}
		if got := cfg.BuildTarget(cfg.Targets[0]).KeepNum; got != 1 {
			t.Errorf("expected keepNum default of 1, got %d", got)
		}
	})

	t.Run("Negative KeepNum", func(t *testing.T) {
		cfg := newValidConfig(t)
		cfg.Targets[0].KeepNum = -1
		if err := cfg.Validate(); err == nil {
			t.Error("expected error for negative keepNum, but got nil")
		}
	})

	t.Run("Invalid Threads", func(t *testing.T) {
		cfg := newValidConfig(t)
		cfg.Engine.Performance.Threads = 0
		if err := cfg.Validate(); err == nil {
			t.Error("expected error for zero threads, but got nil")
		}
	})

	t.Run("Invalid BufferSizeKB", func(t *testing.T) {
		cfg := newValidConfig(t)
		cfg.Engine.Performance.BufferSizeKB = 0
		if err := cfg.Validate(); err == nil {
			t.Error("expected error for zero buffer size, but got nil")
		}
	})

	t.Run("Invalid Daemon Interval", func(t *testing.T) {
		cfg := newValidConfig(t)
		cfg.Daemon.IntervalSeconds = 0
		if err := cfg.Validate(); err == nil {
			t.Error("expected error for zero daemon interval, but got nil")
		}
	})

	t.Run("Invalid Archive Format", func(t *testing.T) {
		cfg := newValidConfig(t)
		cfg.Archive.Format = "rar"
		if err := cfg.Validate(); err == nil {
			t.Error("expected error for unsupported archive format, but got nil")
		}
	})

	t.Run("Duplicate Tags", func(t *testing.T) {
		cfg := newValidConfig(t)
		cfg.Targets = append(cfg.Targets, TargetConfig{
			Path:       t.TempDir(),
			TargetPath: t.TempDir(),
			Tag:        "docs",
			KeepNum:    1,
		})
		if err := cfg.Validate(); err == nil {
			t.Error("expected error for duplicate tags, but got nil")
		}
	})
}

func TestConfig_BuildTarget(t *testing.T) {
	cfg := NewDefault()
	cfg.Engine.Performance.Threads = 4

	t.Run("Global Threads Applied", func(t *testing.T) {
		tgt := cfg.BuildTarget(TargetConfig{Path: "/a", TargetPath: "/b", KeepNum: 1})
		if tgt.Threads != 4 {
			t.Errorf("expected global thread count 4, got %d", tgt.Threads)
		}
	})

	t.Run("Per-Target Override", func(t *testing.T) {
		tgt := cfg.BuildTarget(TargetConfig{Path: "/a", TargetPath: "/b", KeepNum: 1, Threads: 8})
		if tgt.Threads != 8 {
			t.Errorf("expected per-target thread count 8, got %d", tgt.Threads)
		}
	})

	t.Run("Fields Carried Over", func(t *testing.T) {
		tc := TargetConfig{
			Path:        "/a",
			TargetPath:  "/b",
			Tag:         "media",
			Optional:    true,
			KeepNum:     3,
			AlwaysCopy:  true,
			IgnoreFiles: []string{"*.tmp"},
			IgnoreDirs:  []string{"cache"},
			Backend:     target.Local,
		}
		tgt := cfg.BuildTarget(tc)
		if tgt.Tag != "media" || !tgt.Optional || tgt.KeepNum != 3 || !tgt.AlwaysCopy {
			t.Errorf("resolved target lost fields: %+v", tgt)
		}
		if len(tgt.IgnoreFiles) != 1 || len(tgt.IgnoreDirs) != 1 {
			t.Errorf("resolved target lost ignore lists: %+v", tgt)
		}
	})
}

func TestConfig_FindTarget(t *testing.T) {
	cfg := NewDefault()
	cfg.Targets = []TargetConfig{
		{Path: "/a", TargetPath: "/b", Tag: "docs", KeepNum: 1},
		{Path: "/c", TargetPath: "/d", Tag: "media", KeepNum: 2},
	}

	tc, err := cfg.FindTarget("media")
	if err != nil {
		t.Fatalf("expected to find target 'media', got error: %v", err)
	}
	if tc.Path != "/c" {
		t.Errorf("found wrong target: %+v", tc)
	}

	if _, err := cfg.FindTarget("missing"); err == nil {
		t.Error("expected error for unknown tag, but got nil")
	}
}

func TestLoad(t *testing.T) {
	t.Run("No Config File", func(t *testing.T) {
		cfg, err := Load(t.TempDir())
		if err != nil {
			t.Fatalf("expected no error when config file is missing, but got: %v", err)
		}

		// Check if it returned the default config
		if cfg.Engine.Performance.BufferSizeKB != 256 {
			t.Errorf("expected default buffer size, but got %d", cfg.Engine.Performance.BufferSizeKB)
		}
	})

	t.Run("Valid Config File", func(t *testing.T) {
		tempDir := t.TempDir()
		confPath := filepath.Join(tempDir, ConfigFileName)
		content := `{"engine": {"performance": {"threads": 6}}, "targets": [{"path": "/src", "targetPath": "/dst", "keepNum": 2, "backend": "local"}]}`
		if err := os.WriteFile(confPath, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write test config file: %v", err)
		}

		cfg, err := Load(tempDir)
		if err != nil {
			t.Fatalf("expected no error when loading valid config, but got: %v", err)
		}

		// Check that the value from the file overrode the default
		if cfg.Engine.Performance.Threads != 6 {
			t.Errorf("expected threads to be 6, but got %d", cfg.Engine.Performance.Threads)
		}
		if len(cfg.Targets) != 1 || cfg.Targets[0].KeepNum != 2 {
			t.Errorf("expected one target with keepNum 2, got %+v", cfg.Targets)
		}
		// Check that a default value not in the file is still present
		if cfg.Daemon.IntervalSeconds != 3600 {
			t.Errorf("expected default daemon interval, but got %d", cfg.Daemon.IntervalSeconds)
		}
	})

	t.Run("Target Without KeepNum", func(t *testing.T) {
		tempDir := t.TempDir()
		confPath := filepath.Join(tempDir, ConfigFileName)
		content := `{"targets": [{"path": "/src", "targetPath": "/dst", "backend": "local"}]}`
		if err := os.WriteFile(confPath, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write test config file: %v", err)
		}

		cfg, err := Load(tempDir)
		if err != nil {
			t.Fatalf("expected no error when loading config, but got: %v", err)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("config without keepNum should validate, got: %v", err)
		}
		if got := cfg.BuildTarget(cfg.Targets[0]).KeepNum; got != 1 {
			t.Errorf("expected keepNum default of 1, got %d", got)
		}
	})

	t.Run("Malformed Config File", func(t *testing.T) {
		tempDir := t.TempDir()
		confPath := filepath.Join(tempDir, ConfigFileName)
		content := `{"logLevel": "info",}` // Extra comma
		if err := os.WriteFile(confPath, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write test config file: %v", err)
		}

		if _, err := Load(tempDir); err == nil {
			t.Fatal("expected an error when loading malformed config, but got nil")
		}
	})
}

func TestGenerateRoundTrip(t *testing.T) {
	tempDir := t.TempDir()
	cfg := NewDefault()
	cfg.Targets = []TargetConfig{
		{Path: "/src", TargetPath: "/dst", Tag: "docs", KeepNum: 4, Backend: target.Local},
	}

	if err := Generate(tempDir, cfg); err != nil {
		t.Fatalf("failed to generate config: %v", err)
	}

	loaded, err := Load(tempDir)
	if err != nil {
		t.Fatalf("failed to load generated config: %v", err)
	}
	if len(loaded.Targets) != 1 || loaded.Targets[0].Tag != "docs" || loaded.Targets[0].KeepNum != 4 {
		t.Errorf("round trip lost target data: %+v", loaded.Targets)
	}
}
