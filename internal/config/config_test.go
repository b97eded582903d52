package config

import "testing"

func TestDefaultConfigSetsSaneDefaults(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.ListenAddr != ":8080" {
		t.Errorf("ListenAddr = %q, want :8080", cfg.ListenAddr)
	}
	if cfg.Debug {
		t.Error("Debug should default to false")
	}
	if cfg.CacheMaxMB != 64 {
		t.Errorf("CacheMaxMB = %d, want 64", cfg.CacheMaxMB)
	}
}

func TestLoadOverridesFromEnvironment(t *testing.T) {
	t.Setenv("PROJECTOR_LISTEN_ADDR", ":9090")
	t.Setenv("PROJECTOR_DEBUG", "true")
	t.Setenv("PROJECTOR_RATES_DIR", "/tmp/rates")
	t.Setenv("PROJECTOR_CACHE_DIR", "/tmp/cache")
	t.Setenv("PROJECTOR_CACHE_PASSWORD", "secret")

	cfg := Load()
	if cfg.ListenAddr != ":9090" {
		t.Errorf("ListenAddr = %q, want :9090", cfg.ListenAddr)
	}
	if !cfg.Debug {
		t.Error("Debug should be true when PROJECTOR_DEBUG=true")
	}
	if cfg.RatesDirectory != "/tmp/rates" {
		t.Errorf("RatesDirectory = %q, want /tmp/rates", cfg.RatesDirectory)
	}
	if cfg.CacheDirectory != "/tmp/cache" {
		t.Errorf("CacheDirectory = %q, want /tmp/cache", cfg.CacheDirectory)
	}
	if cfg.CachePassword != "secret" {
		t.Errorf("CachePassword = %q, want secret", cfg.CachePassword)
	}
}

func TestLoadLeavesDefaultsWhenUnset(t *testing.T) {
	t.Setenv("PROJECTOR_LISTEN_ADDR", "")
	t.Setenv("PROJECTOR_DEBUG", "")

	cfg := Load()
	if cfg.ListenAddr != ":8080" {
		t.Errorf("ListenAddr = %q, want default :8080 when unset", cfg.ListenAddr)
	}
	if cfg.Debug {
		t.Error("Debug should remain false when PROJECTOR_DEBUG is unset")
	}
}
