package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "runtime.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := writeConfig(t, "listen_addr: \":9090\"\nqueue_capacity: 64\n")
	c, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.ListenAddr != ":9090" || c.QueueCapacity != 64 {
		t.Fatalf("overrides not applied: %+v", c)
	}
	// Untouched fields keep their defaults.
	if c.TickRateHz != 20 || c.IdempotencyTTLMs != 300_000 {
		t.Fatalf("defaults lost: %+v", c)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"zero tick rate": "tick_rate_hz: 0\n",
		"negative cap":   "queue_capacity: -1\n",
		"zero ttl":       "idempotency_ttl_ms: 0\n",
		"malformed yaml": "tick_rate_hz: [\n",
		"wrong type":     "queue_capacity: lots\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, body)); err == nil {
				t.Fatalf("accepted: %s", body)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("missing file accepted")
	}
}
