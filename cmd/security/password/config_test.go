package password

import "testing"

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.Params.MemoryKiB != 64*1024 || cfg.Params.Iterations != 3 {
		t.Fatalf("unexpected default params: %+v", cfg.Params)
	}
	if cfg.Policy.MinLength != 8 || cfg.Policy.MaxLength != 256 {
		t.Fatalf("unexpected default policy: %+v", cfg.Policy)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("GATE_ARGON2_MEMORY_KIB", "16384")
	t.Setenv("GATE_ARGON2_ITERATIONS", "2")
	t.Setenv("GATE_PASSWORD_MIN_LEN", "10")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.Params.MemoryKiB != 16384 {
		t.Fatalf("memory override not applied: %d", cfg.Params.MemoryKiB)
	}
	if cfg.Params.Iterations != 2 {
		t.Fatalf("iterations override not applied: %d", cfg.Params.Iterations)
	}
	if cfg.Policy.MinLength != 10 {
		t.Fatalf("min length override not applied: %d", cfg.Policy.MinLength)
	}
}

func TestFromEnv_Invalid(t *testing.T) {
	cases := map[string]string{
		"GATE_ARGON2_MEMORY_KIB":  "1", // below minimum
		"GATE_ARGON2_ITERATIONS":  "notanumber",
		"GATE_ARGON2_PARALLELISM": "0",
		"GATE_PASSWORD_MIN_LEN":   "-3",
	}

	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, val)
			if _, err := FromEnv(); err == nil {
				t.Fatalf("expected error for %s=%q", key, val)
			}
		})
	}
}

func TestFromEnv_MinGreaterThanMax(t *testing.T) {
	t.Setenv("GATE_PASSWORD_MIN_LEN", "100")
	t.Setenv("GATE_PASSWORD_MAX_LEN", "20")

	if _, err := FromEnv(); err == nil {
		t.Fatalf("expected error when min > max")
	}
}
