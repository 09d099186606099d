package config

import "testing"

func validConfig() *Config {
	return &Config{
		Telegram: TelegramConfig{Token: "123:abc"},
		Admins:   AdminsConfig{Allowlist: []string{"100"}},
	}
}

func TestNormalizeDefaults(t *testing.T) {
	cfg := validConfig()
	if err := Normalize(cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.Telegram.RunMode != RunModeLongpoll {
		t.Fatalf("run mode = %s, expected longpoll", cfg.Telegram.RunMode)
	}
	if cfg.Catalog.DataFile == "" || cfg.Catalog.PhotosDir == "" || cfg.Catalog.Placeholder == "" {
		t.Fatal("catalog paths should get defaults")
	}
	if len(cfg.Catalog.Brands) == 0 || len(cfg.Catalog.PriceBuckets) == 0 {
		t.Fatal("vocabularies should get defaults")
	}
}

func TestNormalizeRejectsEmptyAllowlist(t *testing.T) {
	cfg := validConfig()
	cfg.Admins.Allowlist = nil
	if err := Normalize(cfg); err == nil {
		t.Fatal("expected error for empty allowlist")
	}
}

func TestNormalizeRejectsInvertedBucket(t *testing.T) {
	cfg := validConfig()
	cfg.Catalog.PriceBuckets = []PriceBucket{{Label: "bad", Min: 100, Max: 50}}
	if err := Normalize(cfg); err == nil {
		t.Fatal("expected error for inverted bucket bounds")
	}
}

func TestAllowlistContains(t *testing.T) {
	al := ParseAllowlist([]string{"911971063", " @Manager ", "not-an-id"})

	cases := []struct {
		name     string
		userID   int64
		username string
		want     bool
	}{
		{"numeric id", 911971063, "", true},
		{"handle lowercase", 1, "manager", true},
		{"handle mixed case", 1, "MANAGER", true},
		{"handle with marker", 1, "@Manager", true},
		{"unknown id", 42, "", false},
		{"unknown handle", 42, "someone", false},
		{"garbage entry ignored", 0, "not-an-id", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := al.Contains(tc.userID, tc.username); got != tc.want {
				t.Fatalf("Contains(%d, %q) = %v, expected %v", tc.userID, tc.username, got, tc.want)
			}
		})
	}
}

func TestAllowlistIDsExcludeHandles(t *testing.T) {
	al := ParseAllowlist([]string{"5", "@boss", "7"})
	ids := al.IDs()
	if len(ids) != 2 {
		t.Fatalf("IDs() returned %d entries, expected 2", len(ids))
	}
}
