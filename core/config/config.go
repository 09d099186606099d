package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// TelegramConfig holds Telegram bot related settings.
type TelegramConfig struct {
	Token   string `yaml:"token" envconfig:"BOT_TOKEN"`
	RunMode string `yaml:"run_mode" envconfig:"TELEGRAM_RUN_MODE"`
	// LongPollTimeoutSeconds defines long polling timeout; 0 -> default
	LongPollTimeoutSeconds int `yaml:"longpoll_timeout_seconds" envconfig:"TELEGRAM_LONGPOLL_TIMEOUT_SECONDS"`
}

// WebhookConfig specifies webhook settings.
type WebhookConfig struct {
	URL    string `yaml:"url" envconfig:"WEBHOOK_URL"`
	Listen string `yaml:"listen" envconfig:"WEBHOOK_LISTEN"`
	Port   int    `yaml:"port" envconfig:"WEBHOOK_PORT"`
}

// LoggingConfig defines logging related configuration.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Format      string `yaml:"format"`
	KeysOrder   string `yaml:"keys_order"`
	DebugSample string `yaml:"debug_sample"`
	Dir         string `yaml:"dir"`
	BotFile     string `yaml:"bot_file"`
	// Profile indicates environment profile such as "debug" or "prod".
	Profile string `yaml:"profile"`
}

const (
	// RunModeWebhook selects webhook mode for Telegram updates.
	RunModeWebhook = "webhook"
	// RunModeLongpoll selects long-polling mode for Telegram updates.
	RunModeLongpoll = "longpoll"
)

const (
	// UpdateCallback identifies callback updates for rate limit exclusions.
	UpdateCallback = "callback"
	// UpdateMessage identifies message updates for rate limit exclusions.
	UpdateMessage = "message"
)

// RateLimitConfig holds settings for rate limiting.
// ExcludeUpdates accepts update types to bypass limiting:
// - "callback": Telegram callback button presses
// - "message": standard text messages
type RateLimitConfig struct {
	IntervalMS     int      `yaml:"interval_ms" envconfig:"RATE_LIMIT_INTERVAL_MS"`
	ExcludeUpdates []string `yaml:"exclude_updates" envconfig:"RATE_LIMIT_EXCLUDE_UPDATES"`
}

// AdminsConfig lists identities allowed to use the admin panel.
// Entries are either numeric Telegram ids or "@handle" strings.
type AdminsConfig struct {
	Allowlist []string `yaml:"allowlist" envconfig:"ADMIN_IDS"`
}

// PriceBucket is one labeled price sub-range used by the catalog filter.
// Min is exclusive, Max is inclusive; Max == 0 means unbounded above.
type PriceBucket struct {
	Label string `yaml:"label"`
	Min   int    `yaml:"min"`
	Max   int    `yaml:"max"`
}

// ContactsConfig carries the dealership contact card seeded into a fresh
// inventory document.
type ContactsConfig struct {
	Phone     string `yaml:"phone"`
	WhatsApp  string `yaml:"whatsapp"`
	Email     string `yaml:"email"`
	Address   string `yaml:"address"`
	WorkHours string `yaml:"work_hours"`
}

// CatalogConfig describes the inventory document, the photo storage and the
// vocabularies offered by the add-car wizard and the filter keyboards.
type CatalogConfig struct {
	DataFile      string         `yaml:"data_file" envconfig:"CATALOG_DATA_FILE"`
	PhotosDir     string         `yaml:"photos_dir" envconfig:"CATALOG_PHOTOS_DIR"`
	Placeholder   string         `yaml:"placeholder"`
	Contacts      ContactsConfig `yaml:"contacts"`
	Brands        []string       `yaml:"brands"`
	BodyTypes     []string       `yaml:"body_types"`
	EngineTypes   []string       `yaml:"engine_types"`
	Transmissions []string       `yaml:"transmissions"`
	PriceBuckets  []PriceBucket  `yaml:"price_buckets"`
}

// Config aggregates the full bot configuration.
type Config struct {
	Telegram  TelegramConfig  `yaml:"telegram"`
	Webhook   WebhookConfig   `yaml:"webhook"`
	Logging   LoggingConfig   `yaml:"logging"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Admins    AdminsConfig    `yaml:"admins"`
	Catalog   CatalogConfig   `yaml:"catalog"`
}

// Load reads configuration from a YAML file and environment variables.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default vocabularies. Used when the config file leaves a list empty and as
// fallback choice lists when the inventory has no distinct values of its own.
var (
	DefaultBrands        = []string{"Toyota", "BMW", "Mercedes", "Audi", "Volkswagen", "Hyundai", "Kia", "Nissan"}
	DefaultBodyTypes     = []string{"Седан", "Внедорожник", "Хэтчбек", "Универсал", "Купе", "Минивэн", "Пикап"}
	DefaultEngineTypes   = []string{"Бензин", "Дизель", "Электро", "Гибрид"}
	DefaultTransmissions = []string{"Автомат", "Механика", "Вариатор", "Робот"}
	DefaultPriceBuckets  = []PriceBucket{
		{Label: "До 5000 BYN", Min: 0, Max: 5000},
		{Label: "5000 - 10000 BYN", Min: 5000, Max: 10000},
		{Label: "10000 - 20000 BYN", Min: 10000, Max: 20000},
		{Label: "20000 - 50000 BYN", Min: 20000, Max: 50000},
		{Label: "Свыше 50000 BYN", Min: 50000, Max: 0},
	}
)

// Normalize performs basic validation of required configuration fields and adjusts defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}

	if cfg.Telegram.Token == "" {
		return fmt.Errorf("telegram token is required")
	}

	rm := strings.ToLower(strings.TrimSpace(cfg.Telegram.RunMode))
	if rm == "" {
		rm = RunModeLongpoll
	}
	if rm == "polling" { // accept alias
		rm = RunModeLongpoll
	}
	switch rm {
	case RunModeWebhook:
		if strings.TrimSpace(cfg.Webhook.URL) == "" {
			return fmt.Errorf("webhook.url is required when telegram.run_mode is 'webhook'")
		}
		if strings.TrimSpace(cfg.Webhook.Listen) == "" {
			return fmt.Errorf("webhook.listen is required when telegram.run_mode is 'webhook'")
		}
		if cfg.Webhook.Port <= 0 {
			return fmt.Errorf("webhook.port must be > 0 when telegram.run_mode is 'webhook'")
		}
	case RunModeLongpoll:
		if cfg.Telegram.LongPollTimeoutSeconds < 0 {
			return fmt.Errorf("telegram.longpoll_timeout_seconds must be >= 0")
		}
	default:
		return fmt.Errorf("invalid telegram.run_mode %q; allowed: webhook, longpoll", cfg.Telegram.RunMode)
	}
	cfg.Telegram.RunMode = rm

	allowed := map[string]struct{}{
		UpdateCallback: {},
		UpdateMessage:  {},
	}
	for i, v := range cfg.RateLimit.ExcludeUpdates {
		key := strings.ToLower(strings.TrimSpace(v))
		if key == "" {
			continue
		}
		if _, ok := allowed[key]; !ok {
			return fmt.Errorf("invalid rate_limit.exclude_updates value %q; allowed: callback, message", v)
		}
		cfg.RateLimit.ExcludeUpdates[i] = key
	}

	if len(cfg.Admins.Allowlist) == 0 {
		return fmt.Errorf("admins.allowlist must not be empty")
	}

	if strings.TrimSpace(cfg.Catalog.DataFile) == "" {
		cfg.Catalog.DataFile = "data/cars.json"
	}
	if strings.TrimSpace(cfg.Catalog.PhotosDir) == "" {
		cfg.Catalog.PhotosDir = "data/photos"
	}
	if strings.TrimSpace(cfg.Catalog.Placeholder) == "" {
		cfg.Catalog.Placeholder = "placeholder.jpg"
	}
	if len(cfg.Catalog.Brands) == 0 {
		cfg.Catalog.Brands = append([]string(nil), DefaultBrands...)
	}
	if len(cfg.Catalog.BodyTypes) == 0 {
		cfg.Catalog.BodyTypes = append([]string(nil), DefaultBodyTypes...)
	}
	if len(cfg.Catalog.EngineTypes) == 0 {
		cfg.Catalog.EngineTypes = append([]string(nil), DefaultEngineTypes...)
	}
	if len(cfg.Catalog.Transmissions) == 0 {
		cfg.Catalog.Transmissions = append([]string(nil), DefaultTransmissions...)
	}
	if len(cfg.Catalog.PriceBuckets) == 0 {
		cfg.Catalog.PriceBuckets = append([]PriceBucket(nil), DefaultPriceBuckets...)
	}
	for _, b := range cfg.Catalog.PriceBuckets {
		if strings.TrimSpace(b.Label) == "" {
			return fmt.Errorf("catalog.price_buckets entries require a label")
		}
		if b.Max != 0 && b.Max <= b.Min {
			return fmt.Errorf("catalog.price_buckets %q: max must exceed min", b.Label)
		}
	}
	return nil
}

// Allowlist is the parsed admin allow-list: numeric ids plus lowercased
// handles without the leading '@' marker.
type Allowlist struct {
	ids     map[int64]struct{}
	handles map[string]struct{}
}

// ParseAllowlist builds an Allowlist from raw config entries. Entries that are
// neither numeric nor handle-like are skipped.
func ParseAllowlist(entries []string) Allowlist {
	al := Allowlist{
		ids:     make(map[int64]struct{}),
		handles: make(map[string]struct{}),
	}
	for _, raw := range entries {
		entry := strings.TrimSpace(raw)
		if entry == "" {
			continue
		}
		if strings.HasPrefix(entry, "@") {
			handle := strings.ToLower(strings.TrimPrefix(entry, "@"))
			if handle != "" {
				al.handles[handle] = struct{}{}
			}
			continue
		}
		if id, err := strconv.ParseInt(entry, 10, 64); err == nil {
			al.ids[id] = struct{}{}
		}
	}
	return al
}

// Contains reports whether the given identity is allow-listed, either by
// numeric id or by handle (case-insensitive, leading '@' ignored).
func (al Allowlist) Contains(userID int64, username string) bool {
	if _, ok := al.ids[userID]; ok {
		return true
	}
	if username == "" {
		return false
	}
	handle := strings.ToLower(strings.TrimPrefix(username, "@"))
	_, ok := al.handles[handle]
	return ok
}

// IDs returns the numeric identities of the allow-list in unspecified order.
// Handle entries cannot be messaged directly and are excluded.
func (al Allowlist) IDs() []int64 {
	out := make([]int64, 0, len(al.ids))
	for id := range al.ids {
		out = append(out, id)
	}
	return out
}
