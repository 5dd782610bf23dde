// Package config loads and validates kapwire configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Feed    FeedConfig    `mapstructure:"feed"`
	Render  RenderConfig  `mapstructure:"render"`
	State   StateConfig   `mapstructure:"state"`
	Post    PostConfig    `mapstructure:"post"`
	Poster  PosterConfig  `mapstructure:"poster"`
	Watch   WatchConfig   `mapstructure:"watch"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// FeedConfig describes the source feed and the extraction heuristics.
// Every extraction variant is expressed here rather than as code branches.
type FeedConfig struct {
	URL                string   `mapstructure:"url"`
	FilterTab          string   `mapstructure:"filter_tab"`
	Marker             string   `mapstructure:"marker"`
	CodeMinLen         int      `mapstructure:"code_min_len"`
	CodeMaxLen         int      `mapstructure:"code_max_len"`
	MaxCodes           int      `mapstructure:"max_codes"`
	BannedCodes        []string `mapstructure:"banned_codes"`
	MinContentLen      int      `mapstructure:"min_content_len"`
	BoilerplatePhrases []string `mapstructure:"boilerplate_phrases"`
	NonNewsPatterns    []string `mapstructure:"non_news_patterns"`
}

// RenderConfig controls how snapshots of the feed page are taken.
type RenderConfig struct {
	Provider          string `mapstructure:"provider"`
	RowSelector       string `mapstructure:"row_selector"`
	UserAgent         string `mapstructure:"user_agent"`
	Headless          bool   `mapstructure:"headless"`
	NavTimeoutSeconds int    `mapstructure:"nav_timeout_seconds"`
	SettleMillis      int    `mapstructure:"settle_millis"`
	DebugFile         string `mapstructure:"debug_file"`
	SnapshotFile      string `mapstructure:"snapshot_file"`
}

// StateConfig sets the path and bounds of the persisted state file.
type StateConfig struct {
	Path      string `mapstructure:"path"`
	MaxPosted int    `mapstructure:"max_posted"`
}

// PostConfig governs composition and the posting loop.
type PostConfig struct {
	PlatformLimit   int `mapstructure:"platform_limit"`
	MaxPerRun       int `mapstructure:"max_per_run"`
	CooldownMinutes int `mapstructure:"cooldown_minutes"`
	DelaySeconds    int `mapstructure:"delay_seconds"`
	RenderRetries   int `mapstructure:"render_retries"`
}

// PosterConfig holds the posting API credentials and endpoint.
// The four secrets are expected via environment (KAPWIRE_POSTER_API_KEY etc.)
// or a local .env file; when any is missing the bot degrades to simulation.
type PosterConfig struct {
	APIKey            string `mapstructure:"api_key"`
	APIKeySecret      string `mapstructure:"api_key_secret"`
	AccessToken       string `mapstructure:"access_token"`
	AccessTokenSecret string `mapstructure:"access_token_secret"`
	BaseURL           string `mapstructure:"base_url"`
	TimeoutSeconds    int    `mapstructure:"timeout_seconds"`
}

// WatchConfig configures the optional in-process scheduler.
type WatchConfig struct {
	Schedule string `mapstructure:"schedule"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("KAPWIRE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// The poster secrets deliberately have no defaults, and AutomaticEnv only
	// resolves keys viper already knows about. Without explicit bindings the
	// KAPWIRE_POSTER_* variables would never reach Unmarshal.
	for _, key := range []string{
		"poster.api_key",
		"poster.api_key_secret",
		"poster.access_token",
		"poster.access_token_secret",
	} {
		if err := v.BindEnv(key); err != nil {
			return Config{}, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("feed.url", "https://fintables.com/borsa-haber-akisi")
	v.SetDefault("feed.filter_tab", "Öne Çıkanlar")
	v.SetDefault("feed.marker", "KAP")
	v.SetDefault("feed.code_min_len", 3)
	v.SetDefault("feed.code_max_len", 6)
	v.SetDefault("feed.max_codes", 2)
	v.SetDefault("feed.banned_codes", []string{
		"AKIS", "ILE", "DUN", "BUGUN", "YER", "SAHIP", "ORTAKLARINDAN",
		"FINTABLES", "BULTEN", "GUNLUK", "ANALIST", "NOTLARI", "YAYINDA",
		"DAYANIKLI", "TUKETIM", "URUNLERI", "PIYASA", "RAPOR", "SEKTOR",
		"HABERLER", "INFO", "PAY", "HISSE", "KAP",
	})
	v.SetDefault("feed.min_content_len", 30)
	v.SetDefault("feed.boilerplate_phrases", []string{
		"yatırım tavsiyesi değildir",
		"yasal uyarı",
		"kişisel veri",
		"kvk",
		"saygılarımızla",
		"kamunun bilgisine",
	})
	v.SetDefault("feed.non_news_patterns", []string{
		`(?i)günlük bülten`,
		`(?i)analist notları`,
		`(?i)haber özeti`,
	})

	v.SetDefault("render.provider", "chromedp")
	v.SetDefault("render.row_selector", "main li, main article, main div")
	v.SetDefault("render.user_agent",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/118.0.0.0 Safari/537.36")
	v.SetDefault("render.headless", true)
	v.SetDefault("render.nav_timeout_seconds", 30)
	v.SetDefault("render.settle_millis", 1200)

	v.SetDefault("state.path", "state.json")
	v.SetDefault("state.max_posted", 5000)

	v.SetDefault("post.platform_limit", 280)
	v.SetDefault("post.max_per_run", 5)
	v.SetDefault("post.cooldown_minutes", 15)
	v.SetDefault("post.delay_seconds", 2)
	v.SetDefault("post.render_retries", 3)

	v.SetDefault("poster.base_url", "https://api.twitter.com")
	v.SetDefault("poster.timeout_seconds", 30)

	v.SetDefault("watch.schedule", "@every 5m")

	v.SetDefault("logging.development", false)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Feed.URL == "" {
		return fmt.Errorf("feed.url must be set")
	}
	if c.Feed.Marker == "" {
		return fmt.Errorf("feed.marker must be set")
	}
	if c.Feed.CodeMinLen <= 0 || c.Feed.CodeMaxLen < c.Feed.CodeMinLen {
		return fmt.Errorf("feed.code_min_len/code_max_len out of range")
	}
	if c.Feed.MaxCodes <= 0 {
		return fmt.Errorf("feed.max_codes must be > 0")
	}
	switch c.Render.Provider {
	case "chromedp", "static", "file":
	default:
		return fmt.Errorf("unknown render provider: %s", c.Render.Provider)
	}
	if c.Render.Provider == "file" && c.Render.SnapshotFile == "" {
		return fmt.Errorf("render.snapshot_file must be set for the file provider")
	}
	if c.State.Path == "" {
		return fmt.Errorf("state.path must be set")
	}
	if c.State.MaxPosted <= 0 {
		return fmt.Errorf("state.max_posted must be > 0")
	}
	if c.Post.PlatformLimit <= 0 {
		return fmt.Errorf("post.platform_limit must be > 0")
	}
	if c.Post.MaxPerRun <= 0 {
		return fmt.Errorf("post.max_per_run must be > 0")
	}
	if c.Post.CooldownMinutes <= 0 {
		return fmt.Errorf("post.cooldown_minutes must be > 0")
	}
	return nil
}

// NavTimeout converts the renderer timeout config into a duration.
func (c RenderConfig) NavTimeout() time.Duration {
	return time.Duration(c.NavTimeoutSeconds) * time.Second
}

// Settle is the pause applied after navigation and tab clicks.
func (c RenderConfig) Settle() time.Duration {
	return time.Duration(c.SettleMillis) * time.Millisecond
}

// Cooldown converts the cooldown config into a duration.
func (c PostConfig) Cooldown() time.Duration {
	return time.Duration(c.CooldownMinutes) * time.Minute
}

// Delay is the pause between consecutive successful posts.
func (c PostConfig) Delay() time.Duration {
	return time.Duration(c.DelaySeconds) * time.Second
}

// Timeout converts the poster HTTP timeout config into a duration.
func (c PosterConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Complete reports whether all four posting secrets are present.
func (c PosterConfig) Complete() bool {
	return c.APIKey != "" && c.APIKeySecret != "" &&
		c.AccessToken != "" && c.AccessTokenSecret != ""
}
