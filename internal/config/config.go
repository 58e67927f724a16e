package config

import (
	"detectbot/internal/adapters/twitter"
	"detectbot/internal/core/domain"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// Config is read once at startup and passed by value to everything that needs it.
type Config struct {
	Credentials twitter.Credentials
	PredictURL  string

	LogLevel          zerolog.Level
	PollInterval      time.Duration
	DetectTimeout     time.Duration
	FallbackOnTimeout bool

	APIURL        string
	UploadURL     string
	MentionsCount int

	StorePath string

	MaxDimension int
	JPEGQuality  int

	MetricsListen string
}

var required = []string{
	"credentials.api_key",
	"credentials.api_key_secret",
	"credentials.access_token",
	"credentials.access_token_secret",
	"url.url_pred",
}

// New returns a viper instance that reads config.toml from the working directory, with DETECTBOT_ prefixed
// environment variables taking precedence.
func New() *viper.Viper {
	v := viper.New()
	v.AddConfigPath(".")
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.SetEnvPrefix("detectbot")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("bot.log_level", "info")
	v.SetDefault("bot.poll_interval", "30s")
	v.SetDefault("bot.detect_timeout", "60s")
	v.SetDefault("bot.fallback_on_timeout", true)
	v.SetDefault("platform.api_url", twitter.DefaultAPIURL)
	v.SetDefault("platform.upload_url", twitter.DefaultUploadURL)
	v.SetDefault("platform.mentions_count", twitter.DefaultMentionsCount)
	v.SetDefault("store.path", "detectbot.db")
	v.SetDefault("reply.max_dimension", 4096)
	v.SetDefault("reply.jpeg_quality", 90)
	v.SetDefault("metrics.listen", "")
}

// Load validates the values held by v. Any problem is reported as domain.ErrConfig.
func Load(v *viper.Viper) (Config, error) {
	var missing []string
	for _, key := range required {
		if strings.TrimSpace(v.GetString(key)) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("%w: missing keys %s", domain.ErrConfig, strings.Join(missing, ", "))
	}

	cfg := Config{
		Credentials: twitter.Credentials{
			APIKey:            v.GetString("credentials.api_key"),
			APIKeySecret:      v.GetString("credentials.api_key_secret"),
			AccessToken:       v.GetString("credentials.access_token"),
			AccessTokenSecret: v.GetString("credentials.access_token_secret"),
		},
		PredictURL:        v.GetString("url.url_pred"),
		LogLevel:          parseLogLevel(v.GetString("bot.log_level")),
		FallbackOnTimeout: v.GetBool("bot.fallback_on_timeout"),
		APIURL:            v.GetString("platform.api_url"),
		UploadURL:         v.GetString("platform.upload_url"),
		MentionsCount:     v.GetInt("platform.mentions_count"),
		StorePath:         v.GetString("store.path"),
		MaxDimension:      v.GetInt("reply.max_dimension"),
		JPEGQuality:       v.GetInt("reply.jpeg_quality"),
		MetricsListen:     v.GetString("metrics.listen"),
	}

	var err error
	cfg.PollInterval, err = parseDuration(v, "bot.poll_interval")
	if err != nil {
		return Config{}, err
	}

	cfg.DetectTimeout, err = parseDuration(v, "bot.detect_timeout")
	if err != nil {
		return Config{}, err
	}

	if cfg.StorePath == "" {
		return Config{}, fmt.Errorf("%w: store.path must not be empty", domain.ErrConfig)
	}

	return cfg, nil
}

func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	d, err := time.ParseDuration(v.GetString(key))
	if err != nil {
		return 0, fmt.Errorf("%w: invalid duration for %s: %w", domain.ErrConfig, key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: %s must be positive", domain.ErrConfig, key)
	}
	return d, nil
}

func parseLogLevel(level string) zerolog.Level {
	switch level {
	case "info":
		return zerolog.InfoLevel
	case "debug":
		return zerolog.DebugLevel
	default:
		return zerolog.InfoLevel
	}
}
