package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Page struct {
	Path       string
	ChangeFreq string
	Priority   string
}

type Config struct {
	Site struct {
		BaseURL     string
		Title       string
		Description string
		Categories  []string
		StaticPages []Page
	}
	API struct {
		BaseURL   string
		UserAgent string
	}
	Paths struct {
		Articles string
		Sitemap  string
		Robots   string
		Feed     string
	}
	Source struct {
		Kind string // cache, store or supabase
	}
	Database struct {
		Driver string
		URL    string
	}
	Supabase struct {
		URL string
		Key string
	}
	Redis struct {
		Addr     string
		Password string
		DB       int
	}
	Server struct {
		Port            int
		RefreshInterval string
	}
	Log struct {
		Level string
		Dir   string
	}
	Audit struct {
		Samples int
		Delay   string
	}
}

// LoadConfig reads config.yaml from . or ./config when present. Every key has
// a default, so a missing file is not an error.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("sitegen")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("site.baseurl", "https://www.renovaverde.com.br")
	v.SetDefault("site.title", "Renova Verde")
	v.SetDefault("site.description", "Artigos sobre sustentabilidade, jardinagem e energia renovável")

	v.SetDefault("api.baseurl", "https://www.renovaverde.com.br/api")
	v.SetDefault("api.useragent", "Renova Verde Sitemap Bot v1.0")

	v.SetDefault("paths.articles", "articles.json")
	v.SetDefault("paths.sitemap", "sitemap.xml")
	v.SetDefault("paths.robots", "")
	v.SetDefault("paths.feed", "")

	v.SetDefault("source.kind", "cache")

	v.SetDefault("database.driver", "sqlite3")
	v.SetDefault("database.url", "")

	// Unmarshal only sees keys viper knows, so secrets read from the
	// environment need a default too.
	v.SetDefault("supabase.url", "")
	v.SetDefault("supabase.key", "")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.refreshinterval", "24h")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.dir", "")

	v.SetDefault("audit.samples", 10)
	v.SetDefault("audit.delay", "1s")
}

func (c *Config) GetRefreshDuration() time.Duration {
	duration, err := time.ParseDuration(c.Server.RefreshInterval)
	if err != nil {
		return 24 * time.Hour
	}
	return duration
}

func (c *Config) GetAuditDelay() time.Duration {
	delay, err := time.ParseDuration(c.Audit.Delay)
	if err != nil {
		return time.Second
	}
	return delay
}
