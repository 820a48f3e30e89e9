// Package config holds the deployment configuration for tilmeld-feeds.
//
// Configuration is loaded with viper from an optional YAML file, with
// TILMELD_-prefixed environment variables layered on top and compiled-in
// defaults underneath. The defaults reproduce the static provider,
// organization and contact blocks expected by downstream consumers of the
// XML schema, so a bare binary with no config file produces the same
// documents as the historical deployment.
package config

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full deployment configuration.
type Config struct {
	Output    OutputConfig    `mapstructure:"output"`
	Fetch     FetchConfig     `mapstructure:"fetch"`
	Discovery DiscoveryConfig `mapstructure:"discovery"`
	Feed      FeedConfig      `mapstructure:"feed"`
	Provider  Party           `mapstructure:"provider"`
	Org       Organization    `mapstructure:"organization"`
	Contact   Contact         `mapstructure:"contact"`
}

// OutputConfig controls where artifacts are written. StateDir holds the
// run-to-run snapshots; when empty it defaults to <dir>/.state.
type OutputConfig struct {
	Dir      string `mapstructure:"dir"`
	StateDir string `mapstructure:"state_dir"`
}

// FetchConfig tunes the HTTP fetch collaborator.
type FetchConfig struct {
	UserAgent  string        `mapstructure:"user_agent"`
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxRetries uint64        `mapstructure:"max_retries"`
}

// DiscoveryConfig tunes link discovery.
//
// EventPathPattern identifies which path segments mark a hyperlink as an
// event detail page. The numeric-segment default is a convention of the
// observed sites, not a protocol; deployments scraping sites with a
// different URL shape override it here.
type DiscoveryConfig struct {
	EventPathPattern string `mapstructure:"event_path_pattern"`

	pattern *regexp.Regexp
}

// FeedConfig carries feed-level branding.
type FeedConfig struct {
	Language            string `mapstructure:"language"`
	CombinedTitle       string `mapstructure:"combined_title"`
	CombinedLink        string `mapstructure:"combined_link"`
	CombinedDescription string `mapstructure:"combined_description"`
}

// Party is the static provider block of the XML schema.
type Party struct {
	Title   string `mapstructure:"title"`
	Address string `mapstructure:"address"`
	Zipcode string `mapstructure:"zipcode"`
	City    string `mapstructure:"city"`
	Email   string `mapstructure:"email"`
	Phone   string `mapstructure:"phone"`
	Website string `mapstructure:"website"`
}

// Organization is the static organization block attached to every event.
type Organization struct {
	ID          string `mapstructure:"id"`
	Title       string `mapstructure:"title"`
	Address     string `mapstructure:"address"`
	Zipcode     string `mapstructure:"zipcode"`
	City        string `mapstructure:"city"`
	Phone       string `mapstructure:"phone"`
	Country     string `mapstructure:"country"`
	URL         string `mapstructure:"url"`
	Description string `mapstructure:"description"`
	Email       string `mapstructure:"email"`
}

// Contact is the static contact_details block attached to every event.
type Contact struct {
	Name  string `mapstructure:"name"`
	Phone string `mapstructure:"phone"`
	Email string `mapstructure:"email"`
}

// DefaultConfig returns the compiled-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Output: OutputConfig{
			Dir: "out",
		},
		Fetch: FetchConfig{
			UserAgent:  "tilmeld-feeds/1.0 (+https://github.com/hautrelief/tilmeld-feeds)",
			Timeout:    20 * time.Second,
			MaxRetries: 3,
		},
		Discovery: DiscoveryConfig{
			EventPathPattern: `^\d+$`,
		},
		Feed: FeedConfig{
			Language:            "da-DK",
			CombinedTitle:       "Alle arrangementer",
			CombinedLink:        "https://www.nemtilmeld.dk",
			CombinedDescription: "Samlet oversigt over arrangementer fra alle kilder",
		},
		Provider: Party{
			Title:   "NemTilmeld Aps",
			Address: "Strømmen 6",
			Zipcode: "9400",
			City:    "Nørresundby",
			Email:   "info@nemtilmeld.dk",
			Phone:   "+45 70404070",
			Website: "https://www.nemtilmeld.dk",
		},
		Org: Organization{
			ID:      "16571",
			Title:   "Scleroseforeningens lokalafd. Bornholm",
			Address: "Kalbyvejen 13. Åkirkeby.",
			Zipcode: "3720",
			City:    "Åkirkeby",
			Phone:   "30450103",
			Country: "DK",
			Email:   "frivillig@scleroseforeningen.dk",
		},
		Contact: Contact{
			Name:  "Scleroseforeningens organisationskonsulent, Scleroseforeningens lokalafd. Bornholm",
			Phone: "36463646",
			Email: "frivillig@scleroseforeningen.dk",
		},
	}
}

// Load reads configuration from file and environment.
// Priority (highest to lowest): env vars > config file > defaults.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")

	setDefaults(v, cfg)

	v.SetEnvPrefix("TILMELD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("tilmeld-feeds")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && configPath != "" {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Missing config file is fine when none was named explicitly.
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.compile(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// compile validates derived values.
func (c *Config) compile() error {
	p, err := regexp.Compile(c.Discovery.EventPathPattern)
	if err != nil {
		return fmt.Errorf("invalid discovery.event_path_pattern: %w", err)
	}
	c.Discovery.pattern = p
	return nil
}

// EventPathRegexp returns the compiled event-path pattern, compiling the
// default lazily when Load was bypassed (tests, library use).
func (c *Config) EventPathRegexp() *regexp.Regexp {
	if c.Discovery.pattern == nil {
		c.Discovery.pattern = regexp.MustCompile(c.Discovery.EventPathPattern)
	}
	return c.Discovery.pattern
}

// setDefaults registers default values in viper.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("output.dir", cfg.Output.Dir)
	v.SetDefault("output.state_dir", cfg.Output.StateDir)

	v.SetDefault("fetch.user_agent", cfg.Fetch.UserAgent)
	v.SetDefault("fetch.timeout", cfg.Fetch.Timeout)
	v.SetDefault("fetch.max_retries", cfg.Fetch.MaxRetries)

	v.SetDefault("discovery.event_path_pattern", cfg.Discovery.EventPathPattern)

	v.SetDefault("feed.language", cfg.Feed.Language)
	v.SetDefault("feed.combined_title", cfg.Feed.CombinedTitle)
	v.SetDefault("feed.combined_link", cfg.Feed.CombinedLink)
	v.SetDefault("feed.combined_description", cfg.Feed.CombinedDescription)

	v.SetDefault("provider.title", cfg.Provider.Title)
	v.SetDefault("provider.address", cfg.Provider.Address)
	v.SetDefault("provider.zipcode", cfg.Provider.Zipcode)
	v.SetDefault("provider.city", cfg.Provider.City)
	v.SetDefault("provider.email", cfg.Provider.Email)
	v.SetDefault("provider.phone", cfg.Provider.Phone)
	v.SetDefault("provider.website", cfg.Provider.Website)

	v.SetDefault("organization.id", cfg.Org.ID)
	v.SetDefault("organization.title", cfg.Org.Title)
	v.SetDefault("organization.address", cfg.Org.Address)
	v.SetDefault("organization.zipcode", cfg.Org.Zipcode)
	v.SetDefault("organization.city", cfg.Org.City)
	v.SetDefault("organization.phone", cfg.Org.Phone)
	v.SetDefault("organization.country", cfg.Org.Country)
	v.SetDefault("organization.url", cfg.Org.URL)
	v.SetDefault("organization.description", cfg.Org.Description)
	v.SetDefault("organization.email", cfg.Org.Email)

	v.SetDefault("contact.name", cfg.Contact.Name)
	v.SetDefault("contact.phone", cfg.Contact.Phone)
	v.SetDefault("contact.email", cfg.Contact.Email)
}
