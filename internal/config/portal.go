package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// PortalConfig controls how client-facing magic-link URLs are built and how
// long each link type stays valid. Operators adjust these without a restart.
type PortalConfig struct {
	BaseURL string `mapstructure:"baseUrl"`
	// TTL per link type in hours; 0 means the link never expires.
	LinkTTLHours map[string]int `mapstructure:"linkTtlHours"`
	TokenLength  int            `mapstructure:"tokenLength"`
}

func DefaultPortalConfig() PortalConfig {
	return PortalConfig{
		BaseURL: "http://localhost:5173",
		LinkTTLHours: map[string]int{
			"PORTAL":       0,
			"SCHEDULE_C":   720,
			"SCHEDULE_E":   720,
			"DRAFT_RETURN": 168,
		},
		TokenLength: 32,
	}
}

// PortalConfigHolder serves the live portal config with hot reload.
type PortalConfigHolder struct {
	current atomic.Value // holds PortalConfig
}

func NewPortalConfigHolder() (*PortalConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("portal")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/taxdesk")
	v.AddConfigPath(".")

	v.SetEnvPrefix("TAXDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		defaults := DefaultPortalConfig()
		v.SetDefault("portal.baseUrl", defaults.BaseURL)
		v.SetDefault("portal.linkTtlHours", defaults.LinkTTLHours)
		v.SetDefault("portal.tokenLength", defaults.TokenLength)
	}

	var cfg PortalConfig
	if err := v.UnmarshalKey("portal", &cfg); err != nil {
		return nil, err
	}
	if err := validatePortalConfig(cfg); err != nil {
		return nil, err
	}

	holder := &PortalConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated PortalConfig
		if err := v.UnmarshalKey("portal", &updated); err != nil {
			log.Printf("[portal-config] reload failed: %v", err)
			return
		}
		if err := validatePortalConfig(updated); err != nil {
			log.Printf("[portal-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[portal-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticPortalConfigHolder wraps a fixed config without file watching.
func NewStaticPortalConfigHolder(cfg PortalConfig) *PortalConfigHolder {
	holder := &PortalConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *PortalConfigHolder) Get() PortalConfig {
	return h.current.Load().(PortalConfig)
}

func validatePortalConfig(cfg PortalConfig) error {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return errors.New("portal.baseUrl cannot be empty")
	}
	if cfg.TokenLength < 16 {
		return errors.New("portal.tokenLength must be at least 16")
	}
	return nil
}
