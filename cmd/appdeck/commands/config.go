package commands

import (
	"appdeck/internal/catalog"
	"appdeck/internal/scrapers/playstore"
	"appdeck/pkg/configutil"
	"appdeck/pkg/migrations"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"
)

type CatalogConfig struct {
	DeveloperId string `json:"developer_id"`
	// Url takes precedence over the url derived from DeveloperId.
	Url            string `json:"url"`
	Language       string `json:"language"`
	Country        string `json:"country"`
	UserAgent      string `json:"user_agent"`
	AcceptLanguage string `json:"accept_language"`
	TimeoutSeconds int    `json:"timeout_seconds"`

	CallbackName     string `json:"callback_name"`
	Marker           string `json:"marker"`
	IdentifierPrefix string `json:"identifier_prefix"`
	IconPrefix       string `json:"icon_prefix"`
	DefaultIconUrl   string `json:"default_icon_url"`
	// NameIndex is a pointer so that an explicit 0 survives the defaults.
	NameIndex     *int `json:"name_index"`
	MaxNameLength int  `json:"max_name_length"`

	RetainPreviousMinutes int `json:"retain_previous_minutes"`
}

type HttpConfig struct {
	// RequestsPerSecond defaults to 1, a negative value disables the limit.
	RequestsPerSecond float64 `json:"requests_per_second"`
	BypassCloudflare  bool    `json:"bypass_cloudflare"`
}

type Config struct {
	Catalog   CatalogConfig     `json:"catalog"`
	Http      HttpConfig        `json:"http"`
	Favorites migrations.Config `json:"favorites"`
}

func defaultConfig() Config {
	nameIndex := playstore.DefaultNameIndex
	return Config{
		Catalog: CatalogConfig{
			Language:              "en",
			Country:               "us",
			UserAgent:             playstore.DefaultUserAgent,
			AcceptLanguage:        playstore.DefaultAcceptLanguage,
			TimeoutSeconds:        int(playstore.DefaultTimeout / time.Second),
			CallbackName:          playstore.DefaultCallbackName,
			Marker:                playstore.DefaultMarker,
			IdentifierPrefix:      playstore.DefaultIdentifierPrefix,
			IconPrefix:            playstore.DefaultIconPrefix,
			DefaultIconUrl:        playstore.DefaultIconUrl,
			NameIndex:             &nameIndex,
			MaxNameLength:         playstore.DefaultMaxNameLength,
			RetainPreviousMinutes: int(catalog.DefaultRetainPrevious / time.Minute),
		},
		Http: HttpConfig{
			RequestsPerSecond: 1,
		},
		Favorites: migrations.Config{
			File: "appdeck.db",
		},
	}
}

// readConfig reads the config at path with every missing field set to its
// default. A missing file is not an error.
func readConfig(path string) (Config, error) {
	cfg, err := configutil.ReadConfig[Config](path)
	if errors.Is(err, os.ErrNotExist) {
		slog.Warn("config not found, using defaults", "path", path)
	} else if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg, err = configutil.WithDefaults(cfg, defaultConfig())
	if err != nil {
		return Config{}, fmt.Errorf("apply config defaults: %w", err)
	}
	return cfg, nil
}

// targeting returns the config pointed at the page of developer, or at the
// configured page if developer is empty.
func (c Config) targeting(developer string) (Config, error) {
	if developer != "" {
		c.Catalog.DeveloperId = developer
		c.Catalog.Url = ""
	}
	if c.Catalog.Url == "" && c.Catalog.DeveloperId == "" {
		return Config{}, fmt.Errorf("neither catalog.developer_id nor catalog.url is configured, pass --developer")
	}
	return c, nil
}

func (c CatalogConfig) pageUrl() string {
	if c.Url != "" {
		return c.Url
	}
	return playstore.DeveloperPageUrl(c.DeveloperId, c.Language, c.Country)
}

func (c CatalogConfig) options() catalog.Options {
	retain := time.Duration(c.RetainPreviousMinutes) * time.Minute
	if c.RetainPreviousMinutes < 0 {
		retain = -1
	}
	return catalog.Options{
		Request: playstore.NewPageRequest(
			c.pageUrl(),
			c.UserAgent,
			c.AcceptLanguage,
			time.Duration(c.TimeoutSeconds)*time.Second,
		),
		CallbackName: c.CallbackName,
		Marker:       c.Marker,
		Reconstruct: playstore.ReconstructOptions{
			IdentifierPrefix: c.IdentifierPrefix,
			IconPrefix:       c.IconPrefix,
			DefaultIconUrl:   c.DefaultIconUrl,
			NameIndex:        c.NameIndex,
			MaxNameLength:    c.MaxNameLength,
		},
		RetainPrevious: retain,
	}
}
