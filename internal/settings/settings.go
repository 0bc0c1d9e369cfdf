// Package settings reads the per-sales-channel plugin configuration. Values are
// stored as key/value rows; rows with an empty sales channel id are global defaults
// and channel rows override them.
package settings

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/yourorg/multisafepay-gateway/internal/repository"
)

// Configuration keys.
const (
	KeyAPIKey             = "apiKey"
	KeyEnvironment        = "environment"
	KeyDebugMode          = "debugMode"
	KeyTimeActive         = "timeActive"
	KeyTimeActiveLabel    = "timeActiveLabel"
	KeyGoogleAnalyticsID  = "googleAnalytics"
	KeySecondChance       = "secondChance"
	KeyApplicationName    = "applicationName"
	KeyApplicationVersion = "applicationVersion"
	KeyPluginVersion      = "pluginVersion"
	KeyShopRootURL        = "shopRootUrl"

	// Generic gateway codes are stored as "<gateway>GatewayCode", e.g. "generic2GatewayCode".
	genericGatewaySuffix = "GatewayCode"
)

// Time-active unit labels as stored by the admin form.
const (
	UnitMinutes = "1"
	UnitHours   = "2"
	UnitDays    = "3"
)

// Row is one stored configuration value.
type Row struct {
	SalesChannelID string `db:"sales_channel_id" json:"sales_channel_id"`
	Key            string `db:"config_key" json:"key"`
	Value          string `db:"config_value" json:"value"`
}

// EntityID implements repository.Entity.
func (r Row) EntityID() string { return r.SalesChannelID + ":" + r.Key }

// RowFields exposes filterable fields for in-memory repositories.
func RowFields(r Row) map[string]string {
	return map[string]string{"sales_channel_id": r.SalesChannelID, "config_key": r.Key}
}

// Settings is the resolved configuration for one sales channel.
type Settings struct {
	APIKey              string
	Environment         string `validate:"oneof=live test"`
	DebugMode           bool
	TimeActive          int
	TimeActiveLabel     string
	GoogleAnalyticsID   string
	SecondChance        bool
	ApplicationName     string
	ApplicationVersion  string
	PluginVersion       string
	ShopRootURL         string `validate:"omitempty,url"`
	GenericGatewayCodes map[string]string
}

// GenericGatewayCode returns the configured gateway code for a generic gateway id.
func (s Settings) GenericGatewayCode(gateway string) string {
	if s.GenericGatewayCodes == nil {
		return ""
	}
	return strings.TrimSpace(s.GenericGatewayCodes[gateway])
}

// Defaults returns the values used when nothing is configured.
func Defaults() Settings {
	return Settings{
		Environment:     "test",
		TimeActiveLabel: UnitDays,
		ApplicationName: "Storefront",
	}
}

// Service resolves Settings from stored rows.
type Service struct {
	repo     repository.Repository[Row]
	validate *validator.Validate
}

// NewService creates a settings service on top of a row repository.
func NewService(repo repository.Repository[Row]) *Service {
	if repo == nil {
		panic("settings repository cannot be nil")
	}
	return &Service{repo: repo, validate: validator.New()}
}

// Get returns the settings for a sales channel, layering channel rows over globals.
func (s *Service) Get(ctx context.Context, salesChannelID string) (Settings, error) {
	values := make(map[string]string)

	global, err := s.repo.Search(ctx, repository.Criteria{}.AddFilter("sales_channel_id", ""))
	if err != nil {
		return Settings{}, fmt.Errorf("failed to load global settings: %w", err)
	}
	for _, row := range global.Entities {
		values[row.Key] = row.Value
	}

	if salesChannelID != "" {
		channel, err := s.repo.Search(ctx, repository.Criteria{}.AddFilter("sales_channel_id", salesChannelID))
		if err != nil {
			return Settings{}, fmt.Errorf("failed to load settings for sales channel %s: %w", salesChannelID, err)
		}
		for _, row := range channel.Entities {
			values[row.Key] = row.Value
		}
	}

	cfg := FromValues(values)
	if err := s.validate.Struct(cfg); err != nil {
		return Settings{}, fmt.Errorf("invalid settings for sales channel %q: %w", salesChannelID, err)
	}
	return cfg, nil
}

// Set stores a value for a sales channel (empty id for the global default).
func (s *Service) Set(ctx context.Context, salesChannelID, key, value string) error {
	return s.repo.Upsert(ctx, []Row{{SalesChannelID: salesChannelID, Key: key, Value: value}})
}

// FromValues parses raw key/value pairs. Unparsable numbers and booleans fall back
// to their zero value.
func FromValues(values map[string]string) Settings {
	cfg := Defaults()
	for key, raw := range values {
		value := strings.TrimSpace(raw)
		switch key {
		case KeyAPIKey:
			cfg.APIKey = value
		case KeyEnvironment:
			if value != "" {
				cfg.Environment = strings.ToLower(value)
			}
		case KeyDebugMode:
			cfg.DebugMode = parseBool(value)
		case KeyTimeActive:
			cfg.TimeActive, _ = strconv.Atoi(value)
		case KeyTimeActiveLabel:
			cfg.TimeActiveLabel = timeUnit(value)
		case KeyGoogleAnalyticsID:
			cfg.GoogleAnalyticsID = value
		case KeySecondChance:
			cfg.SecondChance = parseBool(value)
		case KeyApplicationName:
			if value != "" {
				cfg.ApplicationName = value
			}
		case KeyApplicationVersion:
			cfg.ApplicationVersion = value
		case KeyPluginVersion:
			cfg.PluginVersion = value
		case KeyShopRootURL:
			cfg.ShopRootURL = strings.TrimRight(value, "/")
		default:
			if gateway, ok := strings.CutSuffix(key, genericGatewaySuffix); ok && gateway != "" {
				if cfg.GenericGatewayCodes == nil {
					cfg.GenericGatewayCodes = make(map[string]string)
				}
				cfg.GenericGatewayCodes[gateway] = value
			}
		}
	}
	return cfg
}

func parseBool(s string) bool {
	v, err := strconv.ParseBool(s)
	return err == nil && v
}

// timeUnit maps a stored unit label onto minutes or hours. Anything else is days.
func timeUnit(label string) string {
	switch label = strings.TrimSpace(label); label {
	case UnitMinutes, UnitHours:
		return label
	default:
		return UnitDays
	}
}
