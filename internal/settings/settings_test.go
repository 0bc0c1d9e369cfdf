package settings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/multisafepay-gateway/internal/repository"
)

func newTestService(rows ...Row) *Service {
	return NewService(repository.NewMemory[Row](RowFields, rows...))
}

func TestService_Get_ChannelOverridesGlobal(t *testing.T) {
	svc := newTestService(
		Row{Key: KeyTimeActive, Value: "5"},
		Row{Key: KeyTimeActiveLabel, Value: UnitHours},
		Row{Key: KeyGoogleAnalyticsID, Value: "UA-global"},
		Row{SalesChannelID: "sc1", Key: KeyGoogleAnalyticsID, Value: "UA-sc1"},
		Row{SalesChannelID: "sc1", Key: KeyDebugMode, Value: "true"},
		Row{SalesChannelID: "sc2", Key: KeySecondChance, Value: "1"},
	)

	cfg, err := svc.Get(context.Background(), "sc1")
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.TimeActive)
	assert.Equal(t, UnitHours, cfg.TimeActiveLabel)
	assert.Equal(t, "UA-sc1", cfg.GoogleAnalyticsID)
	assert.True(t, cfg.DebugMode)
	assert.False(t, cfg.SecondChance, "other channel rows must not leak")

	global, err := svc.Get(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "UA-global", global.GoogleAnalyticsID)
}

func TestService_Get_Defaults(t *testing.T) {
	cfg, err := newTestService().Get(context.Background(), "unknown")
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestService_Get_Invalid(t *testing.T) {
	svc := newTestService(Row{Key: KeyEnvironment, Value: "staging"})
	_, err := svc.Get(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid settings")
}

func TestService_Get_UnknownTimeUnitMeansDays(t *testing.T) {
	for _, label := range []string{"4", "weeks", " 3 "} {
		svc := newTestService(Row{SalesChannelID: "sc1", Key: KeyTimeActiveLabel, Value: label})
		cfg, err := svc.Get(context.Background(), "sc1")
		require.NoError(t, err, label)
		assert.Equal(t, UnitDays, cfg.TimeActiveLabel, label)
	}

	cfg := FromValues(map[string]string{KeyTimeActiveLabel: " 1 "})
	assert.Equal(t, UnitMinutes, cfg.TimeActiveLabel)
}

func TestService_Set(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	require.NoError(t, svc.Set(ctx, "sc1", "generic3GatewayCode", " MYGATEWAY "))

	cfg, err := svc.Get(ctx, "sc1")
	require.NoError(t, err)
	assert.Equal(t, "MYGATEWAY", cfg.GenericGatewayCode("generic3"))
	assert.Empty(t, cfg.GenericGatewayCode("generic"))
}

func TestFromValues(t *testing.T) {
	cfg := FromValues(map[string]string{
		KeyTimeActive:        "abc",
		KeySecondChance:      "true",
		KeyShopRootURL:       "https://shop.example/",
		KeyEnvironment:       "LIVE",
		"genericGatewayCode": "GENERIC",
		"GatewayCode":        "ignored",
	})
	assert.Equal(t, 0, cfg.TimeActive)
	assert.True(t, cfg.SecondChance)
	assert.Equal(t, "https://shop.example", cfg.ShopRootURL)
	assert.Equal(t, "live", cfg.Environment)
	assert.Equal(t, map[string]string{"generic": "GENERIC"}, cfg.GenericGatewayCodes)
}
