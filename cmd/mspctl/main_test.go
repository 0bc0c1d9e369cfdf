package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/multisafepay-gateway/internal/paymentmethod"
	"github.com/yourorg/multisafepay-gateway/internal/repository"
	"github.com/yourorg/multisafepay-gateway/internal/storage"
)

func useMemoryStores(t *testing.T) *storage.Stores {
	t.Helper()
	stores := storage.Memory()
	prev := openStores
	openStores = func(context.Context) (*storage.Stores, error) { return stores, nil }
	t.Cleanup(func() { openStores = prev })
	return stores
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestMethodsSync(t *testing.T) {
	stores := useMemoryStores(t)
	total := len(paymentmethod.DefaultRegistry().All())

	out, err := execute(t, "methods", "sync", "--batch")
	require.NoError(t, err)
	assert.Contains(t, out, "Installed")

	res, err := stores.PaymentMethods.Search(context.Background(), repository.Criteria{})
	require.NoError(t, err)
	assert.Equal(t, total, res.Total())
}

func TestMethodsList(t *testing.T) {
	useMemoryStores(t)
	_, err := execute(t, "methods", "sync")
	require.NoError(t, err)

	out, err := execute(t, "methods", "list", "--json")
	require.NoError(t, err)

	var rows []methodRow
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.NotEmpty(t, rows)
	for _, r := range rows {
		assert.True(t, r.Installed, r.ID)
	}

	out, err = execute(t, "methods", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "GATEWAY")
	assert.Contains(t, out, "IDEAL")
}

func TestMigrate(t *testing.T) {
	useMemoryStores(t)
	out, err := execute(t, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "up to date")

	_, err = execute(t, "migrate", "extra")
	require.Error(t, err)
}

func TestUnknownCommand(t *testing.T) {
	useMemoryStores(t)
	_, err := execute(t, "settings")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command")
}
