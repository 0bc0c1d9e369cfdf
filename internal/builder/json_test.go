package builder_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yourorg/multisafepay-gateway/internal/multisafepay"
)

func mustJSON(t *testing.T, req *multisafepay.OrderRequest) string {
	t.Helper()
	b, err := json.Marshal(req)
	require.NoError(t, err)
	return string(b)
}
