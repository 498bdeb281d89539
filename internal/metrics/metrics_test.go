package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteTextfile(t *testing.T) {
	r := New()
	r.Orders.WithLabelValues("PAPER", "placed").Inc()
	r.Resolutions.WithLabelValues("WIN").Add(2)
	r.Bankroll.Set(115.5)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.Orders.WithLabelValues("PAPER", "placed")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.Resolutions.WithLabelValues("WIN")))

	path := filepath.Join(t.TempDir(), "kalshibot.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.True(t, strings.Contains(out, `kalshibot_orders_total{mode="PAPER",result="placed"} 1`))
	assert.True(t, strings.Contains(out, "kalshibot_bankroll_usd 115.5"))
	assert.True(t, strings.Contains(out, "kalshibot_last_run_timestamp_seconds"))
}
