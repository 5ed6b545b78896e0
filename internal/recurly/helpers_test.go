package recurly

import (
	"testing"
	"time"

	"github.com/flexprice/recurly-client/internal/cache"
	"github.com/flexprice/recurly-client/internal/config"
	"github.com/flexprice/recurly-client/internal/httpclient"
	"github.com/flexprice/recurly-client/internal/logger"
)

const testBase = "https://acme.recurly.com/v2/"

func testConfig() *config.Configuration {
	cfg := config.GetDefaultConfig()
	cfg.Recurly.Subdomain = "acme"
	cfg.Recurly.APIKey = "test-key"
	cfg.Cache.Enabled = true
	cfg.Cache.PDFTTL = time.Minute
	return cfg
}

func newTestClient(t *testing.T, transport httpclient.Client) *Client {
	t.Helper()
	cfg := testConfig()
	return NewClient(cfg, transport, cache.NewInMemoryCache(cfg), logger.NewNopLogger())
}
