package recurly

import (
	"testing"

	"github.com/flexprice/recurly-client/internal/xmlcodec"
	"github.com/stretchr/testify/assert"
)

func TestResolveActionURI(t *testing.T) {
	endpoint := "https://acme.recurly.com/v2/invoices"
	actions := map[string]xmlcodec.Action{
		"refund": {Name: "refund", Href: "https://acme.recurly.com/v2/invoices/1010/refund?x=1", Method: "POST"},
		"empty":  {Name: "empty"},
	}

	tests := []struct {
		name     string
		actions  map[string]xmlcodec.Action
		action   string
		id       string
		expected string
	}{
		{"action link wins over id", actions, "refund", "2020", "https://acme.recurly.com/v2/invoices/1010/refund?x=1"},
		{"fallback to id", nil, "refund", "1010", "https://acme.recurly.com/v2/invoices/1010/refund"},
		{"fallback mark_successful", actions, "mark_successful", "1010", "https://acme.recurly.com/v2/invoices/1010/mark_successful"},
		{"fallback mark_failed", nil, "mark_failed", "1010", "https://acme.recurly.com/v2/invoices/1010/mark_failed"},
		{"link without href is ignored", actions, "empty", "1010", "https://acme.recurly.com/v2/invoices/1010/empty"},
		{"nothing to resolve", nil, "refund", "", ""},
		{"id is escaped", nil, "refund", "FR 1", "https://acme.recurly.com/v2/invoices/FR%201/refund"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ResolveActionURI(tt.actions, tt.action, endpoint, tt.id))
		})
	}
}

func TestResolveActionURI_TrailingSlashEndpoint(t *testing.T) {
	assert.Equal(t,
		"https://acme.recurly.com/v2/invoices/1010/refund",
		ResolveActionURI(nil, "refund", "https://acme.recurly.com/v2/invoices/", "1010"))
}

func TestResolveLinkURI(t *testing.T) {
	links := map[string]string{"subscriptions": "https://acme.recurly.com/v2/invoices/1010/subscriptions"}
	assert.Equal(t, links["subscriptions"], ResolveLinkURI(links, "subscriptions", "fallback"))
	assert.Equal(t, "fallback", ResolveLinkURI(links, "account", "fallback"))
	assert.Equal(t, "fallback", ResolveLinkURI(nil, "account", "fallback"))
}
