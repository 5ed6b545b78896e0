package recurly

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextPageURI(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		expected string
	}{
		{"empty", "", ""},
		{"next only", `<https://acme.recurly.com/v2/invoices?cursor=2>; rel="next"`, "https://acme.recurly.com/v2/invoices?cursor=2"},
		{
			"start and next",
			`<https://acme.recurly.com/v2/invoices>; rel="start", <https://acme.recurly.com/v2/invoices?cursor=3&per_page=50>; rel="next"`,
			"https://acme.recurly.com/v2/invoices?cursor=3&per_page=50",
		},
		{"prev only", `<https://acme.recurly.com/v2/invoices?cursor=1>; rel="prev"`, ""},
		{"unquoted rel", `<https://acme.recurly.com/v2/x?cursor=9>; rel=next`, "https://acme.recurly.com/v2/x?cursor=9"},
		{"garbage", `not a link header`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, nextPageURI(tt.header))
		})
	}
}

func TestWithQuery(t *testing.T) {
	uri, err := withQuery("https://acme.recurly.com/v2/invoices", url.Values{"state": {"open"}}, 50)
	require.NoError(t, err)

	u, err := url.Parse(uri)
	require.NoError(t, err)
	assert.Equal(t, "open", u.Query().Get("state"))
	assert.Equal(t, "50", u.Query().Get("per_page"))

	// values already on the uri win
	uri, err = withQuery("https://acme.recurly.com/v2/invoices?per_page=10&state=paid", url.Values{"state": {"open"}}, 50)
	require.NoError(t, err)
	u, err = url.Parse(uri)
	require.NoError(t, err)
	assert.Equal(t, "10", u.Query().Get("per_page"))
	assert.Equal(t, "paid", u.Query().Get("state"))

	_, err = withQuery("://bad", nil, 50)
	assert.Error(t, err)
}
