package recurly

import (
	"net/url"
	"strings"

	"github.com/flexprice/recurly-client/internal/xmlcodec"
)

// ResolveActionURI picks where an action is sent. A server supplied action
// link wins; otherwise the path {endpoint}/{id}/{action} is built from the
// id. It returns "" when neither is available.
func ResolveActionURI(actions map[string]xmlcodec.Action, action, endpoint, id string) string {
	if a, ok := actions[action]; ok && a.Href != "" {
		return a.Href
	}
	if id == "" {
		return ""
	}
	return memberURI(endpoint, id) + "/" + action
}

// memberURI returns {endpoint}/{id}
func memberURI(endpoint, id string) string {
	return strings.TrimRight(endpoint, "/") + "/" + url.PathEscape(id)
}

// ResolveLinkURI returns the stored resource link, or fallback when unset
func ResolveLinkURI(links map[string]string, name, fallback string) string {
	if href := links[name]; href != "" {
		return href
	}
	return fallback
}
