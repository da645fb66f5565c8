// Package gifurl derives exercise animation URLs from catalog identifiers.
package gifurl

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"alcyxob/fitness-catalog/internal/domain"
)

// Mode selects which URL form gets stored on exercise records.
type Mode string

const (
	// ModeProxy points at this backend's image proxy and carries no credential.
	ModeProxy Mode = "proxy"
	// ModeDirect points straight at the catalog and embeds the API key.
	// Only for server-side consumers; never store it where a client can read it.
	ModeDirect Mode = "direct"
)

const (
	// DefaultImageEndpoint is the catalog's image endpoint.
	DefaultImageEndpoint = "https://exercisedb.p.rapidapi.com/image"
	// DefaultResolution is the largest resolution the catalog's free tier serves.
	DefaultResolution = 180
	// ProxyRoute is the path prefix of the image proxy route.
	ProxyRoute = "/api/gifs/exercise/"

	apiKeyParam = "rapidapi-key"
)

// ParseMode converts a configuration value into a Mode.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeProxy, ModeDirect:
		return m, nil
	}
	return "", fmt.Errorf("unknown gif mode %q (want %q or %q)", s, ModeProxy, ModeDirect)
}

// DirectURL builds the catalog image URL with the API key in the query string.
func DirectURL(catalogID string, resolution int, apiKey string) string {
	q := url.Values{}
	q.Set("exerciseId", catalogID)
	q.Set("resolution", strconv.Itoa(resolution))
	q.Set(apiKeyParam, apiKey)
	return DefaultImageEndpoint + "?" + q.Encode()
}

// ProxyURL builds the same-origin proxy URL for catalogID.
func ProxyURL(baseURL, catalogID string) string {
	return strings.TrimRight(baseURL, "/") + ProxyRoute + url.PathEscape(catalogID)
}

// HasCredential reports whether gifURL carries the catalog API key.
func HasCredential(gifURL string) bool {
	u, err := url.Parse(gifURL)
	if err != nil {
		return strings.Contains(gifURL, apiKeyParam+"=")
	}
	_, ok := u.Query()[apiKeyParam]
	return ok
}

// ClientURL returns the gifUrl that may be handed to an app. A stored URL carrying the
// API key is replaced by the proxy URL for catalogID, or dropped when there is no id.
// An empty proxyBaseURL yields a same-origin path.
func ClientURL(stored, proxyBaseURL, catalogID string) string {
	if !HasCredential(stored) {
		return stored
	}
	if catalogID == "" {
		return ""
	}
	return ProxyURL(proxyBaseURL, catalogID)
}

// unresolvedMarkers are fragments left behind when a URL was built from a missing id.
var unresolvedMarkers = []string{
	"exerciseId=null",
	"exerciseId=undefined",
	"exerciseId=&",
	ProxyRoute + "null",
	ProxyRoute + "undefined",
}

// HasUnresolvedID reports whether gifURL was built without a real catalog id.
func HasUnresolvedID(gifURL string) bool {
	if strings.HasSuffix(gifURL, "exerciseId=") || strings.HasSuffix(gifURL, ProxyRoute) {
		return true
	}
	for _, m := range unresolvedMarkers {
		if strings.Contains(gifURL, m) {
			return true
		}
	}
	return false
}

// Builder produces the expected gifUrl for the configured deployment mode.
type Builder struct {
	Mode         Mode
	ProxyBaseURL string
	Resolution   int
	APIKey       string
}

// URL returns the gifUrl a record linked to catalogID should carry.
func (b Builder) URL(catalogID string) string {
	if b.Mode == ModeDirect {
		res := b.Resolution
		if res <= 0 {
			res = DefaultResolution
		}
		return DirectURL(catalogID, res, b.APIKey)
	}
	return ProxyURL(b.ProxyBaseURL, catalogID)
}

// NeedsRepair reports whether ex has a catalog id but a gifUrl that is absent,
// built from an unresolved id, or stale for the current mode.
func (b Builder) NeedsRepair(ex domain.Exercise) bool {
	if !ex.HasCatalogID() {
		return false
	}
	if ex.GifURL == "" || HasUnresolvedID(ex.GifURL) {
		return true
	}
	return ex.GifURL != b.URL(ex.CatalogID)
}
