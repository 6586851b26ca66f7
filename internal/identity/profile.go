package identity

import (
	"net/http"
	"sort"
)

// Profile is a named, immutable set of request headers.
type Profile struct {
	name    string
	headers map[string]string
}

// NewProfile creates a profile. The headers map is copied and keys are
// canonicalized, so later changes by the caller have no effect.
func NewProfile(name string, headers map[string]string) Profile {
	copied := make(map[string]string, len(headers))
	for k, v := range headers {
		copied[http.CanonicalHeaderKey(k)] = v
	}
	return Profile{name: name, headers: copied}
}

// Name returns the profile name.
func (p Profile) Name() string {
	return p.name
}

// UserAgent returns the User-Agent header, or "" if the profile has none.
func (p Profile) UserAgent() string {
	return p.headers["User-Agent"]
}

// Header returns a fresh http.Header holding the profile headers.
func (p Profile) Header() http.Header {
	h := make(http.Header, len(p.headers))
	for k, v := range p.headers {
		h.Set(k, v)
	}
	return h
}

// Keys returns the header names in sorted order.
func (p Profile) Keys() []string {
	keys := make([]string, 0, len(p.headers))
	for k := range p.headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Apply sets every profile header on req, replacing existing values.
func (p Profile) Apply(req *http.Request) {
	for k, v := range p.headers {
		req.Header.Set(k, v)
	}
}

// DefaultProfiles returns the built-in browser profiles.
// They mimic desktop Chrome, Chromium and Firefox on Linux.
func DefaultProfiles() []Profile {
	return []Profile{
		NewProfile("chrome-23", map[string]string{
			"User-Agent":      "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.11 (KHTML, like Gecko) Chrome/23.0.1271.64 Safari/537.11",
			"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
			"Accept-Charset":  "ISO-8859-1,utf-8;q=0.7,*;q=0.3",
			"Accept-Encoding": "none",
			"Accept-Language": "en-US,en;q=0.8",
			"Connection":      "keep-alive",
		}),
		NewProfile("chrome-84", map[string]string{
			"Connection":                "keep-alive",
			"Upgrade-Insecure-Requests": "1",
			"User-Agent":                "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/84.0.4147.105 Safari/537.36",
			"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,image/apng,*/*;q=0.8,application/signed-exchange;v=b3;q=0.9",
			"Sec-Fetch-Site":            "none",
			"Sec-Fetch-Mode":            "navigate",
			"Sec-Fetch-Dest":            "document",
			"Accept-Language":           "en-GB,en;q=0.9,en-US;q=0.8",
		}),
		NewProfile("firefox-79", map[string]string{
			"User-Agent":                "Mozilla/5.0 (X11; Ubuntu; Linux x86_64; rv:79.0) Gecko/20100101 Firefox/79.0",
			"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
			"Accept-Language":           "en-GB,en;q=0.7,en-US;q=0.3",
			"DNT":                       "1",
			"Connection":                "keep-alive",
			"Upgrade-Insecure-Requests": "1",
		}),
		NewProfile("chromium-83", map[string]string{
			"Connection":                "keep-alive",
			"Upgrade-Insecure-Requests": "1",
			"User-Agent":                "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Ubuntu Chromium/83.0.4103.61 Chrome/83.0.4103.61 Safari/537.36",
			"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,image/apng,*/*;q=0.8,application/signed-exchange;v=b3;q=0.9",
			"Sec-Fetch-Site":            "none",
			"Sec-Fetch-Mode":            "navigate",
			"Sec-Fetch-User":            "?1",
			"Sec-Fetch-Dest":            "document",
			"Accept-Language":           "en-US,en;q=0.9,ja;q=0.8,my;q=0.7",
		}),
	}
}
