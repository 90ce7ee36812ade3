package utils

import (
	"net/url"
	"strings"
)

// GetDomain extracts the host (with port) from a URL
func GetDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}

// IsSameDomain checks if two URLs have the same host
func IsSameDomain(url1, url2 string) bool {
	d := GetDomain(url1)
	return d != "" && strings.EqualFold(d, GetDomain(url2))
}

// IsHTTPURL checks if a URL uses HTTP or HTTPS scheme
func IsHTTPURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// JoinURL appends path elements to base. Each element may contain '/'
// separated segments; every segment is escaped on its own.
func JoinURL(base string, elems ...string) string {
	var b strings.Builder
	b.WriteString(strings.TrimRight(base, "/"))
	for _, elem := range elems {
		for _, seg := range strings.Split(elem, "/") {
			if seg == "" {
				continue
			}
			b.WriteByte('/')
			b.WriteString(url.PathEscape(seg))
		}
	}
	return b.String()
}

// WithQuery sets query parameters on rawURL, keeping any already present
func WithQuery(rawURL string, params map[string]string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String()
}
