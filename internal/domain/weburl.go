package domain

import (
	"net/url"
	"strings"
)

// IsValidWebURL reports whether s is blank or an http(s) address with a
// dotted host. Values without a scheme are checked as if prefixed by http://.
func IsValidWebURL(s string) bool {
	if strings.TrimSpace(s) == "" {
		return true
	}
	if u, err := url.Parse(s); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return validHost(u.Hostname())
	}
	if strings.Contains(s, "://") {
		return false
	}
	u, err := url.Parse("http://" + s)
	if err != nil {
		return false
	}
	return validHost(u.Hostname())
}

// validHost requires at least one dot and no empty labels.
func validHost(host string) bool {
	if !strings.Contains(host, ".") {
		return false
	}
	for _, label := range strings.Split(host, ".") {
		if label == "" {
			return false
		}
	}
	return true
}
