// Package hostclass classifies origin hostnames for the federated sign-in
// policy gate. Hosting-provider preview domains (and anything that is not a
// loopback address) are not registered as authorized domains with the backend
// provider, so federated sign-in is never attempted from them.
package hostclass

import (
	"net"
	"strings"
)

// previewSuffixes are hosting-provider domains used for ephemeral deployment
// previews. They are matched as suffixes so "preview-123.vercel.app" counts.
var previewSuffixes = []string{
	".vercel.app",
	".netlify.app",
	".github.io",
	".vusercontent.net",
}

// IsPreview reports whether host is a preview environment: either a known
// hosting-provider preview domain, or any non-loopback host.
func IsPreview(host string) bool {
	host = strings.ToLower(stripPort(host))
	if host == "" {
		return false
	}

	for _, suffix := range previewSuffixes {
		if strings.HasSuffix(host, suffix) || host == suffix[1:] {
			return true
		}
	}

	return !IsLoopback(host)
}

// IsLoopback reports whether host refers to the local machine.
func IsLoopback(host string) bool {
	host = strings.ToLower(stripPort(host))
	if host == "localhost" {
		return true
	}
	if ip := net.ParseIP(host); ip != nil {
		return ip.IsLoopback()
	}
	return false
}

func stripPort(host string) string {
	h, _, err := net.SplitHostPort(host)
	if err != nil {
		return host
	}
	return h
}
