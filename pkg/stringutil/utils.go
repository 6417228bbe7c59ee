// Package stringutil contains small string helpers shared across rcptcontact.
package stringutil

import (
	"net/mail"
	"strings"
)

// StringAddressList converts a list of addresses to a list of strings
func StringAddressList(addrs []*mail.Address) []string {
	s := make([]string, len(addrs))
	for i, a := range addrs {
		if a != nil {
			s[i] = a.String()
		}
	}
	return s
}

// SliceContains returns true if the provided slice contains the provided string.
func SliceContains(slice []string, s string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}

// MakePathPrefixer returns a func that will add the specified prefix (base) to request URIs.
// The returned prefixer will remove any double-slashes that may result.
func MakePathPrefixer(prefix string) func(string) string {
	if prefix != "" && !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	return func(uri string) string {
		return strings.ReplaceAll(prefix+uri, "//", "/")
	}
}
