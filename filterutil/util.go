// Package filterutil contains small helpers shared by the filtering
// packages.
package filterutil

import "strings"

// ExtractHostname quickly retrieves the hostname from a URL without parsing
// it fully.
func ExtractHostname(url string) string {
	if url == "" {
		return ""
	}

	start := strings.Index(url, "//")
	if start >= 0 {
		start += 2
	} else {
		// This is a non-hierarchical URL (e.g. stun: or turn:)
		// https://tools.ietf.org/html/rfc4395#section-2.2
		colon := strings.IndexByte(url, ':')
		if colon == -1 {
			return ""
		}

		start = colon + 1
	}

	rest := url[start:]
	end := strings.IndexAny(rest, "/:?")
	if end == -1 {
		end = len(rest)
	}

	return rest[:end]
}

// IsDomainName checks if the input string is a valid domain name:
//   - at least two dot-separated labels;
//   - each label is 1 to 63 characters of letters, digits and hyphens, and
//     doesn't start or end with a hyphen;
//   - the whole name is at most 253 characters;
//   - the TLD label is either letters only or an "xn--" punycode label.
func IsDomainName(name string) bool {
	if len(name) > 253 {
		return false
	}

	labels := strings.Split(name, ".")
	if len(labels) < 2 {
		return false
	}

	for _, label := range labels {
		if !isDomainLabel(label) {
			return false
		}
	}

	return isTLD(labels[len(labels)-1])
}

// isDomainLabel checks a single label of a domain name.
func isDomainLabel(label string) bool {
	if label == "" || len(label) > 63 {
		return false
	}

	if label[0] == '-' || label[len(label)-1] == '-' {
		return false
	}

	for i := 0; i < len(label); i++ {
		c := label[i]
		if !isAlpha(c) && !(c >= '0' && c <= '9') && c != '-' {
			return false
		}
	}

	return true
}

// isTLD checks the last label of a domain name.  RFC 952 top-level labels
// contain letters only; the other allowed form is a punycode label.
func isTLD(label string) bool {
	if strings.HasPrefix(label, "xn--") {
		return len(label) >= len("xn--wwww")
	}

	if len(label) < 2 {
		return false
	}

	for i := 0; i < len(label); i++ {
		if !isAlpha(label[i]) {
			return false
		}
	}

	return true
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
