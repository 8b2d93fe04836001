package log

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaskValue replaces redacted values.
const MaskValue = "***REDACTED***"

// DefaultMaxValueLen is the longest string value logged verbatim. Longer
// values, such as page HTML passed to scan-html, are clipped.
const DefaultMaxValueLen = 256

// secretKeywords mark an attribute key as secret when the lowercased key
// contains any of them. A bare "key" is not listed so rule and config keys
// are still logged.
var secretKeywords = []string{
	"password", "passwd", "secret", "token", "auth",
	"credential", "private", "cookie", "session", "api_key", "apikey", "api-key",
}

// secretValues match values that are credentials whatever their key.
var secretValues = []*regexp.Regexp{
	regexp.MustCompile(`^eyJ[A-Za-z0-9_-]*\.eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]*$`), // JWT
	regexp.MustCompile(`(?i)^(bearer|basic)\s+\S+$`),
	regexp.MustCompile(`^AKIA[0-9A-Z]{16}$`),
	regexp.MustCompile(`(?i)-----BEGIN.*(PRIVATE|SECRET).*KEY-----`),
}

// secretQueryParams are URL query parameters whose values are masked.
// Scan targets are often preview or staging links carrying access tokens.
var secretQueryParams = []string{
	"token", "access_token", "auth", "key", "api_key", "apikey",
	"sig", "signature", "password", "secret", "session", "sid", "code",
}

// redactor decides how a string attribute is written.
type redactor struct {
	maxLen int
}

// secretKey reports whether the attribute key names a secret.
func (redactor) secretKey(key string) bool {
	key = strings.ToLower(key)
	for _, kw := range secretKeywords {
		if strings.Contains(key, kw) {
			return true
		}
	}
	return false
}

// value returns the loggable form of s.
func (r redactor) value(s string) string {
	for _, re := range secretValues {
		if re.MatchString(s) {
			return MaskValue
		}
	}
	if sanitized, ok := sanitizeURL(s); ok {
		s = sanitized
	}
	return r.clip(s)
}

// clip shortens s to maxLen bytes without splitting a UTF-8 sequence.
func (r redactor) clip(s string) string {
	if r.maxLen <= 0 || len(s) <= r.maxLen {
		return s
	}
	cut := r.maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return fmt.Sprintf("%s...(%d bytes clipped)", s[:cut], len(s)-cut)
}

// sanitizeURL masks the userinfo and secret query values of an absolute
// URL. It reports false when s is not such a URL or needs no change.
func sanitizeURL(s string) (string, bool) {
	if !strings.Contains(s, "://") || strings.ContainsAny(s, " \n\t<") {
		return "", false
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return "", false
	}

	changed := false
	if u.User != nil {
		u.User = url.User("REDACTED")
		changed = true
	}

	if u.RawQuery != "" {
		query := u.Query()
		for name := range query {
			if isSecretParam(name) {
				query.Set(name, "REDACTED")
				changed = true
			}
		}
		if changed {
			u.RawQuery = query.Encode()
		}
	}

	if !changed {
		return "", false
	}
	return u.String(), true
}

func isSecretParam(name string) bool {
	name = strings.ToLower(name)
	for _, p := range secretQueryParams {
		if name == p {
			return true
		}
	}
	return false
}
