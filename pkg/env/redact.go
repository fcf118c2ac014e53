package env

import (
	"net/url"
	"strings"
)

// RedactValue masks a secret, showing only the first 4 and last 4 characters.
func RedactValue(value string) string {
	if len(value) <= 8 {
		return strings.Repeat("*", len(value))
	}
	return value[:4] + strings.Repeat("*", len(value)-8) + value[len(value)-4:]
}

// RedactURL masks credentials in a URL string.
func RedactURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	if u.User != nil {
		password, hasPassword := u.User.Password()
		if hasPassword {
			u.User = url.UserPassword(u.User.Username(), RedactValue(password))
		}
	}
	return u.String()
}

var sensitiveMarkers = []string{
	"PASSWORD", "SECRET", "TOKEN", "API_KEY", "APIKEY", "CREDENTIAL",
}

// IsSensitive reports whether key names a secret.
func IsSensitive(key string) bool {
	upper := strings.ToUpper(key)
	for _, m := range sensitiveMarkers {
		if strings.Contains(upper, m) {
			return true
		}
	}
	return false
}

// RedactVars returns a copy of vars with secret values masked and
// credentials stripped from URL values.
func RedactVars(vars map[string]string) map[string]string {
	result := make(map[string]string, len(vars))
	for k, v := range vars {
		switch {
		case IsSensitive(k):
			result[k] = RedactValue(v)
		case strings.Contains(v, "://"):
			result[k] = RedactURL(v)
		default:
			result[k] = v
		}
	}
	return result
}
