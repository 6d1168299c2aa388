package token

import (
	"fmt"
	"net/url"
)

// RealmURL appends the realm selector to the token endpoint,
// e.g. https://auth.example.org/oauth2/access_token?realm=/services.
func RealmURL(tokenURL, realm string) (string, error) {
	u, err := url.Parse(tokenURL)
	if err != nil {
		return "", fmt.Errorf("invalid token url: %w", err)
	}

	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid token url %q: scheme and host required", tokenURL)
	}

	q := u.Query()
	q.Set("realm", realm)
	u.RawQuery = q.Encode()

	return u.String(), nil
}
