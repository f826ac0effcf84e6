// Package avatar resolves a profile image URL for an email address via
// Gravatar.  Resolution is strictly best-effort: every failure is reported
// to the caller as an error so signup can proceed without an avatar.
package avatar

import (
    "crypto/md5"
    "encoding/hex"
    "errors"
    "fmt"
    "net/http"
    "strings"
    "time"
)

const defaultBaseURL = "https://www.gravatar.com/avatar/"

// ErrNoAvatar is returned when Gravatar has no image for the address.
var ErrNoAvatar = errors.New("no avatar for email")

// Provider looks up avatar URLs.  The zero value is not usable; call New.
type Provider struct {
    baseURL string
    client  *http.Client
}

// New returns a Provider with a short request timeout so a slow avatar
// host can never stall account creation.
func New() *Provider {
    return &Provider{
        baseURL: defaultBaseURL,
        client:  &http.Client{Timeout: 3 * time.Second},
    }
}

// NewWithBaseURL is used by tests to point the provider at a stub server.
func NewWithBaseURL(base string, client *http.Client) *Provider {
    if client == nil {
        client = &http.Client{Timeout: 3 * time.Second}
    }
    return &Provider{baseURL: base, client: client}
}

// URLFor returns the Gravatar image URL for an email.  d=404 makes
// Gravatar answer 404 instead of a generated placeholder, which lets
// Resolve distinguish "has an avatar" from "does not".
func (p *Provider) URLFor(email string) string {
    normalized := strings.ToLower(strings.TrimSpace(email))
    sum := md5.Sum([]byte(normalized))
    return fmt.Sprintf("%s%s?d=404", p.baseURL, hex.EncodeToString(sum[:]))
}

// Resolve probes Gravatar for the email's image and returns its URL.
// Network failures and missing images both come back as errors; callers
// treat any error as "no avatar" and continue.
func (p *Provider) Resolve(email string) (string, error) {
    url := p.URLFor(email)
    resp, err := p.client.Head(url)
    if err != nil {
        return "", err
    }
    defer resp.Body.Close()
    if resp.StatusCode != http.StatusOK {
        return "", ErrNoAvatar
    }
    return url, nil
}
