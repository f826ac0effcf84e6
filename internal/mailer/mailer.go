// Package mailer delivers transactional email through an HTTP send API
// (Mailtrap-compatible).  It is only ever invoked by the queue consumer,
// off the request path, so a slow or failing mail provider cannot affect
// API latency or signup success.
package mailer

import (
    "bytes"
    "encoding/json"
    "fmt"
    "net/http"
    "os"
    "time"
)

// Mailer sends confirmation emails via the provider's REST endpoint.
type Mailer struct {
    apiKey     string
    apiURL     string
    fromEmail  string
    fromName   string
    httpClient *http.Client
}

// New builds a Mailer from environment variables.  MAIL_API_KEY is the
// provider credential; the rest have development-friendly defaults.
func New() *Mailer {
    apiURL := os.Getenv("MAIL_API_URL")
    if apiURL == "" {
        apiURL = "https://send.api.mailtrap.io/api/send"
    }
    fromEmail := os.Getenv("MAIL_FROM_EMAIL")
    if fromEmail == "" {
        fromEmail = "noreply@example.com"
    }
    fromName := os.Getenv("MAIL_FROM_NAME")
    if fromName == "" {
        fromName = "Contacts API"
    }
    return &Mailer{
        apiKey:    os.Getenv("MAIL_API_KEY"),
        apiURL:    apiURL,
        fromEmail: fromEmail,
        fromName:  fromName,
        httpClient: &http.Client{
            Timeout: 10 * time.Second,
        },
    }
}

// NewWithEndpoint is used by tests to point the mailer at a stub server.
func NewWithEndpoint(apiURL string, client *http.Client) *Mailer {
    m := New()
    m.apiURL = apiURL
    if client != nil {
        m.httpClient = client
    }
    return m
}

// SendConfirmationEmail sends the account verification message.  The
// confirmation link embeds the email token issued at signup.
func (m *Mailer) SendConfirmationEmail(to, username, token, baseURL string) error {
    confirmURL := fmt.Sprintf("%sv1/auth/confirm/%s", baseURL, token)

    reqBody := map[string]interface{}{
        "from": map[string]string{
            "email": m.fromEmail,
            "name":  m.fromName,
        },
        "to": []map[string]string{
            {"email": to},
        },
        "subject": "Confirm your email",
        "text": fmt.Sprintf(
            "Hi %s,\n\nPlease confirm your email address by opening the link below:\n\n%s\n\nThe link is valid for 7 days.",
            username, confirmURL),
    }

    jsonData, err := json.Marshal(reqBody)
    if err != nil {
        return fmt.Errorf("marshaling email request: %w", err)
    }

    httpReq, err := http.NewRequest(http.MethodPost, m.apiURL, bytes.NewBuffer(jsonData))
    if err != nil {
        return fmt.Errorf("creating HTTP request: %w", err)
    }
    httpReq.Header.Set("Content-Type", "application/json")
    httpReq.Header.Set("Authorization", "Bearer "+m.apiKey)

    resp, err := m.httpClient.Do(httpReq)
    if err != nil {
        return fmt.Errorf("sending email request: %w", err)
    }
    defer resp.Body.Close()

    if resp.StatusCode != http.StatusOK {
        return fmt.Errorf("mail API returned status %d", resp.StatusCode)
    }
    return nil
}
