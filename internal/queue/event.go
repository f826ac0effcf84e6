// Package queue defines message payloads exchanged over the message broker.
package queue

// ConfirmationQueueName is the durable queue carrying signup confirmation
// email requests.
const ConfirmationQueueName = "email.confirmation"

// ConfirmationEmailEvent is published when a user signs up or re-requests
// a confirmation email.  It carries everything the mail consumer needs to
// build and send the message without querying the primary database.
type ConfirmationEmailEvent struct {
    Email    string `json:"email"`
    Username string `json:"username"`
    Token    string `json:"token"`
    BaseURL  string `json:"base_url"`
}
