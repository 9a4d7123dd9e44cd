package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ROYA-Venture-Studio/taotter-api-sub000/logging"

	"github.com/sony/gobreaker"
)

// MailerClient sends lifecycle notifications to the external mailer.
// Sends are fire-and-forget: a failed send is logged and swallowed, it
// never blocks or rolls back the state transition that triggered it.
type MailerClient struct {
	BaseURL string
	Client  *http.Client
	Breaker *gobreaker.CircuitBreaker
}

func NewMailerClient(baseURL string, client *http.Client, breaker *gobreaker.CircuitBreaker) *MailerClient {
	return &MailerClient{
		BaseURL: baseURL,
		Client:  client,
		Breaker: breaker,
	}
}

type notificationRequest struct {
	To       string                 `json:"to"`
	Template string                 `json:"template"`
	Data     map[string]interface{} `json:"data"`
}

// Send posts one notification request. Never returns an error.
func (m *MailerClient) Send(to, template string, data map[string]interface{}) {
	if m == nil || m.BaseURL == "" {
		return
	}

	body, err := json.Marshal(notificationRequest{To: to, Template: template, Data: data})
	if err != nil {
		logging.Logger.Errorf("Event ID: NOTIFICATION_MARSHAL_FAILED, Description: Failed to marshal notification %s: %v", template, err)
		return
	}

	_, err = m.Breaker.Execute(func() (interface{}, error) {
		resp, err := m.Client.Post(fmt.Sprintf("%s/api/notifications", m.BaseURL), "application/json", bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 400 {
			return nil, fmt.Errorf("mailer responded with status %d", resp.StatusCode)
		}
		return nil, nil
	})
	if err != nil {
		logging.Logger.Errorf("Event ID: NOTIFICATION_SEND_FAILED, Description: Failed to send notification %s to %s: %v", template, to, err)
	}
}
