package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/esilogis/intervention-service/internal/model"
)

// Client posts intervention notifications to the notification-service
// (best-effort, never blocks the API path).
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient returns a client. With an empty baseURL all calls are no-ops.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// Payload is the body of POST /notify/intervention.
type Payload struct {
	InterventionID int64    `json:"intervention_id"`
	Event          string   `json:"event"`
	Description    string   `json:"description"`
	Status         string   `json:"status"`
	Priority       string   `json:"priority"`
	AssigneeEmails []string `json:"assignee_emails,omitempty"`
}

// NotifyIntervention posts one notification. Errors are logged and dropped.
func (c *Client) NotifyIntervention(ctx context.Context, event string, iv *model.Intervention) {
	if c.baseURL == "" || iv == nil {
		return
	}
	payload := Payload{
		InterventionID: int64(iv.ID),
		Event:          event,
		Description:    iv.Description,
		Status:         string(iv.Status),
		Priority:       string(iv.Priority),
	}
	for _, p := range iv.Assignees {
		if p.Email != "" {
			payload.AssigneeEmails = append(payload.AssigneeEmails, p.Email)
		}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("notify: marshal: %v", err)
		return
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/notify/intervention", bytes.NewReader(body))
	if err != nil {
		log.Printf("notify: new request: %v", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("notify: request: %v", err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Printf("notify: status %d for intervention %d", resp.StatusCode, iv.ID)
	}
}

// NotifyInterventionAsync runs NotifyIntervention in a goroutine with a detached
// timeout, so delivery survives request cancellation.
func (c *Client) NotifyInterventionAsync(event string, iv *model.Intervention) {
	if c.baseURL == "" {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		c.NotifyIntervention(ctx, event, iv)
	}()
}
