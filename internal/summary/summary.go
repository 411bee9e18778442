// Package summary calls the external AI summarization relay. The relay
// is an opaque collaborator: one POST, no retries, and failures are
// classified so the UI can show a distinct message per failure mode.
package summary

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Kind classifies what went wrong with a summarization call.
type Kind int

const (
	KindConnectivity Kind = iota // request never got an HTTP response
	KindHTTP                     // non-2xx status from the relay
	KindRelay                    // relay answered 2xx but reported an error
)

// Error carries the failure class plus detail for the log line.
type Error struct {
	Kind   Kind
	Detail string
}

func (e *Error) Error() string {
	return fmt.Sprintf("summary: %s (%s)", e.UserMessage(), e.Detail)
}

// UserMessage is the inline text shown to the user. One message per
// failure class, matching how the relay call surfaces errors.
func (e *Error) UserMessage() string {
	switch e.Kind {
	case KindConnectivity:
		return "Não foi possível conectar ao serviço de resumo. Tente novamente."
	case KindHTTP:
		return "O serviço de resumo respondeu com erro. Tente novamente."
	default:
		return "O serviço de resumo não conseguiu gerar o resumo."
	}
}

// TaskLine is one task in the digest sent to the relay.
type TaskLine struct {
	Name      string `json:"name"`
	Status    string `json:"status"`
	Sector    string `json:"sector,omitempty"`
	DueDate   string `json:"due_date,omitempty"`
	Situation string `json:"situation,omitempty"`
}

// Request scopes the summary to a workspace/project and date range.
type Request struct {
	Workspace string     `json:"workspace"`
	Project   string     `json:"project,omitempty"`
	From      string     `json:"from"`
	To        string     `json:"to"`
	Tasks     []TaskLine `json:"tasks"`
}

type relayRequest struct {
	Model string  `json:"model,omitempty"`
	Input Request `json:"input"`
}

type relayResponse struct {
	Summary string `json:"summary"`
	Error   string `json:"error"`
}

type Client struct {
	Endpoint string
	APIKey   string
	Model    string
	HTTP     *http.Client
}

func NewClient(endpoint, apiKey, model string) *Client {
	return &Client{
		Endpoint: endpoint,
		APIKey:   apiKey,
		Model:    model,
		HTTP:     &http.Client{Timeout: 60 * time.Second},
	}
}

// Generate asks the relay for a free-text (possibly markdown) summary.
func (c *Client) Generate(ctx context.Context, req Request) (string, error) {
	body, err := json.Marshal(relayRequest{Model: c.Model, Input: req})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	hr, err := http.NewRequestWithContext(ctx, "POST", c.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	hr.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		hr.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.HTTP.Do(hr)
	if err != nil {
		return "", &Error{Kind: KindConnectivity, Detail: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", &Error{Kind: KindHTTP, Detail: fmt.Sprintf("status %d: %s", resp.StatusCode, b)}
	}

	var rr relayResponse
	if err := json.NewDecoder(resp.Body).Decode(&rr); err != nil {
		return "", &Error{Kind: KindRelay, Detail: "unparseable response: " + err.Error()}
	}
	if rr.Error != "" {
		return "", &Error{Kind: KindRelay, Detail: rr.Error}
	}
	return rr.Summary, nil
}
