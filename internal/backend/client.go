// Package backend is the HTTP client for the exam backing store. The wire
// format belongs to the backend; this package only consumes it.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"examseal/internal/domain"
)

// Client talks JSON over HTTP to the answer and session stores.
type Client struct {
	base string
	http *http.Client
}

// New returns a client for the backend at base. A nil httpClient falls back to
// http.DefaultClient.
func New(base string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{base: base, http: httpClient}
}

// SaveBatch persists all sealed answers of one submission atomically.
func (c *Client) SaveBatch(ctx context.Context, sessionID string, answers []domain.EncryptedAnswer) error {
	return c.post(ctx, "/sessions/"+url.PathEscape(sessionID)+"/answers", answers, nil)
}

// List returns the sealed answers the backend holds for the session.
func (c *Client) List(ctx context.Context, sessionID string) ([]domain.EncryptedAnswer, error) {
	var out []domain.EncryptedAnswer
	if err := c.getJSON(ctx, "/sessions/"+url.PathEscape(sessionID)+"/answers", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Has reports whether the backend already holds an answer for the question.
func (c *Client) Has(ctx context.Context, sessionID, questionID string) (bool, error) {
	path := "/sessions/" + url.PathEscape(sessionID) + "/answers/" + url.PathEscape(questionID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return false, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	case resp.StatusCode/100 == 2:
		return true, nil
	default:
		return false, fmt.Errorf("backend get %s: %s", path, resp.Status)
	}
}

// Update mirrors a session status transition to the backend and returns the
// backend's view of the session.
func (c *Client) Update(ctx context.Context, session domain.ExamSession) (domain.ExamSession, error) {
	var out domain.ExamSession
	if err := c.post(ctx, "/sessions/"+url.PathEscape(session.ID), session, &out); err != nil {
		return domain.ExamSession{}, err
	}
	return out, nil
}

// Ping probes the backend health endpoint; used by the network monitor.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/healthz", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("backend health: %s", resp.Status)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	buf := new(bytes.Buffer)
	if err := json.NewEncoder(buf).Encode(in); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("backend post %s: %s", path, resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("backend get %s: %s", path, resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Compile-time assertions against the store contracts.
var (
	_ domain.AnswerStore  = (*Client)(nil)
	_ domain.SessionStore = (*Client)(nil)
)
