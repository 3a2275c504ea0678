package tracking

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"dealdesk/internal/domain/apperror"
)

// HTTPSink posts view events to the document service. The caller is
// either a signed-in principal (bearer token) or an anonymous viewer
// carrying a session token; either way a flush is one independent,
// fire-and-forget network call.
type HTTPSink struct {
	client       *http.Client
	baseURL      string
	bearerToken  string
	sessionToken string
}

func NewHTTPSink(baseURL, bearerToken, sessionToken string, timeout time.Duration) *HTTPSink {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPSink{
		client:       &http.Client{Timeout: timeout},
		baseURL:      baseURL,
		bearerToken:  bearerToken,
		sessionToken: sessionToken,
	}
}

type viewPayload struct {
	TimeSpent int    `json:"timeSpent"`
	Section   string `json:"section,omitempty"`
}

func (s *HTTPSink) RecordView(ctx context.Context, documentID, section string, timeSpentSeconds int) error {
	body, err := json.Marshal(viewPayload{TimeSpent: timeSpentSeconds, Section: section})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/api/v1/documents/%s/views", s.baseURL, documentID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.bearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+s.bearerToken)
	}
	if s.sessionToken != "" {
		req.Header.Set("X-Viewer-Session", s.sessionToken)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return apperror.Transient(err.Error())
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		return apperror.Transient(fmt.Sprintf("view flush rejected with status %d", resp.StatusCode))
	}
	return nil
}
