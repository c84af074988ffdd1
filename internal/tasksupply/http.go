package tasksupply

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/workdeck/planner/internal/apperr"
)

// HTTPSupply talks to the task store's internal HTTP API.
type HTTPSupply struct {
	baseURL string
	client  *http.Client
	timeout time.Duration
}

// NewHTTPSupply builds a client with a bounded per-call timeout.
func NewHTTPSupply(baseURL string, timeout time.Duration) *HTTPSupply {
	return &HTTPSupply{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
	}
}

func (s *HTTPSupply) ListEligible(ctx context.Context, userID, date string) ([]Task, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/internal/tasks/eligible?user=%s&date=%s",
		s.baseURL, url.QueryEscape(userID), url.QueryEscape(date))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, s.wrapTimeout(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("task supply returned status %d", resp.StatusCode)
	}

	var payload struct {
		Tasks []Task `json:"tasks"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode task supply response: %w", err)
	}
	return payload.Tasks, nil
}

func (s *HTTPSupply) MarkInProgress(ctx context.Context, taskID string) error {
	return s.postStatus(ctx, taskID, "in-progress", nil)
}

func (s *HTTPSupply) MarkDone(ctx context.Context, taskID string, actualMin int) error {
	return s.postStatus(ctx, taskID, "done", map[string]int{"actual_minutes": actualMin})
}

func (s *HTTPSupply) postStatus(ctx context.Context, taskID, action string, body interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	endpoint := fmt.Sprintf("%s/internal/tasks/%s/%s", s.baseURL, url.PathEscape(taskID), action)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return s.wrapTimeout(err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent:
		return nil
	case http.StatusNotFound:
		return &apperr.NotFoundError{Kind: "task", ID: taskID}
	default:
		return fmt.Errorf("task supply returned status %d", resp.StatusCode)
	}
}

func (s *HTTPSupply) wrapTimeout(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return &apperr.DependencyTimeoutError{Dependency: "task supply", Timeout: s.timeout, Err: err}
	}
	var ne interface{ Timeout() bool }
	if errors.As(err, &ne) && ne.Timeout() {
		return &apperr.DependencyTimeoutError{Dependency: "task supply", Timeout: s.timeout, Err: err}
	}
	return err
}
