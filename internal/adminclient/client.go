// Package adminclient is a headless client for the studio admin API. It
// holds the local list state an admin page keeps: server-seeded rows,
// unsaved edits, per-row in-flight tracking and the last notice.
package adminclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// AdminPrefix is where the admin collections live.
const AdminPrefix = "/api/v1/admin/"

// Client performs one attempt per call; timeouts are whatever HTTP carries.
type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

func New(baseURL, token string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{BaseURL: strings.TrimRight(baseURL, "/"), Token: token, HTTP: hc}
}

// APIError is a non-success answer: an HTTP error status or {ok:false}.
type APIError struct {
	Status  int
	Code    int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api error %d", e.Status)
}

// ItemResponse answers single-entity calls.
type ItemResponse[T any] struct {
	OK   bool `json:"ok"`
	Item T    `json:"item"`
}

type ListResponse[T any] struct {
	OK    bool `json:"ok"`
	Items []T  `json:"items"`
}

type AssignedResponse struct {
	OK       bool `json:"ok"`
	Assigned int  `json:"assigned"`
}

type errorBody struct {
	OK    *bool  `json:"ok"`
	Code  int    `json:"code"`
	Error string `json:"error"`
}

func Get[R any](ctx context.Context, c *Client, path string) (R, error) {
	return do[R](ctx, c, http.MethodGet, path, nil)
}

func Post[R any](ctx context.Context, c *Client, path string, body any) (R, error) {
	return do[R](ctx, c, http.MethodPost, path, body)
}

func Patch[R any](ctx context.Context, c *Client, path string, body any) (R, error) {
	return do[R](ctx, c, http.MethodPatch, path, body)
}

func Delete[R any](ctx context.Context, c *Client, path string) (R, error) {
	return do[R](ctx, c, http.MethodDelete, path, nil)
}

func do[R any](ctx context.Context, c *Client, method, path string, body any) (R, error) {
	var out R
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return out, err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.url(path), rd)
	if err != nil {
		return out, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return out, err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return out, err
	}

	var eb errorBody
	_ = json.Unmarshal(raw, &eb)
	if resp.StatusCode < 200 || resp.StatusCode > 299 || (eb.OK != nil && !*eb.OK) {
		return out, &APIError{Status: resp.StatusCode, Code: eb.Code, Message: eb.Error}
	}
	if len(raw) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return out, nil
}

// url resolves collection paths ("groups/3") under AdminPrefix; absolute
// paths ("/api/trial") are used as given.
func (c *Client) url(path string) string {
	if strings.HasPrefix(path, "/") {
		return c.BaseURL + path
	}
	return c.BaseURL + AdminPrefix + path
}

// Message converts err to the text shown to the admin.
func Message(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return GenericError
	}
	if err == nil || err.Error() == "" {
		return GenericError
	}
	return err.Error()
}
