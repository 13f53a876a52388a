// Package remote is the HTTP client for the CrewDesk document API: schools,
// time-off requests, PTO balances, shifts and yearbook checklists. It is a
// thin CRUD wrapper; domain rules live on the server and in the services
// layer.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/crewdesk-app/crewdesk/internal/client/models"
	"github.com/crewdesk-app/crewdesk/internal/common"
)

// Client talks to the CrewDesk backend with an opaque session token. The
// zero value is not usable; construct with New.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func New(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// ListSchools returns all schools visible to the current user.
func (c *Client) ListSchools(ctx context.Context) ([]models.School, error) {
	var resp struct {
		Schools []models.School `json:"schools"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/schools", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Schools, nil
}

// GetSchool returns one school by id.
func (c *Client) GetSchool(ctx context.Context, id string) (models.School, error) {
	var resp struct {
		School models.School `json:"school"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/schools/"+url.PathEscape(id), nil, &resp); err != nil {
		return models.School{}, err
	}
	return resp.School, nil
}

// ListTimeOff returns the employee's time-off requests, newest first.
func (c *Client) ListTimeOff(ctx context.Context, employeeID string) ([]models.TimeOffRequest, error) {
	var resp struct {
		Requests []models.TimeOffRequest `json:"requests"`
	}
	path := "/api/timeoff?employee_id=" + url.QueryEscape(employeeID)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Requests, nil
}

// CreateTimeOff submits a new request and returns it with server-assigned
// id and pending status.
func (c *Client) CreateTimeOff(ctx context.Context, req models.TimeOffRequest) (models.TimeOffRequest, error) {
	var resp struct {
		Request models.TimeOffRequest `json:"request"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/timeoff", req, &resp); err != nil {
		return models.TimeOffRequest{}, err
	}
	return resp.Request, nil
}

// CancelTimeOff cancels a pending request.
func (c *Client) CancelTimeOff(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/api/timeoff/"+url.PathEscape(id)+"/cancel", nil, nil)
}

// PTOBalance returns the employee's current paid-time-off balance.
func (c *Client) PTOBalance(ctx context.Context, employeeID string) (models.PTOBalance, error) {
	var resp struct {
		Balance models.PTOBalance `json:"balance"`
	}
	path := "/api/pto/balance?employee_id=" + url.QueryEscape(employeeID)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return models.PTOBalance{}, err
	}
	return resp.Balance, nil
}

// ListShifts returns the employee's shifts overlapping the given day.
func (c *Client) ListShifts(ctx context.Context, employeeID string, day time.Time) ([]models.Shift, error) {
	var resp struct {
		Shifts []models.Shift `json:"shifts"`
	}
	q := url.Values{}
	q.Set("employee_id", employeeID)
	q.Set("day", day.Format("2006-01-02"))
	if err := c.do(ctx, http.MethodGet, "/api/shifts?"+q.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Shifts, nil
}

// ClockIn records a clock-in punch on the shift.
func (c *Client) ClockIn(ctx context.Context, shiftID string) (models.Shift, error) {
	return c.punch(ctx, shiftID, "clock-in")
}

// ClockOut records a clock-out punch on the shift.
func (c *Client) ClockOut(ctx context.Context, shiftID string) (models.Shift, error) {
	return c.punch(ctx, shiftID, "clock-out")
}

func (c *Client) punch(ctx context.Context, shiftID, action string) (models.Shift, error) {
	var resp struct {
		Shift models.Shift `json:"shift"`
	}
	path := "/api/shifts/" + url.PathEscape(shiftID) + "/" + action
	if err := c.do(ctx, http.MethodPost, path, nil, &resp); err != nil {
		return models.Shift{}, err
	}
	return resp.Shift, nil
}

// ListChecklist returns the yearbook checklist for a school.
func (c *Client) ListChecklist(ctx context.Context, schoolID string) ([]models.ChecklistEntry, error) {
	var resp struct {
		Entries []models.ChecklistEntry `json:"entries"`
	}
	path := "/api/schools/" + url.PathEscape(schoolID) + "/checklist"
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Entries, nil
}

// SetChecklistDone marks a checklist entry done or not done.
func (c *Client) SetChecklistDone(ctx context.Context, entryID string, done bool) (models.ChecklistEntry, error) {
	body := struct {
		Done bool `json:"done"`
	}{Done: done}
	var resp struct {
		Entry models.ChecklistEntry `json:"entry"`
	}
	path := "/api/checklist/" + url.PathEscape(entryID)
	if err := c.do(ctx, http.MethodPatch, path, body, &resp); err != nil {
		return models.ChecklistEntry{}, err
	}
	return resp.Entry, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var reqBody io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(common.AccessTokenHeaderName, c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return common.ErrNotAuthenticated
	case resp.StatusCode == http.StatusNotFound:
		return common.ErrNotFound
	case resp.StatusCode == http.StatusConflict:
		return common.ErrAlreadyExists
	case resp.StatusCode == http.StatusUnprocessableEntity:
		return common.ErrValidation
	case resp.StatusCode >= 400:
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s: %s: %s", method, path, resp.Status, string(b))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
