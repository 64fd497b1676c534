// Package api implements the REST client for the study-planner
// backend. All hierarchy and plan data is read-only from the client's
// perspective; the only writes are the login, the estimate-refresh
// trigger and the LMS re-parse trigger.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/avelichko/semestra/internal/domain"
)

// TokenSource supplies the bearer credential for authenticated calls.
// An empty token with a nil error means "not signed in".
type TokenSource interface {
	Token() (string, error)
}

// PlanQuery holds the study-plan request parameters.
type PlanQuery struct {
	SemesterKey     string
	IgnoreCompleted bool

	// DailyHours is included only when positive; zero means "let the
	// server pick its default".
	DailyHours int

	// CustomStart, when non-nil, bounds the first planned day.
	CustomStart *time.Time
}

// Client is the backend contract the rest of the program depends on.
type Client interface {
	Semesters(ctx context.Context) ([]domain.Semester, error)
	Subjects(ctx context.Context, semesterID string) ([]domain.Subject, error)
	Tasks(ctx context.Context, subjectID int64) ([]domain.Task, error)
	RefreshEstimates(ctx context.Context, semesterKey string) ([]domain.TaskEstimate, error)
	StudyPlan(ctx context.Context, q PlanQuery) (*domain.StudyPlan, error)
	InitiateParsing(ctx context.Context) error
	Login(ctx context.Context, email, password string) (string, error)
}

type restClient struct {
	cfg      Config
	tokens   TokenSource
	http     *http.Client
	observer Observer
}

// NewClient creates a Client against cfg.Endpoint. A nil observer
// disables call logging.
func NewClient(cfg Config, tokens TokenSource, observer Observer) Client {
	if observer == nil {
		observer = NoopObserver{}
	}
	return &restClient{
		cfg:    cfg,
		tokens: tokens,
		http: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 5 * time.Second,
				}).DialContext,
			},
		},
		observer: observer,
	}
}

func (c *restClient) Semesters(ctx context.Context) ([]domain.Semester, error) {
	var wire []semesterWire
	if err := c.getJSON(ctx, "semesters", "/api/semesters", nil, &wire); err != nil {
		return nil, err
	}
	out := make([]domain.Semester, len(wire))
	for i, w := range wire {
		out[i] = w.toDomain()
	}
	return out, nil
}

func (c *restClient) Subjects(ctx context.Context, semesterID string) ([]domain.Subject, error) {
	path := "/api/semesters/" + url.PathEscape(semesterID) + "/subjects"
	var wire []subjectWire
	if err := c.getJSON(ctx, "subjects", path, nil, &wire); err != nil {
		return nil, err
	}
	out := make([]domain.Subject, len(wire))
	for i, w := range wire {
		out[i] = w.toDomain()
	}
	return out, nil
}

func (c *restClient) Tasks(ctx context.Context, subjectID int64) ([]domain.Task, error) {
	path := fmt.Sprintf("/api/subjects/%d/tasks", subjectID)
	var wire []taskWire
	if err := c.getJSON(ctx, "tasks", path, nil, &wire); err != nil {
		return nil, err
	}
	out := make([]domain.Task, len(wire))
	for i, w := range wire {
		out[i] = w.toDomain()
	}
	return out, nil
}

func (c *restClient) RefreshEstimates(ctx context.Context, semesterKey string) ([]domain.TaskEstimate, error) {
	query := url.Values{"date": {semesterKey}}
	var wire []estimateWire
	if err := c.doJSON(ctx, "refresh-estimates", http.MethodPost,
		"/api/tasks/time-estimate/semester/refresh", query, nil, &wire); err != nil {
		return nil, err
	}
	out := make([]domain.TaskEstimate, len(wire))
	for i, w := range wire {
		out[i] = w.toDomain()
	}
	return out, nil
}

func (c *restClient) StudyPlan(ctx context.Context, q PlanQuery) (*domain.StudyPlan, error) {
	query := url.Values{
		"requestDate":     {q.SemesterKey},
		"ignoreCompleted": {strconv.FormatBool(q.IgnoreCompleted)},
	}
	if q.DailyHours > 0 {
		query.Set("dailyHours", strconv.Itoa(q.DailyHours))
	}
	if q.CustomStart != nil {
		query.Set("customPlanStartDate", q.CustomStart.Format("2006-01-02"))
	}

	var wire studyPlanWire
	if err := c.getJSON(ctx, "study-plan", "/api/tasks/time-estimate/study-plan/semester", query, &wire); err != nil {
		return nil, err
	}
	return wire.toDomain()
}

func (c *restClient) InitiateParsing(ctx context.Context) error {
	// Body shape varies across backend versions; any 2xx is a success.
	return c.doJSON(ctx, "initiate-parsing", http.MethodPost, "/api/user/initiate-parsing", nil, nil, nil)
}

func (c *restClient) Login(ctx context.Context, email, password string) (string, error) {
	body, err := json.Marshal(loginRequestWire{Email: email, Password: password})
	if err != nil {
		return "", fmt.Errorf("marshaling login request: %w", err)
	}

	start := time.Now()
	status, respBody, err := c.roundTrip(ctx, http.MethodPost, "/api/auth/login", nil, body, false)
	c.observe("login", start, status, err)
	if err != nil {
		return "", err
	}

	var resp loginResponseWire
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return "", fmt.Errorf("decoding login response: %w", err)
	}
	if resp.Token == "" {
		return "", fmt.Errorf("login response carried no token")
	}
	return resp.Token, nil
}

// ── transport ────────────────────────────────────────────────────────

func (c *restClient) getJSON(ctx context.Context, op, path string, query url.Values, out any) error {
	return c.doJSON(ctx, op, http.MethodGet, path, query, nil, out)
}

// doJSON performs an authenticated request and decodes the response
// into out. A nil out tolerates any 2xx body; a non-nil out treats an
// undecodable body as an error, since the operation needs the data.
func (c *restClient) doJSON(ctx context.Context, op, method, path string, query url.Values, body []byte, out any) error {
	start := time.Now()
	status, respBody, err := c.roundTrip(ctx, method, path, query, body, true)
	c.observe(op, start, status, err)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decoding %s response: %w", op, err)
	}
	return nil
}

// roundTrip issues the request with retries. Transport-level failures
// and 5xx responses retry up to MaxRetries extra attempts; context
// cancellation and 4xx responses do not.
func (c *restClient) roundTrip(ctx context.Context, method, path string, query url.Values, body []byte, authed bool) (int, []byte, error) {
	var token string
	if authed {
		var err error
		token, err = c.tokens.Token()
		if err != nil {
			return 0, nil, fmt.Errorf("loading credential: %w", err)
		}
		if token == "" {
			return 0, nil, ErrNoCredential
		}
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(c.cfg.TimeoutMs)*time.Millisecond)
	defer cancel()

	reqURL := c.cfg.Endpoint + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var lastErr error
	attempts := 1 + c.cfg.MaxRetries
	for i := 0; i < attempts; i++ {
		status, respBody, err := c.doOnce(ctx, method, reqURL, body, token)
		if err == nil {
			return status, respBody, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			break
		}
		if errors.Is(err, ErrUnauthorized) {
			return status, nil, err
		}
		var se *StatusError
		if errors.As(err, &se) && se.StatusCode < 500 {
			return status, nil, err
		}
	}

	if ctx.Err() != nil {
		return 0, nil, ErrTimeout
	}
	if isConnectionError(lastErr) {
		return 0, nil, ErrBackendUnavailable
	}
	var se *StatusError
	if errors.As(lastErr, &se) {
		return se.StatusCode, nil, lastErr
	}
	return 0, nil, fmt.Errorf("%w: %v", ErrRetryExhausted, lastErr)
}

func (c *restClient) doOnce(ctx context.Context, method, reqURL string, body []byte, token string) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return resp.StatusCode, nil, ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, nil, statusError(resp.StatusCode, respBody)
	}
	return resp.StatusCode, respBody, nil
}

// statusError prefers the backend's own {"message": …} body.
func statusError(status int, body []byte) error {
	var msg messageWire
	if err := json.Unmarshal(body, &msg); err == nil && msg.Message != "" {
		return &StatusError{StatusCode: status, Message: msg.Message}
	}
	return &StatusError{StatusCode: status, Message: fmt.Sprintf("backend returned status %d", status)}
}

func (c *restClient) observe(op string, start time.Time, status int, err error) {
	event := CallEvent{
		Operation: op,
		LatencyMs: time.Since(start).Milliseconds(),
		Status:    status,
		Success:   err == nil,
	}
	if err != nil {
		event.Err = err.Error()
	}
	c.observer.OnCallComplete(event)
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	var netErr *net.OpError
	return errors.As(err, &netErr)
}
