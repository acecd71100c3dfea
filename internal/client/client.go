package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spigell/mock-interviewer/internal/bank"
	"github.com/spigell/mock-interviewer/internal/interview"
	"github.com/spigell/mock-interviewer/internal/report"
	"github.com/spigell/mock-interviewer/internal/store"
	"go.uber.org/zap"
)

const (
	userAgent = "spigell/mock-interviewer"
	apiPrefix = "/api/v1"
)

// Client talks to a mock-interviewer server.
type Client struct {
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
	BaseURL    string
}

// New creates a Client for the server at baseURL.
func New(logger *zap.Logger, baseURL string) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		logger: logger,
		HTTPClient: &http.Client{
			// LLM-backed evaluations can take a while.
			Timeout: 90 * time.Second,
		},
		UserAgent: userAgent,
		BaseURL:   strings.TrimRight(baseURL, "/"),
	}
}

// Start opens a new session.
func (c *Client) Start(ctx context.Context, req interview.StartRequest) (*interview.Session, error) {
	var session interview.Session
	if err := c.postJSON(ctx, apiPrefix+"/sessions", req, http.StatusCreated, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// Session fetches a session snapshot.
func (c *Client) Session(ctx context.Context, id string) (*interview.Session, error) {
	var session interview.Session
	if err := c.getJSON(ctx, sessionPath(id, ""), nil, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// CurrentQuestion returns the next question, or nil when the session is complete.
func (c *Client) CurrentQuestion(ctx context.Context, id string) (*bank.Question, error) {
	var resp struct {
		Question *bank.Question `json:"question"`
	}
	err := c.getJSON(ctx, sessionPath(id, "/question"), nil, &resp)
	if err != nil {
		if IsStatus(err, http.StatusConflict) {
			return nil, nil
		}
		return nil, err
	}
	return resp.Question, nil
}

// Submit answers a question.
func (c *Client) Submit(ctx context.Context, id string, req interview.SubmitRequest) (*interview.SubmitResult, error) {
	var result interview.SubmitResult
	if err := c.postJSON(ctx, sessionPath(id, "/answers"), req, http.StatusOK, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Report fetches the final report of a completed session.
func (c *Client) Report(ctx context.Context, id string) (*report.Report, error) {
	var rep report.Report
	if err := c.getJSON(ctx, sessionPath(id, "/report"), nil, &rep); err != nil {
		return nil, err
	}
	return &rep, nil
}

// Questions lists the server's question bank.
func (c *Client) Questions(ctx context.Context) ([]bank.Question, error) {
	var questions []bank.Question
	if err := c.getJSON(ctx, apiPrefix+"/questions", nil, &questions); err != nil {
		return nil, err
	}
	return questions, nil
}

// History returns archived interviews, newest first.
func (c *Client) History(ctx context.Context, limit int) ([]store.InterviewRecord, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var records []store.InterviewRecord
	if err := c.getJSON(ctx, apiPrefix+"/history", q, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func sessionPath(id, suffix string) string {
	return fmt.Sprintf("%s/sessions/%s%s", apiPrefix, url.PathEscape(id), suffix)
}
