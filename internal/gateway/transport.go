package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"exam-runner/internal/domain"
)

// Actions of the scoring endpoint wire contract.
const (
	actionGetQuestions = "getQuestions"
	actionCheckStatus  = "checkStudentStatus"
	actionSaveResults  = "saveResults"
)

// request is the transport-agnostic request body: an action plus its fields.
type request struct {
	Action      string                `json:"action"`
	Email       string                `json:"email,omitempty"`
	StudentData *domain.Participant   `json:"studentData,omitempty"`
	Answers     []domain.AnswerRecord `json:"answers,omitempty"`
}

// response is the envelope every action answers with.
type response struct {
	Success      bool           `json:"success"`
	Error        string         `json:"error,omitempty"`
	Questions    []wireQuestion `json:"questions,omitempty"`
	HasTakenExam bool           `json:"hasTakenExam,omitempty"`
}

// wireQuestion tolerates string or numeric IDs from the source; the ID is
// preserved verbatim for answer correlation.
type wireQuestion struct {
	ID      any    `json:"id"`
	Text    string `json:"question"`
	OptionA string `json:"optionA"`
	OptionB string `json:"optionB"`
	OptionC string `json:"optionC"`
	OptionD string `json:"optionD"`
	Correct string `json:"correct"`
}

func (q wireQuestion) stringID() string {
	switch id := q.ID.(type) {
	case string:
		return id
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprint(id)
	}
}

// Transport is one concrete mechanism for issuing a request to the endpoint.
// The gateway tries transports in order until one yields a parsed, successful
// response.
type Transport interface {
	Name() string
	Do(ctx context.Context, endpoint string, req request) (*response, error)
}

// jsonTransport POSTs the request as a JSON body. Primary transport.
type jsonTransport struct {
	client *http.Client
}

func (t *jsonTransport) Name() string { return "post" }

func (t *jsonTransport) Do(ctx context.Context, endpoint string, req request) (*response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	return roundTrip(t.client, httpReq)
}

// queryTransport GETs the request as URL parameters, JSON-encoding the
// structured fields the way the original client did. Fallback transport.
type queryTransport struct {
	client *http.Client
	now    func() time.Time
}

func (t *queryTransport) Name() string { return "get" }

func (t *queryTransport) Do(ctx context.Context, endpoint string, req request) (*response, error) {
	params := url.Values{}
	params.Set("action", req.Action)
	if req.Email != "" {
		params.Set("email", req.Email)
	}
	if req.StudentData != nil {
		data, err := json.Marshal(req.StudentData)
		if err != nil {
			return nil, fmt.Errorf("encode studentData: %w", err)
		}
		params.Set("studentData", string(data))
	}
	if req.Answers != nil {
		data, err := json.Marshal(req.Answers)
		if err != nil {
			return nil, fmt.Errorf("encode answers: %w", err)
		}
		params.Set("answers", string(data))
	}
	// Cache-buster, since intermediaries are known to cache these GETs.
	params.Set("t", strconv.FormatInt(t.now().UnixMilli(), 10))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Accept", "application/json")
	return roundTrip(t.client, httpReq)
}

func roundTrip(client *http.Client, req *http.Request) (*response, error) {
	httpResp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %d", httpResp.StatusCode)
	}
	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	var resp response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse body: %w", err)
	}
	return &resp, nil
}
