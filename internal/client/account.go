package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/wayfare-app/onboard/pkg/api"
	"github.com/wayfare-app/onboard/pkg/log"
)

type (
	// AccountClient is the client-side contract of the remote account
	// service: create a user (which sends a one-time code to the email)
	// and validate that code
	AccountClient interface {
		CreateUser(context.Context, *api.SignupPayload) error
		ValidateCode(
			context.Context, *api.VerifyRequest,
		) (*api.VerifyResponse, error)
	}

	// HTTPAccountClient talks to the account service over JSON HTTP
	HTTPAccountClient struct {
		httpClient *http.Client
		baseURL    string
	}

	// RemoteError is a classified account-service failure. The orchestrator
	// converts it into the session's presentable failure; raw network
	// errors never cross into a step renderer
	RemoteError struct {
		Kind   api.RemoteErrorKind
		Detail string
	}
)

var (
	ErrAccountRequest = errors.New("account service request failed")
	ErrEmptyToken     = errors.New("verification response missing token")
)

var _ AccountClient = (*HTTPAccountClient)(nil)

// NewHTTPAccountClient creates an account client with the given base URL
// and request timeout
func NewHTTPAccountClient(baseURL string, timeout time.Duration) *HTTPAccountClient {
	return &HTTPAccountClient{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

func (e *RemoteError) Error() string {
	if e.Detail == "" {
		return string(e.Kind)
	}
	return e.Detail
}

// CreateUser submits the role-tagged signup payload. A nil return means the
// service accepted the account and sent a one-time code to the email
func (c *HTTPAccountClient) CreateUser(
	ctx context.Context, payload *api.SignupPayload,
) error {
	_, err := c.post(ctx, "/v1/users", payload)
	return err
}

// ValidateCode exchanges the email and one-time code for credentials.
// TokenType defaults to Bearer when the server omits it
func (c *HTTPAccountClient) ValidateCode(
	ctx context.Context, req *api.VerifyRequest,
) (*api.VerifyResponse, error) {
	body, err := c.post(ctx, "/v1/users/verify", req)
	if err != nil {
		return nil, err
	}

	var res api.VerifyResponse
	if err := json.Unmarshal(body, &res); err != nil {
		slog.Error("Failed to unmarshal verification response",
			log.Error(err))
		return nil, err
	}
	if res.AccessToken == "" {
		return nil, ErrEmptyToken
	}
	if res.TokenType == "" {
		res.TokenType = api.DefaultTokenType
	}
	return &res, nil
}

func (c *HTTPAccountClient) post(
	ctx context.Context, path string, payload any,
) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.baseURL+path, bytes.NewBuffer(body),
	)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		slog.Error("Account service request failed",
			slog.String("path", path),
			log.Error(err))
		return nil, &RemoteError{Kind: api.ErrorKindGeneric}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RemoteError{Kind: api.ErrorKindGeneric}
	}

	if resp.StatusCode >= http.StatusOK &&
		resp.StatusCode < http.StatusMultipleChoices {
		return respBody, nil
	}

	remoteErr := ClassifyBody(respBody)
	slog.Error("Account service returned error",
		slog.String("path", path),
		slog.Int("status_code", resp.StatusCode),
		slog.String("kind", string(remoteErr.Kind)))
	return nil, remoteErr
}

// ClassifyBody maps an account-service error body onto the presentation
// taxonomy. A message containing "email" plus one of "exists"/"taken"/
// "already" is a duplicate-account error; any other structured detail is
// shown verbatim; everything else collapses to the generic failure
func ClassifyBody(body []byte) *RemoteError {
	detail := gjson.GetBytes(body, "detail").String()
	if detail == "" {
		detail = gjson.GetBytes(body, "message").String()
	}
	if detail == "" {
		return &RemoteError{Kind: api.ErrorKindGeneric}
	}

	if isDuplicateEmail(detail) {
		return &RemoteError{
			Kind:   api.ErrorKindDuplicateEmail,
			Detail: detail,
		}
	}
	return &RemoteError{
		Kind:   api.ErrorKindDetailed,
		Detail: detail,
	}
}

func isDuplicateEmail(detail string) bool {
	lower := strings.ToLower(detail)
	if !strings.Contains(lower, "email") {
		return false
	}
	return strings.Contains(lower, "exists") ||
		strings.Contains(lower, "taken") ||
		strings.Contains(lower, "already")
}

// Classify converts any error from an account call into a RemoteError,
// passing through errors that are already classified
func Classify(err error) *RemoteError {
	var remote *RemoteError
	if errors.As(err, &remote) {
		return remote
	}
	return &RemoteError{Kind: api.ErrorKindGeneric}
}
