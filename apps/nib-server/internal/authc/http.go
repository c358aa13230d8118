package authc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/oyaguma3/nib-server-poc/apps/nib-server/internal/config"
	"github.com/oyaguma3/nib-server-poc/pkg/httputil"
	"github.com/oyaguma3/nib-server-poc/pkg/logging"
	"github.com/sony/gobreaker"
)

// HTTPヘッダ名
const (
	HeaderContentType = "Content-Type"
	ContentTypeJSON   = "application/json"
)

// APIPath は認証ヘルパーのエンドポイント
const APIPath = "/api/v1/gsm-auth"

// HTTPBackend はHTTPの認証ヘルパーで認証計算を行う。
// 5xxが続いた場合はCircuit Breakerで一定時間送信を止める。
type HTTPBackend struct {
	httpClient *resty.Client
	cb         *gobreaker.CircuitBreaker
	endpoint   string
}

// NewHTTPBackend は新しいHTTPBackendを生成する。
func NewHTTPBackend(baseURL string) *HTTPBackend {
	return &HTTPBackend{
		httpClient: resty.New().SetTimeout(config.AuthRequestTimeout),
		cb:         gobreaker.NewCircuitBreaker(breakerSettings()),
		endpoint:   strings.TrimRight(baseURL, "/") + APIPath,
	}
}

func breakerSettings() gobreaker.Settings {
	return gobreaker.Settings{
		Name:        config.CBName,
		MaxRequests: config.CBMaxRequests,
		Interval:    config.CBInterval,
		Timeout:     config.CBTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(config.CBFailureThreshold)
		},
		OnStateChange: func(name string, _, to gobreaker.State) {
			eventID := map[gobreaker.State]string{
				gobreaker.StateOpen:     "CB_OPEN",
				gobreaker.StateHalfOpen: "CB_HALF_OPEN",
				gobreaker.StateClosed:   "CB_CLOSE",
			}[to]
			level := slog.LevelInfo
			if to == gobreaker.StateOpen {
				level = slog.LevelWarn
			}
			slog.Log(context.Background(), level, "auth helper circuit breaker "+to.String(),
				logging.WithEventID(eventID),
				"cb_name", name,
			)
		},
	}
}

// Authenticate は認証ヘルパーに計算を依頼する。
func (b *HTTPBackend) Authenticate(ctx context.Context, req *Request) (*Response, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	var apiErr *APIError
	result, err := b.cb.Execute(func() (any, error) {
		body, err := b.post(ctx, req)
		// CBの失敗に数えないエラーは成功扱いで外へ持ち出す
		if errors.As(err, &apiErr) && !apiErr.tripsBreaker() {
			return nil, nil
		}
		return body, err
	})

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return nil, ErrCircuitOpen
	case err != nil:
		return nil, err
	case apiErr != nil:
		return nil, apiErr
	}

	body, _ := result.([]byte)
	return decodeResponse(req, body)
}

// post は1回分のHTTPリクエストを送り、200なら本文を返す。
func (b *HTTPBackend) post(ctx context.Context, req *Request) ([]byte, error) {
	start := time.Now()
	resp, err := b.httpClient.R().
		SetContext(ctx).
		SetHeader(HeaderContentType, ContentTypeJSON).
		SetBody(req).
		Post(b.endpoint)
	if err != nil {
		return nil, &ConnectionError{Cause: err}
	}

	latencyMs := time.Since(start).Milliseconds()
	if resp.StatusCode() != http.StatusOK {
		apiErr := parseAPIError(resp.StatusCode(), resp.Body())
		slog.Error("auth api error",
			logging.WithEventID("AUTH_API_ERR"),
			logging.WithError(apiErr),
			"protocol", req.Protocol,
			"http_status", resp.StatusCode(),
			"latency_ms", latencyMs,
		)
		return nil, apiErr
	}

	slog.Debug("auth api success",
		logging.WithEventID("AUTH_API_OK"),
		"protocol", req.Protocol,
		"latency_ms", latencyMs,
	)
	return resp.Body(), nil
}

// decodeResponse は応答本文を大文字Hexに揃えて検証する。
func decodeResponse(req *Request, body []byte) (*Response, error) {
	var out Response
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("%w: json unmarshal: %v", ErrInvalidResponse, err)
	}
	for _, f := range []*string{&out.XRES, &out.AUTN, &out.SRES, &out.SQN} {
		*f = strings.ToUpper(*f)
	}
	if err := checkResponse(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// parseAPIError はHTTPエラーレスポンスをAPIErrorに変換する。
func parseAPIError(statusCode int, body []byte) *APIError {
	var details httputil.ProblemDetail
	if err := json.Unmarshal(body, &details); err == nil && details.Title != "" {
		return &APIError{StatusCode: statusCode, Message: details.Title, Details: &details}
	}
	return &APIError{StatusCode: statusCode, Message: string(body)}
}
