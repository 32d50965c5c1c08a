package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"time"
	"ranked-profile/internal/config"
	"ranked-profile/internal/constants"
	"ranked-profile/internal/domain"

	"github.com/go-playground/validator/v10"
	"github.com/valyala/fasthttp"
)

var ErrMalformedPayload = errors.New("malformed payload")

// StatusError is an upstream answer other than a 200 with status "success".
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("API error: %d", e.Code)
	}
	return fmt.Sprintf("API error: %d: %s", e.Code, e.Message)
}

type Client struct {
	baseURL     string
	timeout     time.Duration
	client      *fasthttp.Client
	validate    *validator.Validate
	rateLimitMu sync.RWMutex
	rateLimit   RateLimitInfo
}

type RateLimitInfo struct {
	Limit     int `json:"limit"`
	Remaining int `json:"remaining"`

	// seconds until reset
	Reset int `json:"reset"`

	UpdatedAt time.Time `json:"updated_at"`
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		baseURL: cfg.APIBaseURL,
		timeout: cfg.APITimeout,
		client: &fasthttp.Client{
			MaxConnsPerHost:     constants.MaxConnsPerHost,
			ReadTimeout:         cfg.APITimeout,
			WriteTimeout:        cfg.APITimeout,
			MaxIdleConnDuration: constants.MaxIdleConnDuration,
			MaxResponseBodySize: constants.MaxResponseBodySize,
		},
		validate: newValidator(),
		rateLimit: RateLimitInfo{
			Limit:     constants.DefaultRateLimit,
			Remaining: constants.DefaultRateLimit,
			Reset:     constants.DefaultRateLimitReset,
			UpdatedAt: time.Now(),
		},
	}
}

func (c *Client) GetRateLimitInfo() RateLimitInfo {
	c.rateLimitMu.RLock()
	defer c.rateLimitMu.RUnlock()
	return c.rateLimit
}

func (c *Client) updateRateLimit(resp *fasthttp.Response) {
	c.rateLimitMu.Lock()
	defer c.rateLimitMu.Unlock()

	if limit := string(resp.Header.Peek("X-Ratelimit-Limit")); limit != "" {
		if val, err := strconv.Atoi(limit); err == nil {
			c.rateLimit.Limit = val
		}
	}
	if remaining := string(resp.Header.Peek("X-Ratelimit-Remaining")); remaining != "" {
		if val, err := strconv.Atoi(remaining); err == nil {
			c.rateLimit.Remaining = val
		}
	}
	if reset := string(resp.Header.Peek("X-Ratelimit-Reset")); reset != "" {
		if val, err := strconv.Atoi(reset); err == nil {
			c.rateLimit.Reset = val
		}
	}
	c.rateLimit.UpdatedAt = time.Now()
}

// GetProfile fetches and validates the profile of nickname.
func (c *Client) GetProfile(ctx context.Context, nickname string) (*domain.Profile, error) {
	u := fmt.Sprintf("%s/users/%s", c.baseURL, url.PathEscape(nickname))
	data, err := doRequest[ProfileData](ctx, c, u)
	if err != nil {
		return nil, err
	}
	if err := c.validate.Struct(data); err != nil {
		return nil, fmt.Errorf("%w: profile %q: %v", ErrMalformedPayload, nickname, err)
	}
	profile := data.Profile()
	return &profile, nil
}

// GetMatches fetches the match list of nickname scoped to season, newest
// first as the upstream returns it.
func (c *Client) GetMatches(ctx context.Context, nickname string, season int) ([]domain.Match, error) {
	u := fmt.Sprintf("%s/users/%s/matches?filter=%d", c.baseURL, url.PathEscape(nickname), season)
	data, err := doRequest[[]MatchData](ctx, c, u)
	if err != nil {
		return nil, err
	}

	matches := make([]domain.Match, 0, len(*data))
	for i, m := range *data {
		if err := c.validate.Struct(m); err != nil {
			return nil, fmt.Errorf("%w: match %d (%s): %v", ErrMalformedPayload, i, m.ID, err)
		}
		matches = append(matches, m.Match())
	}
	return matches, nil
}

type envelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
}

func doRequest[T any](ctx context.Context, client *Client, uri string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(uri)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")

	deadline, ok := ctx.Deadline()
	if ok {
		if err := client.client.DoDeadline(req, resp, deadline); err != nil {
			return nil, err
		}
	} else {
		if err := client.client.DoTimeout(req, resp, client.timeout); err != nil {
			return nil, err
		}
	}

	client.updateRateLimit(resp)

	var env envelope
	decodeErr := json.Unmarshal(resp.Body(), &env)

	if resp.StatusCode() != fasthttp.StatusOK || (decodeErr == nil && env.Status != "success") {
		return nil, &StatusError{Code: resp.StatusCode(), Message: errorMessage(env)}
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, decodeErr)
	}

	var result T
	if err := json.Unmarshal(env.Data, &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return &result, nil
}

// errorMessage pulls the upstream's error text, which is sent as a bare
// string in the data field.
func errorMessage(env envelope) string {
	var msg string
	if err := json.Unmarshal(env.Data, &msg); err == nil {
		return msg
	}
	return env.Status
}
