package retailcrm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/milnali/shop-backend/pkg/config"
	"github.com/milnali/shop-backend/pkg/logger"
)

const (
	apiPrefix            = "/api/v5"
	defaultTimeout       = 15 * time.Second
	defaultRetryAttempts = 3
	retryBackoff         = 500 * time.Millisecond
)

var (
	errBaseURLRequired = errors.New("retailcrm base url is required")
	errAPIKeyRequired  = errors.New("retailcrm api key is required")
)

// ErrTransient marks responses worth retrying (5xx, network failures).
var ErrTransient = errors.New("retailcrm transient failure")

// Client is a minimal RetailCRM v5 API client covering the customer and
// order endpoints the sync engine needs.
type Client struct {
	baseURL  string
	apiKey   string
	siteCode string
	attempts uint64
	http     *http.Client
	logg     *logger.Logger
}

// NewClient validates the credentials and builds a client with an explicit
// per-call timeout and retry budget.
func NewClient(cfg config.RetailCRMConfig, timeout time.Duration, maxAttempts int, logg *logger.Logger) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errBaseURLRequired
	}
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errAPIKeyRequired
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if maxAttempts <= 0 {
		maxAttempts = defaultRetryAttempts
	}
	return &Client{
		baseURL:  baseURL,
		apiKey:   apiKey,
		siteCode: cfg.SiteCode,
		attempts: uint64(maxAttempts),
		http:     &http.Client{Timeout: timeout},
		logg:     logg,
	}, nil
}

// SiteCode returns the configured CRM site code.
func (c *Client) SiteCode() string {
	return c.siteCode
}

// Customer fetches a customer by the storefront's external id.
func (c *Client) Customer(ctx context.Context, externalID string) (*CustomerResponse, error) {
	query := url.Values{}
	query.Set("by", "externalId")
	if c.siteCode != "" {
		query.Set("site", c.siteCode)
	}
	var out CustomerResponse
	err := c.get(ctx, "/customers/"+url.PathEscape(externalID), query, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// CustomerCreate registers a new customer.
func (c *Client) CustomerCreate(ctx context.Context, customer Customer) (*Response, error) {
	return c.postEntity(ctx, "/customers/create", "customer", customer)
}

// CustomerEdit updates an existing customer, matched by external id.
func (c *Client) CustomerEdit(ctx context.Context, customer Customer) (*Response, error) {
	path := "/customers/" + url.PathEscape(customer.ExternalID) + "/edit"
	return c.postEntity(ctx, path, "customer", customer, formField{"by", "externalId"})
}

// OrderCreate submits a new order.
func (c *Client) OrderCreate(ctx context.Context, order Order) (*Response, error) {
	return c.postEntity(ctx, "/orders/create", "order", order)
}

// OrdersStatuses reads the current CRM status of the given CRM order ids.
func (c *Client) OrdersStatuses(ctx context.Context, ids []int64) (*OrdersStatusesResponse, error) {
	query := url.Values{}
	for _, id := range ids {
		query.Add("ids[]", strconv.FormatInt(id, 10))
	}
	var out OrdersStatusesResponse
	if err := c.get(ctx, "/orders/statuses", query, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type formField struct {
	key   string
	value string
}

// postEntity form-encodes the entity as a single JSON field, which is how
// the v5 API accepts write operations.
func (c *Client) postEntity(ctx context.Context, path, field string, entity any, extra ...formField) (*Response, error) {
	payload, err := json.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", field, err)
	}

	form := url.Values{}
	form.Set(field, string(payload))
	if c.siteCode != "" {
		form.Set("site", c.siteCode)
	}
	for _, f := range extra {
		form.Set(f.key, f.value)
	}

	var out Response
	err = c.do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(
			ctx, http.MethodPost, c.baseURL+apiPrefix+path, strings.NewReader(form.Encode()),
		)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return req, nil
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, func(ctx context.Context) (*http.Request, error) {
		target := c.baseURL + apiPrefix + path
		if len(query) > 0 {
			target += "?" + query.Encode()
		}
		return http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	}, out)
}

func (c *Client) do(ctx context.Context, build func(context.Context) (*http.Request, error), out any) error {
	backoff := retry.WithMaxRetries(c.attempts-1, retry.NewConstant(retryBackoff))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := build(ctx)
		if err != nil {
			return err
		}
		req.Header.Set("X-API-KEY", c.apiKey)

		resp, err := c.http.Do(req)
		if err != nil {
			return retry.RetryableError(fmt.Errorf("%w: %v", ErrTransient, err))
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return retry.RetryableError(fmt.Errorf("%w: reading body: %v", ErrTransient, err))
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return retry.RetryableError(fmt.Errorf("%w: status %d", ErrTransient, resp.StatusCode))
		}

		// 4xx and success responses both carry the JSON envelope; the
		// caller inspects the Success flag.
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("decoding response (status %d): %w", resp.StatusCode, err)
		}
		return nil
	})
}
