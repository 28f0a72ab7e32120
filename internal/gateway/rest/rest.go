package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/remedyroot/remedyroot-golang/internal/gateway"
	"github.com/sirupsen/logrus"
)

// Client implements gateway.Gateway over the data service's row API. Every
// table maps to /v1/{table}; filters travel as query parameters on reads and
// deletes and as a JSON body on updates.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	log     *logrus.Logger
}

func NewClient(baseURL, apiKey string, log *logrus.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 15 * time.Second},
		log:     log,
	}
}

type createResponse struct {
	ID int64 `json:"id"`
}

func (c *Client) Create(ctx context.Context, table string, fields gateway.Row) (int64, error) {
	body, err := json.Marshal(fields)
	if err != nil {
		return 0, errors.Wrap(err, "rest: encode create fields")
	}

	req, err := c.newRequest(ctx, http.MethodPost, c.tableURL(table), bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	var created createResponse
	if err := c.do(req, &created); err != nil {
		return 0, err
	}
	return created.ID, nil
}

func (c *Client) Read(ctx context.Context, table string, filter gateway.Filter, opts *gateway.ReadOptions) ([]gateway.Row, error) {
	u := c.tableURL(table) + "?" + readQuery(filter, opts).Encode()

	req, err := c.newRequest(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	var rows []gateway.Row
	if err := c.do(req, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

type updateRequest struct {
	Filter gateway.Filter `json:"filter"`
	Fields gateway.Row    `json:"fields"`
}

func (c *Client) Update(ctx context.Context, table string, filter gateway.Filter, fields gateway.Row) error {
	body, err := json.Marshal(updateRequest{Filter: filter, Fields: fields})
	if err != nil {
		return errors.Wrap(err, "rest: encode update request")
	}

	req, err := c.newRequest(ctx, http.MethodPatch, c.tableURL(table), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, nil)
}

func (c *Client) Delete(ctx context.Context, table string, filter gateway.Filter) error {
	u := c.tableURL(table) + "?" + filterQuery(filter).Encode()

	req, err := c.newRequest(ctx, http.MethodDelete, u, nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

type countResponse struct {
	Count int64 `json:"count"`
}

func (c *Client) Count(ctx context.Context, table string, filter gateway.Filter) (int64, error) {
	u := c.tableURL(table) + "/count?" + filterQuery(filter).Encode()

	req, err := c.newRequest(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, err
	}

	var counted countResponse
	if err := c.do(req, &counted); err != nil {
		return 0, err
	}
	return counted.Count, nil
}

func (c *Client) tableURL(table string) string {
	return c.baseURL + "/v1/" + table
}

func (c *Client) newRequest(ctx context.Context, method, u string, body *bytes.Reader) (*http.Request, error) {
	var req *http.Request
	var err error
	if body == nil {
		req, err = http.NewRequestWithContext(ctx, method, u, nil)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, u, body)
	}
	if err != nil {
		return nil, errors.Wrap(err, "rest: build request")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	return req, nil
}

// errorBody is the data service's error envelope. When the body does not
// parse, the status code alone drives classification.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return gateway.NewError(gateway.CodeUnavailable, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var body errorBody
		_ = json.NewDecoder(resp.Body).Decode(&body)
		ge := classify(resp.StatusCode, body)
		c.log.WithFields(logrus.Fields{
			"method": req.Method,
			"url":    req.URL.Path,
			"status": resp.StatusCode,
			"code":   ge.Code,
		}).Warn("data service call failed")
		return ge
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return gateway.NewError(gateway.CodeInternal,
			fmt.Sprintf("decode %s %s response: %v", req.Method, req.URL.Path, err))
	}
	return nil
}

func classify(status int, body errorBody) *gateway.Error {
	message := body.Message
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return gateway.NewError(gateway.CodePermissionDenied, message)
	case status == http.StatusNotFound:
		if message == "" {
			message = "row not found"
		}
		return gateway.NewError(gateway.CodeNotFound, message)
	case status >= 500:
		if message == "" {
			message = "data service unavailable"
		}
		return gateway.NewError(gateway.CodeUnavailable, message)
	default:
		if message == "" {
			message = fmt.Sprintf("unexpected status %d", status)
		}
		return gateway.NewError(gateway.CodeInternal, message)
	}
}

func filterQuery(filter gateway.Filter) url.Values {
	q := url.Values{}
	for k, v := range filter {
		q.Set(k, fmt.Sprint(v))
	}
	return q
}

func readQuery(filter gateway.Filter, opts *gateway.ReadOptions) url.Values {
	q := filterQuery(filter)
	if opts == nil {
		return q
	}
	if opts.OrderBy != "" {
		q.Set("order_by", opts.OrderBy)
		if opts.Descending {
			q.Set("order", "desc")
		}
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	return q
}
