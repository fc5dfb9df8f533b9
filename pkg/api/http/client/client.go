package client

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/voidshard/torque/pkg/api/http/common"
	"github.com/voidshard/torque/pkg/structs"
)

type Client struct {
	url    *url.URL
	apiKey string
	http   *http.Client
}

// New returns a client of the torque server at address. The apiKey may be
// empty, in which case requests are anonymous.
func New(address, apiKey string) (*Client, error) {
	u, err := url.Parse(address)
	if err != nil {
		return nil, err
	}
	return &Client{url: u, apiKey: apiKey, http: &http.Client{}}, nil
}

// WithHTTPClient sets the client used to talk to the server (ie. for TLS).
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	c.http = h
	return c
}

// CreateTask asks the server to deliver req.Body to req.URL.
func (c *Client) CreateTask(ctx context.Context, in *structs.CreateTaskRequest) (*structs.TaskResponse, error) {
	addr := c.addr(common.API_CREATE)
	values := addr.Query()
	values.Set(common.PARAM_URL, in.URL)
	if in.Timeout != nil {
		values.Set(common.PARAM_TIMEOUT, strconv.FormatInt(*in.Timeout, 10))
	}
	addr.RawQuery = values.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, addr.String(), bytes.NewReader(in.Body))
	if err != nil {
		return nil, err
	}
	if in.ContentType != "" {
		req.Header.Set("Content-Type", in.ContentType)
	}
	for k, v := range in.Headers {
		req.Header.Set(common.HEADER_PREFIX+k, v)
	}
	c.authorize(req, in.APIKey)

	var out structs.TaskResponse
	return &out, c.do(req, &out)
}

// Task fetches a task by ID.
func (c *Client) Task(ctx context.Context, id int64) (*structs.TaskResponse, error) {
	addr := c.addr(fmt.Sprintf("%s/%d", common.API_TASKS, id))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr.String(), nil)
	if err != nil {
		return nil, err
	}
	c.authorize(req, "")

	var out structs.TaskResponse
	return &out, c.do(req, &out)
}

// Health returns nil if the server reports it is up.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.addr(common.API_HEALTH).String(), nil)
	if err != nil {
		return err
	}
	var out common.HealthResponse
	err = c.do(req, &out)
	if err != nil {
		return err
	}
	if !out.OK {
		return fmt.Errorf("server reports unhealthy")
	}
	return nil
}

// authorize sets key as a bearer token, falling back to the client's key
func (c *Client) authorize(req *http.Request, key string) {
	if key == "" {
		key = c.apiKey
	}
	if key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}
}

func (c *Client) addr(path string) *url.URL {
	return &url.URL{Scheme: c.url.Scheme, Host: c.url.Host, Path: path}
}
