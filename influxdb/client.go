/*
 The MIT License

 Permission is hereby granted, free of charge, to any person obtaining a copy
 of this software and associated documentation files (the "Software"), to deal
 in the Software without restriction, including without limitation the rights
 to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 copies of the Software, and to permit persons to whom the Software is
 furnished to do so, subject to the following conditions:

 The above copyright notice and this permission notice shall be included in
 all copies or substantial portions of the Software.

 THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
 THE SOFTWARE.
*/

// Package influxdb provides a client for InfluxDB 1.x and the 1.x compatible
// API of InfluxDB 2.x. It builds line protocol writes, runs InfluxQL queries
// over HTTP and decodes the JSON query results into user defined types.
package influxdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Client implements an InfluxDB client. It is safe for concurrent use.
type Client struct {
	// Configuration options.
	config ClientConfig
	// Pre-created base URL of the server, ending with a slash.
	apiURL *url.URL
	// Request logger.
	logger *slog.Logger
}

// httpParams holds parameters for the HTTP call.
type httpParams struct {
	// URL of server endpoint
	endpointURL *url.URL
	// Params to be added to URL
	queryParams url.Values
	// HTTP request method, eg. POST
	httpMethod string
	// HTTP request headers
	headers http.Header
	// HTTP POST/PUT body
	body io.Reader
}

// New creates new Client with given config, which must contain at least the Host.
//
// Parameters:
//   - config: The ClientConfig to use.
//
// Returns:
//   - A new Client.
//   - An error, if any.
func New(config ClientConfig) (*Client, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}

	hostAddress := config.Host
	if !strings.HasSuffix(hostAddress, "/") {
		hostAddress += "/"
	}
	apiURL, err := url.Parse(hostAddress)
	if err != nil {
		return nil, errors.Wrap(err, "parsing host URL")
	}
	apiURL.Path = strings.TrimSuffix(apiURL.Path, "/") + "/"

	c := &Client{
		config: config,
		apiURL: apiURL,
		logger: config.Logger,
	}
	if c.config.HTTPClient == nil {
		c.config.HTTPClient = http.DefaultClient
	}
	if c.config.WriteOptions == nil {
		wo := DefaultWriteOptions
		c.config.WriteOptions = &wo
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c, nil
}

// NewFromConnectionString creates new Client from the specified connection string.
//
//	http://localhost:8086?database=weather&precision=ms&gzipThreshold=4096&v2=true
//
// Parameters:
//   - connectionString: The connection string with the host URL and options.
//
// Returns:
//   - A new Client.
//   - An error, if any.
func NewFromConnectionString(connectionString string) (*Client, error) {
	cfg := ClientConfig{}
	if err := cfg.parse(connectionString); err != nil {
		return nil, errors.Wrap(err, "parsing connection string")
	}
	return New(cfg)
}

// NewFromEnv creates new Client from environment variables INFLUX_HOST,
// INFLUX_DATABASE, INFLUX_PRECISION, INFLUX_GZIP_THRESHOLD and INFLUX_V2.
//
// Returns:
//   - A new Client.
//   - An error, if any.
func NewFromEnv() (*Client, error) {
	cfg := ClientConfig{}
	if err := cfg.env(); err != nil {
		return nil, err
	}
	return New(cfg)
}

// NewFromConfigFile creates new Client from a YAML file read by LoadConfig.
//
// Parameters:
//   - path: The path of the YAML file.
//
// Returns:
//   - A new Client.
//   - An error, if any.
func NewFromConfigFile(path string) (*Client, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	return New(cfg)
}

// Close closes all idle connections.
func (c *Client) Close() error {
	c.config.HTTPClient.CloseIdleConnections()
	return nil
}

// DatabaseName returns the default database of the client.
func (c *Client) DatabaseName() string {
	return c.config.Database
}

// DatabaseURL returns the server URL the client was created with.
func (c *Client) DatabaseURL() string {
	return c.config.Host
}

// Ping checks that the server is up.
//
// Parameters:
//   - ctx: The context.Context to use for the request.
//
// Returns:
//   - The build type reported by the server, e.g. "OSS".
//   - The server version.
//   - An error, if any.
func (c *Client) Ping(ctx context.Context) (string, string, error) {
	u, _ := c.apiURL.Parse("ping")
	resp, err := c.makeAPICall(ctx, httpParams{
		endpointURL: u,
		httpMethod:  http.MethodGet,
	})
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.Header.Get("X-Influxdb-Build"), resp.Header.Get("X-Influxdb-Version"), nil
}

// makeAPICall issues an HTTP request to InfluxDB server API url according to parameters.
// Additionally, sets the configured headers and User-Agent.
// It returns http.Response or error. Error can be a *ServerError if server responded with error.
func (c *Client) makeAPICall(ctx context.Context, params httpParams) (*http.Response, error) {
	u := *params.endpointURL
	if params.queryParams != nil {
		u.RawQuery = params.queryParams.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, params.httpMethod, u.String(), params.body)
	if err != nil {
		return nil, fmt.Errorf("%w: error calling %s: %v", ErrURLConstruction, u.Path, err)
	}
	for k, v := range c.config.Headers {
		for _, i := range v {
			req.Header.Add(k, i)
		}
	}
	for k, v := range params.headers {
		req.Header[k] = v
	}
	req.Header.Set("User-Agent", userAgent)

	c.logger.Debug("influxdb request", "method", req.Method, "path", u.Path)
	resp, err := c.config.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: error calling %s: %v", ErrConnection, u.Path, err)
	}

	if err := c.resolveHTTPError(resp); err != nil {
		c.logger.Warn("influxdb request failed", "method", req.Method, "path", u.Path, "status", resp.StatusCode)
		return nil, err
	}

	return resp, nil
}

// resolveHTTPError parses server error response and returns error with human-readable message
func (c *Client) resolveHTTPError(r *http.Response) error {
	// successful status code range
	if r.StatusCode >= 200 && r.StatusCode < 300 {
		return nil
	}
	defer r.Body.Close()

	var httpError struct {
		ServerError
		// Error message of InfluxDB 1 error
		Error string `json:"error"`
	}

	httpError.StatusCode = r.StatusCode
	httpError.Headers = r.Header
	if v := r.Header.Get("Retry-After"); v != "" {
		if ra, err := strconv.ParseUint(v, 10, 32); err == nil {
			httpError.RetryAfter = int(ra)
		}
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		httpError.Message = fmt.Sprintf("cannot read error response: %v", err)
		return &httpError.ServerError
	}

	ctype, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ctype == "application/json" {
		if err := json.Unmarshal(body, &httpError); err != nil {
			httpError.Message = fmt.Sprintf("cannot decode error response: %v", err)
		} else {
			if httpError.Message == "" && httpError.Code == "" {
				httpError.Message = httpError.Error
			}
			if httpError.Message != "" {
				httpError.kind = ErrDatabase
			}
		}
	}
	if httpError.Message == "" {
		httpError.Message = string(body)
	}
	if httpError.Message == "" {
		httpError.Message = r.Status
	}

	return &httpError.ServerError
}
