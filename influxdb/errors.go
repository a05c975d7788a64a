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

package influxdb

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Sentinel errors for every failure kind of the client.
//
// Returned errors wrap one of them and can be checked with errors.Is:
//
//	if errors.Is(err, influxdb.ErrInvalidQuery) {
//	    // fix the query
//	}
var (
	// ErrInvalidQuery indicates a write query without fields, or a read query
	// that cannot be decoded as JSON.
	ErrInvalidQuery = errors.New("query is invalid")

	// ErrURLConstruction indicates the request URL could not be assembled.
	ErrURLConstruction = errors.New("failed to build URL")

	// ErrConnection indicates the HTTP request could not be sent.
	ErrConnection = errors.New("connection error")

	// ErrProtocol indicates an HTTP level failure, such as an unreadable body
	// or an unexpected status code.
	ErrProtocol = errors.New("http protocol error")

	// ErrDeserialization indicates a response that is not valid UTF-8, not
	// valid JSON, or does not match the expected result shape.
	ErrDeserialization = errors.New("deserialization error")

	// ErrDatabase indicates the server answered with an error payload.
	ErrDatabase = errors.New("InfluxDB encountered an error")
)

func invalidQuery(format string, a ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidQuery, fmt.Sprintf(format, a...))
}

func deserializationError(format string, a ...any) error {
	return fmt.Errorf("%w: %s", ErrDeserialization, fmt.Sprintf(format, a...))
}

// ServerError represents an error response returned by the server.
type ServerError struct {
	// Code holds the InfluxDB error code, or empty if the code is unknown.
	Code string `json:"code"`

	// Message holds the error message.
	Message string `json:"message"`

	// StatusCode holds the HTTP response status code.
	StatusCode int `json:"-"`

	// RetryAfter holds the value of Retry-After header if sent by server, otherwise zero
	RetryAfter int `json:"-"`

	// Headers holds the response headers.
	Headers http.Header `json:"-"`

	// kind is ErrDatabase when the body carried a structured error payload.
	kind error
}

// NewServerError returns a ServerError with the given message.
func NewServerError(message string) *ServerError {
	return &ServerError{
		Message: message,
		kind:    ErrDatabase,
	}
}

// Error implements the error interface.
func (e *ServerError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

// Unwrap returns ErrDatabase for structured server errors and ErrProtocol
// for everything else.
func (e *ServerError) Unwrap() error {
	if e.kind == nil {
		return ErrProtocol
	}
	return e.kind
}

// containsErrorKey is the cheap check used on plain text responses: any body
// mentioning a quoted "error" key is treated as an error payload.
func containsErrorKey(body string) bool {
	return strings.Contains(body, `"error"`)
}
