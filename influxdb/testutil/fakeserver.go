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

// Package testutil provides an in-process stand-in for the InfluxDB 1.x HTTP
// API to test the client against.
package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"time"

	"github.com/influxdata/line-protocol/v2/lineprotocol"
	"github.com/julienschmidt/httprouter"
	"github.com/klauspost/compress/gzip"
)

// EmptyResult is the /query answer used when no response was registered.
const EmptyResult = `{"results":[{"statement_id":0}]}`

// Request is a request received by the FakeServer.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	// Body is the request body, inflated when it was sent gzipped.
	Body    []byte
	Gzipped bool
}

// Tag is a decoded line protocol tag.
type Tag struct {
	Key   string
	Value string
}

// Field is a decoded line protocol field.
type Field struct {
	Key   string
	Value lineprotocol.Value
}

// Point is one decoded line of a write request.
type Point struct {
	Measurement string
	Tags        []Tag
	Fields      []Field
	// Time is the timestamp as written, in the precision of the request.
	Time int64
}

// FakeServer answers /write, /query and /ping like an InfluxDB 1.x server.
// Written points are decoded and kept, queries are answered from registered
// responses.
type FakeServer struct {
	*httptest.Server

	// Build and Version are reported by /ping.
	Build   string
	Version string

	mu        sync.Mutex
	requests  []Request
	points    []Point
	responses map[string]string
	failure   *cannedResponse
}

type cannedResponse struct {
	status      int
	contentType string
	body        string
}

// NewFakeServer starts a FakeServer. Close it when done.
func NewFakeServer() *FakeServer {
	s := &FakeServer{
		Build:     "OSS",
		Version:   "1.8.10",
		responses: make(map[string]string),
	}
	router := httprouter.New()
	router.POST("/write", s.handleWrite)
	router.GET("/query", s.handleQuery)
	router.POST("/query", s.handleQuery)
	router.GET("/ping", s.handlePing)
	router.HEAD("/ping", s.handlePing)
	s.Server = httptest.NewServer(router)
	return s
}

// SetQueryResponse registers the JSON body answered to the query text q.
func (s *FakeServer) SetQueryResponse(q, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[q] = body
}

// SetFailure makes every following /write and /query request fail with the
// given status and body. A zero status clears the failure.
func (s *FakeServer) SetFailure(status int, contentType, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == 0 {
		s.failure = nil
		return
	}
	s.failure = &cannedResponse{status: status, contentType: contentType, body: body}
}

// Requests returns the requests received so far.
func (s *FakeServer) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Points returns the points written so far.
func (s *FakeServer) Points() []Point {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Point(nil), s.points...)
}

func (s *FakeServer) record(r *http.Request) (Request, error) {
	req := Request{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.Query(),
		Header: r.Header.Clone(),
	}
	defer r.Body.Close()
	var body io.Reader = r.Body
	if r.Header.Get("Content-Encoding") == "gzip" {
		zr, err := gzip.NewReader(r.Body)
		if err != nil {
			return req, err
		}
		defer zr.Close()
		body = zr
		req.Gzipped = true
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return req, err
	}
	req.Body = data

	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()
	return req, nil
}

func (s *FakeServer) fail(w http.ResponseWriter) bool {
	s.mu.Lock()
	f := s.failure
	s.mu.Unlock()
	if f == nil {
		return false
	}
	if f.contentType != "" {
		w.Header().Set("Content-Type", f.contentType)
	}
	w.WriteHeader(f.status)
	_, _ = io.WriteString(w, f.body)
	return true
}

func (s *FakeServer) handleWrite(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	req, err := s.record(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if s.fail(w) {
		return
	}
	if req.Query.Get("db") == "" {
		writeError(w, http.StatusBadRequest, "database is required")
		return
	}
	points, err := decodePoints(req.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unable to parse: "+err.Error())
		return
	}
	s.mu.Lock()
	s.points = append(s.points, points...)
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (s *FakeServer) handleQuery(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	req, err := s.record(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if s.fail(w) {
		return
	}
	q := req.Query.Get("q")
	if q == "" {
		writeError(w, http.StatusBadRequest, "missing required parameter \"q\"")
		return
	}
	s.mu.Lock()
	body, ok := s.responses[q]
	s.mu.Unlock()
	if !ok {
		body = EmptyResult
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, body)
}

func (s *FakeServer) handlePing(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if _, err := s.record(r); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	w.Header().Set("X-Influxdb-Build", s.Build)
	w.Header().Set("X-Influxdb-Version", s.Version)
	w.WriteHeader(http.StatusNoContent)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func decodePoints(data []byte) ([]Point, error) {
	var points []Point
	dec := lineprotocol.NewDecoderWithBytes(data)
	for dec.Next() {
		m, err := dec.Measurement()
		if err != nil {
			return nil, err
		}
		p := Point{Measurement: string(m)}
		for {
			key, val, err := dec.NextTag()
			if err != nil {
				return nil, err
			}
			if key == nil {
				break
			}
			p.Tags = append(p.Tags, Tag{Key: string(key), Value: string(val)})
		}
		for {
			key, val, err := dec.NextField()
			if err != nil {
				return nil, err
			}
			if key == nil {
				break
			}
			p.Fields = append(p.Fields, Field{Key: string(key), Value: lineprotocol.MustNewValue(val.Interface())})
		}
		t, err := dec.Time(lineprotocol.Nanosecond, time.Time{})
		if err != nil {
			return nil, err
		}
		if !t.IsZero() {
			p.Time = t.UnixNano()
		}
		points = append(points, p)
	}
	return points, dec.Err()
}
