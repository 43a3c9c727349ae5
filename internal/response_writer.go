package internal

import (
	"net/http"
	"sync"
)

// ResponseWriter wraps http.ResponseWriter so the pipeline always answers 200.
// Business failures travel in the envelope; any status requested by a wrapped
// handler is recorded but not sent.
type ResponseWriter struct {
	http.ResponseWriter
	requested int
	size      int64
	written   bool
	mu        sync.Mutex
}

// NewResponseWriter creates a new ResponseWriter.
func NewResponseWriter(w http.ResponseWriter) *ResponseWriter {
	return &ResponseWriter{
		ResponseWriter: w,
		requested:      http.StatusOK,
	}
}

// WriteHeader sends 200 once, whatever code was requested.
func (w *ResponseWriter) WriteHeader(code int) {
	w.mu.Lock()
	if w.written {
		w.mu.Unlock()
		return
	}
	w.written = true
	w.requested = code
	w.mu.Unlock()

	w.ResponseWriter.WriteHeader(http.StatusOK)
}

// Write writes the data to the connection as part of an HTTP reply.
func (w *ResponseWriter) Write(b []byte) (int, error) {
	w.mu.Lock()
	if !w.written {
		w.written = true
		w.mu.Unlock()
		w.ResponseWriter.WriteHeader(http.StatusOK)
	} else {
		w.mu.Unlock()
	}

	n, err := w.ResponseWriter.Write(b)
	w.mu.Lock()
	w.size += int64(n)
	w.mu.Unlock()
	return n, err
}

// Requested returns the status the handler asked for before it was forced to 200.
func (w *ResponseWriter) Requested() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.requested
}

// Size returns the number of bytes written to the response body.
func (w *ResponseWriter) Size() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.size
}

// Written returns true if the response has been written.
func (w *ResponseWriter) Written() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.written
}

// Flush implements the http.Flusher interface.
func (w *ResponseWriter) Flush() {
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

// Unwrap returns the underlying ResponseWriter.
func (w *ResponseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
