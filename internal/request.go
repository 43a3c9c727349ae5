package internal

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/dmitrymomot/pionia/pkg/keyed"
)

const (
	defaultMaxMemory   = 32 << 20 // 32MB
	defaultMaxBodySize = 10 << 20 // 10MB
)

// Request is the per-request context handed to middlewares, auth backends and actions.
// The payload is parsed once, from a single source chosen by content type.
// After construction only the authentication slot and request-scoped values change.
type Request struct {
	request *http.Request
	header  http.Header
	payload *keyed.Map
	files   map[string][]*multipart.FileHeader
	auth    *AuthContext
	logger  *slog.Logger
	cleanup []func()
}

// requestLimits bounds payload parsing.
type requestLimits struct {
	maxMemory   int64
	maxBodySize int64
}

// NewRequest parses r into a Request.
// Response headers set through SetHeader are written to w.
// A malformed body yields a client error.
func NewRequest(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (*Request, error) {
	return newRequest(w, r, logger, requestLimits{maxMemory: defaultMaxMemory, maxBodySize: defaultMaxBodySize})
}

func newRequest(w http.ResponseWriter, r *http.Request, logger *slog.Logger, limits requestLimits) (*Request, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	req := &Request{
		request: r,
		logger:  logger,
		header:  make(http.Header),
	}
	if w != nil {
		req.header = w.Header()
	}
	if err := req.parse(w, limits); err != nil {
		return nil, err
	}
	return req, nil
}

func (r *Request) parse(w http.ResponseWriter, limits requestLimits) error {
	hr := r.request
	mediaType := ""
	if ct := hr.Header.Get("Content-Type"); ct != "" {
		mt, _, err := mime.ParseMediaType(ct)
		if err != nil {
			return ErrClient("Invalid content type", WithCause(err))
		}
		mediaType = mt
	}

	if hr.Body != nil && hr.Body != http.NoBody && limits.maxBodySize > 0 && mediaType != "multipart/form-data" {
		hr.Body = http.MaxBytesReader(w, hr.Body, limits.maxBodySize)
	}

	switch {
	case mediaType == "application/json" || strings.HasSuffix(mediaType, "+json"):
		return r.parseJSON()
	case mediaType == "multipart/form-data":
		if err := hr.ParseMultipartForm(limits.maxMemory); err != nil {
			return ErrClient("Invalid multipart payload", WithCause(err))
		}
		r.payload = fromValues(hr.MultipartForm.Value)
		r.files = hr.MultipartForm.File
		return nil
	case mediaType == "application/x-www-form-urlencoded":
		if err := hr.ParseForm(); err != nil {
			return ErrClient("Invalid form payload", WithCause(err))
		}
		r.payload = fromValues(hr.PostForm)
		return nil
	default:
		r.payload = fromValues(hr.URL.Query())
		return nil
	}
}

func (r *Request) parseJSON() error {
	if r.request.Body == nil {
		r.payload = keyed.New()
		return nil
	}
	data, err := io.ReadAll(r.request.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return ErrClient("Payload too large", WithCause(err))
		}
		return ErrClient("Failed to read payload", WithCause(err))
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		r.payload = keyed.New()
		return nil
	}
	m, err := keyed.Parse(data)
	if err != nil {
		return ErrClient("Invalid JSON payload", WithCause(err))
	}
	r.payload = m
	return nil
}

// fromValues converts form values: single values become strings, repeated ones []any.
func fromValues(v url.Values) *keyed.Map {
	src := make(map[string]any, len(v))
	for k, vals := range v {
		switch len(vals) {
		case 0:
		case 1:
			src[k] = vals[0]
		default:
			list := make([]any, len(vals))
			for i, s := range vals {
				list[i] = s
			}
			src[k] = list
		}
	}
	return keyed.FromMap(src)
}

// HTTP returns the underlying transport request.
func (r *Request) HTTP() *http.Request {
	return r.request
}

// Context returns the request context.
func (r *Request) Context() context.Context {
	return r.request.Context()
}

// Payload returns the parsed payload. Never nil.
func (r *Request) Payload() *keyed.Map {
	return r.payload
}

// Files returns uploaded files keyed by form field.
func (r *Request) Files() map[string][]*multipart.FileHeader {
	return r.files
}

// File returns the first file uploaded under field.
func (r *Request) File(field string) (*multipart.FileHeader, bool) {
	if fhs := r.files[field]; len(fhs) > 0 {
		return fhs[0], true
	}
	return nil, false
}

// Service returns the target service name from the payload ("service" or "SERVICE").
func (r *Request) Service() string {
	s, _ := r.payload.String("service")
	return strings.TrimSpace(s)
}

// Action returns the target action name from the payload ("action" or "ACTION").
func (r *Request) Action() string {
	s, _ := r.payload.String("action")
	return strings.TrimSpace(s)
}

// Auth returns the authentication context. Never nil; anonymous when nobody authenticated.
func (r *Request) Auth() *AuthContext {
	if r.auth == nil {
		return &AuthContext{}
	}
	return r.auth
}

// SetAuth stores the authentication context.
func (r *Request) SetAuth(auth *AuthContext) {
	r.auth = auth
}

// IsAuthenticated reports whether an auth backend attached an identity.
func (r *Request) IsAuthenticated() bool {
	return r.auth != nil && r.auth.Authenticated && r.auth.User != nil
}

// Set stores a request-scoped value in the request context.
func (r *Request) Set(key, value any) {
	r.request = r.request.WithContext(context.WithValue(r.request.Context(), key, value))
}

// SetContext replaces the request context, e.g. to attach a deadline.
// Values stored with Set must be carried by ctx to stay visible.
func (r *Request) SetContext(ctx context.Context) {
	if ctx != nil {
		r.request = r.request.WithContext(ctx)
	}
}

// OnFinish registers fn to run once the response has been sent, on every exit path
// of the pipeline including rejected and panicking requests. Functions run in reverse
// registration order.
func (r *Request) OnFinish(fn func()) {
	if fn != nil {
		r.cleanup = append(r.cleanup, fn)
	}
}

// Finish runs the functions registered with OnFinish. Later calls are no-ops.
func (r *Request) Finish() {
	fns := r.cleanup
	r.cleanup = nil
	for i := len(fns) - 1; i >= 0; i-- {
		fns[i]()
	}
}

// Get returns a request-scoped value.
func (r *Request) Get(key any) any {
	return r.request.Context().Value(key)
}

// Header returns a request header.
func (r *Request) Header(name string) string {
	return r.request.Header.Get(name)
}

// SetHeader sets a response header.
func (r *Request) SetHeader(name, value string) {
	r.header.Set(name, value)
}

// ResponseHeader exposes the response headers.
func (r *Request) ResponseHeader() http.Header {
	return r.header
}

func (r *Request) Logger() *slog.Logger {
	return r.logger
}

func (r *Request) LogDebug(msg string, attrs ...any) {
	r.logger.DebugContext(r.Context(), msg, attrs...)
}

func (r *Request) LogInfo(msg string, attrs ...any) {
	r.logger.InfoContext(r.Context(), msg, attrs...)
}

func (r *Request) LogWarn(msg string, attrs ...any) {
	r.logger.WarnContext(r.Context(), msg, attrs...)
}

func (r *Request) LogError(msg string, attrs ...any) {
	r.logger.ErrorContext(r.Context(), msg, attrs...)
}
