package internal

import (
	"encoding/json"
	"net/http"
)

// Response is the uniform envelope returned by every action.
// Code 0 means success; any other value is an application error code.
type Response struct {
	Data    any
	Extra   any
	Message string
	Code    int
}

type envelope struct {
	Code    int     `json:"code"`
	Message *string `json:"message"`
	Data    any     `json:"data"`
	Extra   any     `json:"extra"`
}

// NewResponse builds an envelope from all of its parts.
func NewResponse(code int, message string, data, extra any) *Response {
	return &Response{Code: code, Message: message, Data: data, Extra: extra}
}

// Success builds a successful envelope carrying data.
func Success(data any) *Response {
	return &Response{Data: data}
}

// Fail builds an error envelope.
func Fail(code int, message string) *Response {
	return &Response{Code: code, Message: message}
}

// WithMessage sets the message and returns r.
func (r *Response) WithMessage(message string) *Response {
	r.Message = message
	return r
}

// WithExtra sets the extra payload and returns r.
func (r *Response) WithExtra(extra any) *Response {
	r.Extra = extra
	return r
}

// IsSuccess reports whether the envelope carries code 0.
func (r *Response) IsSuccess() bool {
	return r != nil && r.Code == 0
}

// MarshalJSON renders {code, message, data, extra}; an empty message is encoded as null.
func (r *Response) MarshalJSON() ([]byte, error) {
	env := envelope{Code: r.Code, Data: r.Data, Extra: r.Extra}
	if r.Message != "" {
		env.Message = &r.Message
	}
	return json.Marshal(env)
}

// Write sends the envelope as JSON. The status is always 200.
// The envelope is encoded before anything is written, so an unencodable value
// leaves w untouched and the caller can still send another envelope.
func (r *Response) Write(w http.ResponseWriter) error {
	body, err := json.Marshal(r)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, err = w.Write(append(body, '\n'))
	return err
}
