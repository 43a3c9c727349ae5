package internal

import "slices"

// Middleware runs around every dispatched request.
// OnRequest runs before authentication with no response yet; OnResponse runs after
// the dispatcher produced the envelope and may modify it in place.
// Returning an error aborts the request with an error envelope.
type Middleware interface {
	OnRequest(r *Request) error
	OnResponse(r *Request, resp *Response) error
}

// BaseMiddleware provides no-op hooks for embedding.
type BaseMiddleware struct{}

func (BaseMiddleware) OnRequest(*Request) error { return nil }

func (BaseMiddleware) OnResponse(*Request, *Response) error { return nil }

// MiddlewareFuncs adapts plain functions to Middleware.
//
// Example:
//
//	pionia.MiddlewareFuncs{
//	    Label:    "audit",
//	    Services: []string{"articles"},
//	    Response: func(r *pionia.Request, resp *pionia.Response) error {
//	        r.LogInfo("served", "code", resp.Code)
//	        return nil
//	    },
//	}
type MiddlewareFuncs struct {
	Request  func(r *Request) error
	Response func(r *Request, resp *Response) error
	Label    string
	Services []string
}

func (m MiddlewareFuncs) OnRequest(r *Request) error {
	if m.Request == nil {
		return nil
	}
	return m.Request(r)
}

func (m MiddlewareFuncs) OnResponse(r *Request, resp *Response) error {
	if m.Response == nil {
		return nil
	}
	return m.Response(r, resp)
}

func (m MiddlewareFuncs) Name() string { return m.Label }

func (m MiddlewareFuncs) LimitServices() []string { return m.Services }

// MiddlewareChain is the ordered list of middlewares.
// It is assembled before the App starts; Handle never mutates it.
type MiddlewareChain struct {
	items []Middleware
}

// NewMiddlewareChain creates a chain running mws in order.
func NewMiddlewareChain(mws ...Middleware) *MiddlewareChain {
	c := &MiddlewareChain{}
	return c.Add(mws...)
}

// Add appends middlewares.
func (c *MiddlewareChain) Add(mws ...Middleware) *MiddlewareChain {
	for _, mw := range mws {
		if mw != nil {
			c.items = append(slices.Clip(c.items), mw)
		}
	}
	return c
}

// AddBefore places mw before the middleware named anchor (see NameOf).
func (c *MiddlewareChain) AddBefore(anchor string, mw Middleware) *MiddlewareChain {
	c.items = insertNamed(c.items, anchor, mw, false)
	return c
}

// AddAfter places mw after the middleware named anchor.
func (c *MiddlewareChain) AddAfter(anchor string, mw Middleware) *MiddlewareChain {
	c.items = insertNamed(c.items, anchor, mw, true)
	return c
}

// Names lists the chain in execution order.
func (c *MiddlewareChain) Names() []string {
	names := make([]string, len(c.items))
	for i, mw := range c.items {
		names[i] = NameOf(mw)
	}
	return names
}

// Len returns the number of registered middlewares.
func (c *MiddlewareChain) Len() int {
	return len(c.items)
}

// Handle runs one phase of the chain: the request phase when resp is nil, the response phase otherwise.
// Middlewares limited to other services are skipped. The first error stops the phase.
func (c *MiddlewareChain) Handle(r *Request, resp *Response) error {
	if c == nil {
		return nil
	}
	items := c.items
	service := r.Service()

	for i := 0; i < len(items); i++ {
		mw := items[i]
		if !appliesTo(mw, service) {
			continue
		}

		var err error
		if resp == nil {
			err = mw.OnRequest(r)
		} else {
			err = mw.OnResponse(r, resp)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
