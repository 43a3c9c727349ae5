package internal

import (
	"fmt"
	"log/slog"
)

// Dispatcher resolves the service and action named in the payload and runs it.
type Dispatcher struct {
	sw     *Switch
	logger *slog.Logger
	codes  ErrorCodes
}

// NewDispatcher creates a dispatcher over sw.
func NewDispatcher(sw *Switch, codes ErrorCodes, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Dispatcher{sw: sw, codes: codes.withDefaults(), logger: logger}
}

// Process dispatches r and always returns an envelope.
// Errors from guards, actions, hooks and storage are mapped to error envelopes here.
func (d *Dispatcher) Process(r *Request) *Response {
	resp, err := d.dispatch(r)
	if err != nil {
		d.log(r, err)
		return d.codes.Envelope(err)
	}
	return resp
}

func (d *Dispatcher) dispatch(r *Request) (*Response, error) {
	name, action := r.Service(), r.Action()
	if name == "" || action == "" {
		return nil, ErrClient("Service/Action undefined")
	}

	svc, ok := d.sw.Lookup(name)
	if !ok {
		return nil, ErrNotFound(fmt.Sprintf("Service %s is not registered", name))
	}

	if svc.RequiresAuth() && !r.IsAuthenticated() {
		return nil, ErrUnauthenticated(fmt.Sprintf("Service %s requires authentication", name))
	}
	if svc.IsDeactivated(action) {
		return nil, ErrClient(fmt.Sprintf("Action %s is deactivated", action))
	}
	if svc.ActionRequiresAuth(action) && !r.IsAuthenticated() {
		return nil, ErrUnauthenticated(fmt.Sprintf("Action %s requires authentication", action))
	}
	if perms := svc.Permissions(action); len(perms) > 0 {
		if !r.IsAuthenticated() {
			return nil, ErrUnauthenticated(fmt.Sprintf("Action %s requires authentication", action))
		}
		if !r.Auth().CanAll(perms...) {
			return nil, ErrUnauthorized("You do not have permission to perform this action")
		}
	}

	fn, ok := svc.Action(action)
	if !ok {
		return nil, ErrNotFound(fmt.Sprintf("Action %s not found in service %s", action, name))
	}

	resp, err := fn(r)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, ErrServer(fmt.Sprintf("Action %s did not return a correct response object", action))
	}
	return resp, nil
}

func (d *Dispatcher) log(r *Request, err error) {
	attrs := []any{
		slog.String("service", r.Service()),
		slog.String("action", r.Action()),
		slog.String("error", err.Error()),
	}
	e := AsError(err)
	if e != nil && e.Kind != KindServer {
		d.logger.WarnContext(r.Context(), "request rejected", append(attrs, slog.String("kind", e.Kind.String()))...)
		return
	}
	if e != nil && e.Err != nil {
		attrs = append(attrs, slog.Any("cause", e.Err))
	}
	d.logger.ErrorContext(r.Context(), "action failed", attrs...)
}
