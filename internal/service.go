package internal

import (
	"maps"
	"slices"
	"strings"
)

// ActionFunc handles a single service action.
// It must return a response or an error; returning neither is a contract violation.
type ActionFunc func(r *Request) (*Response, error)

// Service is a named set of actions with their access rules.
type Service struct {
	actions      map[string]ActionFunc
	permissions  map[string][]string
	deactivated  map[string]struct{}
	authActions  map[string]struct{}
	requiresAuth bool
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// NewService creates a service.
//
// Example:
//
//	svc := pionia.NewService(
//	    pionia.WithAction("publish", publish),
//	    pionia.ActionsRequiringAuth("publish"),
//	    pionia.ActionPermissions("publish", "articles.publish"),
//	)
func NewService(opts ...ServiceOption) *Service {
	s := &Service{
		actions:     make(map[string]ActionFunc),
		permissions: make(map[string][]string),
		deactivated: make(map[string]struct{}),
		authActions: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// actionName normalizes "listAction" to "list".
func actionName(name string) string {
	name = strings.TrimSpace(name)
	if trimmed := strings.TrimSuffix(name, "Action"); trimmed != "" {
		return trimmed
	}
	return name
}

// WithAction registers fn under name.
func WithAction(name string, fn ActionFunc) ServiceOption {
	return func(s *Service) {
		s.Handle(name, fn)
	}
}

// RequireAuth requires an authenticated request for every action of the service.
func RequireAuth() ServiceOption {
	return func(s *Service) {
		s.requiresAuth = true
	}
}

// DeactivateActions rejects the given actions with a client error.
func DeactivateActions(names ...string) ServiceOption {
	return func(s *Service) {
		for _, n := range names {
			s.deactivated[actionName(n)] = struct{}{}
		}
	}
}

// ActionsRequiringAuth requires an authenticated request for the given actions.
func ActionsRequiringAuth(names ...string) ServiceOption {
	return func(s *Service) {
		for _, n := range names {
			s.authActions[actionName(n)] = struct{}{}
		}
	}
}

// ActionPermissions requires the authenticated identity to hold all perms to run action.
func ActionPermissions(action string, perms ...string) ServiceOption {
	return func(s *Service) {
		name := actionName(action)
		s.permissions[name] = append(s.permissions[name], perms...)
	}
}

// Handle registers fn under name, replacing any previous handler.
func (s *Service) Handle(name string, fn ActionFunc) *Service {
	if fn != nil {
		s.actions[actionName(name)] = fn
	}
	return s
}

// Apply applies opts to an existing service.
func (s *Service) Apply(opts ...ServiceOption) *Service {
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Action returns the handler bound to name. Both "list" and "listAction" resolve.
func (s *Service) Action(name string) (ActionFunc, bool) {
	fn, ok := s.actions[actionName(name)]
	return fn, ok
}

// Actions returns the registered action names, sorted.
func (s *Service) Actions() []string {
	return slices.Sorted(maps.Keys(s.actions))
}

// RequiresAuth reports whether every action requires authentication.
func (s *Service) RequiresAuth() bool {
	return s.requiresAuth
}

// IsDeactivated reports whether action is deactivated.
func (s *Service) IsDeactivated(action string) bool {
	_, ok := s.deactivated[actionName(action)]
	return ok
}

// ActionRequiresAuth reports whether action requires authentication.
func (s *Service) ActionRequiresAuth(action string) bool {
	_, ok := s.authActions[actionName(action)]
	return ok
}

// Permissions returns the permissions required by action.
func (s *Service) Permissions(action string) []string {
	return s.permissions[actionName(action)]
}
