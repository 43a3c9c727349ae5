package internal

import (
	"maps"
	"slices"
	"strings"
)

// ServiceFactory builds a service for each request.
type ServiceFactory func() *Service

// Switch is the service registration table for one API version.
// It is mounted at /api/<version>/ and must not be modified once the App is built.
type Switch struct {
	services map[string]ServiceFactory
	version  string
}

// NewSwitch creates an empty switch for version, e.g. "v1".
func NewSwitch(version string) *Switch {
	return &Switch{
		version:  strings.Trim(version, "/"),
		services: make(map[string]ServiceFactory),
	}
}

// Register binds name to a shared service instance.
func (s *Switch) Register(name string, svc *Service) *Switch {
	if svc == nil {
		return s
	}
	return s.RegisterFunc(name, func() *Service { return svc })
}

// RegisterFunc binds name to a factory called once per request.
func (s *Switch) RegisterFunc(name string, factory ServiceFactory) *Switch {
	if name != "" && factory != nil {
		s.services[name] = factory
	}
	return s
}

// Version returns the version segment the switch is mounted under.
func (s *Switch) Version() string {
	return s.version
}

// Services lists registered service names, sorted.
func (s *Switch) Services() []string {
	return slices.Sorted(maps.Keys(s.services))
}

// Lookup returns the service registered under name.
func (s *Switch) Lookup(name string) (*Service, bool) {
	factory, ok := s.services[name]
	if !ok {
		return nil, false
	}
	svc := factory()
	return svc, svc != nil
}
