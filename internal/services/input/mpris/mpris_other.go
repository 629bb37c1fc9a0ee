//go:build !linux

package mpris

import (
	"playercore/internal/domain"
	"playercore/internal/services/input"
)

type Service struct{}

// New is a stub: MPRIS is a session-bus (Linux desktop) surface.
func New(*input.Queue) (*Service, error) {
	return nil, domain.ErrUnsupported
}

func (s *Service) Close() error { return nil }
