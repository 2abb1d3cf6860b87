// Package mocks provides testify mocks for the device package interfaces.
package mocks

import (
	"github.com/stretchr/testify/mock"

	"github.com/scobi84/chardev-go/pkg/device"
)

// Registry is a mock implementation of device.Registry.
type Registry struct {
	mock.Mock
}

// OnOpened records a successful device open.
func (m *Registry) OnOpened(openCount uint64) {
	m.Called(openCount)
}

// OnClosed records a device close.
func (m *Registry) OnClosed(openCount uint64) {
	m.Called(openCount)
}

var _ device.Registry = (*Registry)(nil)

// Copier is a mock implementation of device.Copier.
type Copier struct {
	mock.Mock
}

// Copy copies src into dst.
func (m *Copier) Copy(dst, src []byte) (int, error) {
	args := m.Called(dst, src)

	// Perform the copy on success so content assertions still work.
	if args.Error(1) == nil {
		return copy(dst, src), nil
	}
	return args.Int(0), args.Error(1)
}

var _ device.Copier = (*Copier)(nil)
