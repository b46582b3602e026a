//go:build !linux && !darwin && !freebsd

package workspace

import "errors"

// FreeBytes is unsupported on this platform.
func (m *Manager) FreeBytes() (uint64, error) {
	return 0, errors.New("free space check unsupported on this platform")
}
