//go:build linux || darwin || freebsd

package workspace

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// FreeBytes reports the space available to unprivileged writers on the
// filesystem holding scratch.
func (m *Manager) FreeBytes() (uint64, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(m.dir, &stat); err != nil {
		return 0, fmt.Errorf("statfs %s: %w", m.dir, err)
	}
	return uint64(stat.Bavail) * uint64(stat.Bsize), nil
}
