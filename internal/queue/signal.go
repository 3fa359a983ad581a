package queue

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// SignalDaemon wakes the daemon by sending SIGUSR1 to the PID recorded in
// the daemon's PID file. Returns an error when no daemon appears to be
// running; callers treat that as informational.
func (s *Store) SignalDaemon() error {
	path := s.cfg.Paths.PIDFile
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("daemon pid file: %w", err)
	}
	pid, err := ReadLockPID(path)
	if err != nil {
		return err
	}
	if err := unix.Kill(pid, unix.SIGUSR1); err != nil {
		return fmt.Errorf("signal pid %d: %w", pid, err)
	}
	return nil
}
