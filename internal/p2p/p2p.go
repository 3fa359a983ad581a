// Package p2p notifies the peer-to-peer networks when a CBZ is published
// or withdrawn, by shelling out to the site's zc-p2p command.
package p2p

import (
	"context"
	"errors"
	"fmt"

	"zcomx/internal/config"
	"zcomx/internal/shellutil"
)

// ErrNotify signals the notifier command failed.
var ErrNotify = errors.New("p2p: notify failed")

// Notifier announces CBZ files to the configured networks.
type Notifier struct {
	cfg    *config.Config
	runner shellutil.Executor
}

// NewNotifier wires a notifier.
func NewNotifier(cfg *config.Config, runner shellutil.Executor) *Notifier {
	return &Notifier{cfg: cfg, runner: runner}
}

// Notify announces a published CBZ by absolute path.
func (n *Notifier) Notify(ctx context.Context, cbzPath string) error {
	return n.run(ctx, []string{cbzPath})
}

// NotifyDelete announces removal of a CBZ.
func (n *Notifier) NotifyDelete(ctx context.Context, cbzPath string) error {
	return n.run(ctx, []string{"--delete", cbzPath})
}

func (n *Notifier) run(ctx context.Context, args []string) error {
	if _, err := n.runner.Run(ctx, n.cfg.Binaries.ZcP2P, args); err != nil {
		var exitErr *shellutil.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("%w: %s", ErrNotify, exitErr.Stderr)
		}
		return fmt.Errorf("%w: %v", ErrNotify, err)
	}
	return nil
}
