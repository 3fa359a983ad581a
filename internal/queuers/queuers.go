// Package queuers builds queue jobs for each background command: it
// validates CLI options against a per-command allow-list, composes the
// shell command string with proper quoting, and inserts the job at the
// command's fixed priority.
package queuers

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"zcomx/internal/queue"
	"zcomx/internal/shellutil"
)

var (
	// ErrInvalidCLIOption signals a CLI option not in the command's allow-list.
	ErrInvalidCLIOption = errors.New("queuers: invalid cli option")

	// ErrInvalidJobOption signals a job option with an unusable value.
	ErrInvalidJobOption = errors.New("queuers: invalid job option")
)

// Spec declares one queueable command: its program, default options, and
// the options callers may set.
type Spec struct {
	Kind      string
	Program   string
	JobOpts   JobOptions
	CLIOpts   map[string]any
	ValidOpts []string
}

// JobOptions are the queue-row fields a queuer may preset.
type JobOptions struct {
	Status queue.Status
}

// Queuer assembles and enqueues one job. CLIOpts overlay the Spec's
// default options; CLIArgs are appended after all options.
type Queuer struct {
	Spec    Spec
	Store   *queue.Store
	CLIOpts map[string]any
	CLIArgs []string
	JobOpts JobOptions
	Delay   time.Duration
}

// Command composes the shell command: program, options in sorted flag
// order, then args. Option values and args are shell-quoted. Bool true
// emits the bare flag, false omits it; a slice emits the flag once per
// element.
func (qr *Queuer) Command() (string, error) {
	opts, err := qr.mergedOpts()
	if err != nil {
		return "", err
	}

	parts := []string{qr.Spec.Program}
	flags := make([]string, 0, len(opts))
	for flag := range opts {
		flags = append(flags, flag)
	}
	sort.Strings(flags)
	for _, flag := range flags {
		switch value := opts[flag].(type) {
		case nil:
		case bool:
			if value {
				parts = append(parts, flag)
			}
		case string:
			parts = append(parts, flag, shellutil.Quote(value))
		case []string:
			for _, item := range value {
				parts = append(parts, flag, shellutil.Quote(item))
			}
		default:
			parts = append(parts, flag, shellutil.Quote(fmt.Sprint(value)))
		}
	}
	for _, arg := range qr.CLIArgs {
		parts = append(parts, shellutil.Quote(arg))
	}
	return strings.Join(parts, " "), nil
}

func (qr *Queuer) mergedOpts() (map[string]any, error) {
	valid := make(map[string]struct{}, len(qr.Spec.ValidOpts))
	for _, flag := range qr.Spec.ValidOpts {
		valid[flag] = struct{}{}
	}
	merged := make(map[string]any, len(qr.Spec.CLIOpts)+len(qr.CLIOpts))
	for flag, value := range qr.Spec.CLIOpts {
		merged[flag] = value
	}
	for flag, value := range qr.CLIOpts {
		merged[flag] = value
	}
	for flag := range merged {
		if _, ok := valid[flag]; !ok {
			return nil, fmt.Errorf("%w: %s not valid for %s", ErrInvalidCLIOption, flag, qr.Spec.Kind)
		}
	}
	return merged, nil
}

// JobData builds the queue row without inserting it: command from
// Command(), priority from the fixed command ordering, start shifted by
// the delay.
func (qr *Queuer) JobData() (*queue.Job, error) {
	command, err := qr.Command()
	if err != nil {
		return nil, err
	}
	priority, err := queue.PriorityFor(qr.Spec.Kind)
	if err != nil {
		return nil, err
	}
	status := qr.Spec.JobOpts.Status
	if qr.JobOpts.Status != "" {
		status = qr.JobOpts.Status
	}
	if status == "" {
		status = queue.StatusActive
	}
	if _, ok := queue.ParseStatus(string(status)); !ok {
		return nil, fmt.Errorf("%w: status %q", ErrInvalidJobOption, status)
	}
	now := time.Now().UTC()
	return &queue.Job{
		Command:    command,
		Priority:   priority,
		Start:      now.Add(qr.Delay),
		Status:     status,
		QueuedTime: now,
	}, nil
}

// Queue inserts the assembled job.
func (qr *Queuer) Queue(ctx context.Context) (*queue.Job, error) {
	job, err := qr.JobData()
	if err != nil {
		return nil, err
	}
	return qr.Store.AddJob(ctx, job)
}
