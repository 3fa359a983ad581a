package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"zcomx/internal/logging"
	"zcomx/internal/queue"
	"zcomx/internal/queuers"
	"zcomx/internal/release"
	"zcomx/internal/requeue"
)

// pipelineRunner is the surface shared by every release-state runner.
type pipelineRunner interface {
	Run(ctx context.Context) ([]*queue.Job, error)
	NeedsRequeue() bool
}

// requeueFlags are the shared attempt-counter options of the requeue-capable
// entry points.
type requeueFlags struct {
	requeues    int
	maxRequeues int
	reverse     bool
}

func (f *requeueFlags) register(cmd *cobra.Command, withReverse bool) {
	cmd.Flags().IntVarP(&f.requeues, "requeues", "r", 0, "requeue attempts so far")
	cmd.Flags().IntVarP(&f.maxRequeues, "max-requeues", "m", 0, "maximum requeue attempts")
	if withReverse {
		cmd.Flags().BoolVar(&f.reverse, "reverse", false, "reverse the pipeline")
	}
}

// runPipeline executes a runner pass and schedules the next attempt when
// the runner delegated work. A tripped requeue cap is reported as stuck
// and exits 0 so the daemon stops retrying the job.
func runPipeline(cmd *cobra.Command, cc *commandContext, runner pipelineRunner, next *queuers.Queuer, flags requeueFlags) error {
	logger := cc.Logger()

	queued, err := runner.Run(cmd.Context())
	var barrierErr *release.BarrierError
	if errors.As(err, &barrierErr) {
		for _, barrier := range barrierErr.Barriers {
			logger.Warn("pipeline blocked",
				logging.String("barrier", barrier.Code),
				logging.String("reason", barrier.Reason),
			)
		}
		return err
	}
	if err != nil {
		return err
	}
	for _, job := range queued {
		logger.Info("job enqueued",
			logging.Int64(logging.FieldJobID, job.ID),
			logging.String(logging.FieldCommand, job.Command),
		)
	}

	if !runner.NeedsRequeue() || next == nil {
		return nil
	}
	if _, err := requeue.New(next, flags.requeues, flags.maxRequeues).Requeue(cmd.Context()); err != nil {
		if errors.Is(err, requeue.ErrMaxRequeues) {
			logger.Error("pipeline stuck: requeue cap reached, operator intervention required",
				logging.Int("requeues", flags.requeues),
			)
			return nil
		}
		return err
	}
	return nil
}

func newSetBookCompletedCommand(cc *commandContext) *cobra.Command {
	var flags requeueFlags

	cmd := &cobra.Command{
		Use:   "set-book-completed BOOK_ID",
		Short: "Drive a book through the complete pipeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bookID, err := parseID(args[0])
			if err != nil {
				return err
			}
			deps, err := releaseDeps(cc)
			if err != nil {
				return err
			}
			book, creator, err := bookAndCreator(cmd.Context(), deps.Store, bookID)
			if err != nil {
				return err
			}

			if flags.reverse {
				return runPipeline(cmd, cc, release.NewUnreleaseBook(deps, book, creator), nil, flags)
			}
			next := queuers.NewSetBookCompleted(deps.Queue, bookID)
			return runPipeline(cmd, cc, release.NewReleaseBook(deps, book, creator), next, flags)
		},
	}
	flags.register(cmd, true)
	return cmd
}

func newFileshareBookCommand(cc *commandContext) *cobra.Command {
	var flags requeueFlags

	cmd := &cobra.Command{
		Use:   "fileshare-book BOOK_ID",
		Short: "Drive a completed book through the fileshare pipeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bookID, err := parseID(args[0])
			if err != nil {
				return err
			}
			deps, err := releaseDeps(cc)
			if err != nil {
				return err
			}
			book, creator, err := bookAndCreator(cmd.Context(), deps.Store, bookID)
			if err != nil {
				return err
			}

			if flags.reverse {
				return runPipeline(cmd, cc, release.NewUnfileshareBook(deps, book, creator), nil, flags)
			}
			next := queuers.NewFileshareBook(deps.Queue, bookID)
			return runPipeline(cmd, cc, release.NewFileshareBook(deps, book, creator), next, flags)
		},
	}
	flags.register(cmd, true)
	return cmd
}

func newPostBookCompletedCommand(cc *commandContext) *cobra.Command {
	var flags requeueFlags

	cmd := &cobra.Command{
		Use:   "post-book-completed BOOK_ID",
		Short: "Settle the completed-book announcement post ids",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bookID, err := parseID(args[0])
			if err != nil {
				return err
			}
			deps, err := releaseDeps(cc)
			if err != nil {
				return err
			}
			book, creator, err := bookAndCreator(cmd.Context(), deps.Store, bookID)
			if err != nil {
				return err
			}
			return runPipeline(cmd, cc, release.NewPostBookCompleted(deps, book, creator), nil, flags)
		},
	}
	flags.register(cmd, false)
	return cmd
}

func newDeleteBookCommand(cc *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-book BOOK_ID",
		Short: "Retire a book: archive its CBZ and delete its records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bookID, err := parseID(args[0])
			if err != nil {
				return err
			}
			deps, err := releaseDeps(cc)
			if err != nil {
				return err
			}
			book, creator, err := bookAndCreator(cmd.Context(), deps.Store, bookID)
			if err != nil {
				return err
			}
			return runPipeline(cmd, cc, release.NewDeleteBook(deps, book, creator), nil, requeueFlags{})
		},
	}
}
