package queue

import (
	"context"
	"errors"
	"fmt"

	"zcomx/internal/shellutil"
)

// RunJob tokenizes the job's command and executes it. The leading "zcomx"
// token is resolved to the configured CLI binary so queued commands stay
// portable across installs. Returns the captured output; a nonzero exit
// surfaces as a shellutil.ExitError.
func (s *Store) RunJob(ctx context.Context, exec shellutil.Executor, job *Job) (shellutil.Result, error) {
	if job == nil {
		return shellutil.Result{}, errors.New("job is nil")
	}
	tokens, err := shellutil.Split(job.Command)
	if err != nil {
		return shellutil.Result{}, fmt.Errorf("tokenize command: %w", err)
	}
	if len(tokens) == 0 {
		return shellutil.Result{}, errors.New("job command is empty")
	}
	binary := tokens[0]
	if binary == "zcomx" && s.cfg.Binaries.Zcomx != "" {
		binary = s.cfg.Binaries.Zcomx
	}
	return exec.Run(ctx, binary, tokens[1:])
}
