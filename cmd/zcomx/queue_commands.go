package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"zcomx/internal/queue"
)

func newQueueCommand(cc *commandContext) *cobra.Command {
	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect the work queue",
	}

	queueCmd.AddCommand(newQueueListCommand(cc))
	queueCmd.AddCommand(newQueueStatsCommand(cc))
	queueCmd.AddCommand(newQueueHistoryCommand(cc))

	return queueCmd
}

type queueListItem struct {
	ID       int64  `json:"id"`
	Priority int    `json:"priority"`
	Status   string `json:"status"`
	Start    string `json:"start"`
	Command  string `json:"command"`
}

func newQueueListCommand(cc *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List queued jobs in processing order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := cc.Queue()
			if err != nil {
				return err
			}
			jobs, err := q.ListJobs(cmd.Context())
			if err != nil {
				return err
			}

			items := make([]queueListItem, 0, len(jobs))
			for _, job := range jobs {
				items = append(items, queueListItem{
					ID:       job.ID,
					Priority: job.Priority,
					Status:   job.Status.String(),
					Start:    job.Start.UTC().Format(time.RFC3339),
					Command:  job.Command,
				})
			}

			if !stdoutIsTerminal() {
				return writeJSON(cmd, items)
			}
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Queue is empty")
				return nil
			}
			rows := make([][]string, 0, len(items))
			for _, item := range items {
				rows = append(rows, []string{
					strconv.FormatInt(item.ID, 10),
					strconv.Itoa(item.Priority),
					item.Status,
					item.Start,
					item.Command,
				})
			}
			table := renderTable(
				[]string{"ID", "Priority", "Status", "Start", "Command"},
				rows,
				0, 1,
			)
			fmt.Fprintln(cmd.OutOrStdout(), table)
			return nil
		},
	}
}

func newQueueStatsCommand(cc *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show queue counts per status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := cc.Queue()
			if err != nil {
				return err
			}
			stats, err := q.QueueStats(cmd.Context())
			if err != nil {
				return err
			}

			if !stdoutIsTerminal() {
				return writeJSON(cmd, map[string]int{
					"total":       stats.Total,
					"active":      stats.Active,
					"disabled":    stats.Disabled,
					"in_progress": stats.InProgress,
				})
			}
			rows := [][]string{
				{queue.StatusActive.String(), strconv.Itoa(stats.Active)},
				{queue.StatusDisabled.String(), strconv.Itoa(stats.Disabled)},
				{queue.StatusInProgress.String(), strconv.Itoa(stats.InProgress)},
				{"total", strconv.Itoa(stats.Total)},
			}
			table := renderTable([]string{"Status", "Count"}, rows, 1)
			fmt.Fprintln(cmd.OutOrStdout(), table)
			return nil
		},
	}
}

type queueHistoryItem struct {
	JobID    int64  `json:"job_id"`
	Command  string `json:"command"`
	Error    string `json:"error"`
	FailedAt string `json:"failed_at"`
}

func newQueueHistoryCommand(cc *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recently failed jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := cc.Queue()
			if err != nil {
				return err
			}
			entries, err := q.History(cmd.Context(), limit)
			if err != nil {
				return err
			}

			items := make([]queueHistoryItem, 0, len(entries))
			for _, entry := range entries {
				items = append(items, queueHistoryItem{
					JobID:    entry.JobID,
					Command:  entry.Command,
					Error:    entry.ErrorMessage,
					FailedAt: entry.FailedAt.UTC().Format(time.RFC3339),
				})
			}

			if !stdoutIsTerminal() {
				return writeJSON(cmd, items)
			}
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No failed jobs")
				return nil
			}
			rows := make([][]string, 0, len(items))
			for _, item := range items {
				rows = append(rows, []string{
					strconv.FormatInt(item.JobID, 10),
					item.Command,
					item.Error,
					item.FailedAt,
				})
			}
			table := renderTable(
				[]string{"Job", "Command", "Error", "Failed"},
				rows,
				0,
			)
			fmt.Fprintln(cmd.OutOrStdout(), table)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum entries to show")
	return cmd
}
