package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const version = "1.0.0"

func newRootCommand() *cobra.Command {
	var configFlag string
	var verbosity int
	var manFlag bool

	ctx := newCommandContext(&configFlag, &verbosity)

	rootCmd := &cobra.Command{
		Use:           "zcomx",
		Short:         "zco.mx publishing pipeline entry points",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if manFlag {
				return pflag.ErrHelp
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "configuration file path")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase log verbosity (-v info, -vv debug)")
	rootCmd.PersistentFlags().BoolVar(&manFlag, "man", false, "show the full help for the command")

	rootCmd.AddCommand(newSetBookCompletedCommand(ctx))
	rootCmd.AddCommand(newFileshareBookCommand(ctx))
	rootCmd.AddCommand(newPostBookCompletedCommand(ctx))
	rootCmd.AddCommand(newCreateCBZCommand(ctx))
	rootCmd.AddCommand(newCreateTorrentCommand(ctx))
	rootCmd.AddCommand(newNotifyP2PCommand(ctx))
	rootCmd.AddCommand(newUpdateCreatorIndiciaCommand(ctx))
	rootCmd.AddCommand(newProcessImgCommand(ctx))
	rootCmd.AddCommand(newLogDownloadsCommand(ctx))
	rootCmd.AddCommand(newPurgeTorrentsCommand(ctx))
	rootCmd.AddCommand(newSearchPrefetchCommand(ctx))
	rootCmd.AddCommand(newDeleteBookCommand(ctx))
	rootCmd.AddCommand(newQueueCommand(ctx))

	// Every entry point answers --version, not just the root.
	for _, sub := range rootCmd.Commands() {
		sub.Version = version
	}

	return rootCmd
}
