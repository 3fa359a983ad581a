package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"zcomx/internal/cbz"
	"zcomx/internal/images"
	"zcomx/internal/indicia"
	"zcomx/internal/logging"
	"zcomx/internal/p2p"
	"zcomx/internal/queuers"
	"zcomx/internal/shellutil"
	"zcomx/internal/torrents"
)

func newCreateCBZCommand(cc *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "create-cbz BOOK_ID",
		Short: "Build a book's CBZ and move it into the archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bookID, err := parseID(args[0])
			if err != nil {
				return err
			}
			cfg, err := cc.Config()
			if err != nil {
				return err
			}
			st, err := cc.Store()
			if err != nil {
				return err
			}
			book, err := st.BookByID(cmd.Context(), bookID)
			if err != nil {
				return err
			}

			runner := shellutil.Runner{NiceBinary: cfg.Binaries.Nice}
			builder := cbz.NewBuilder(cfg, st, runner, indicia.NewRenderer(cfg, st, runner))
			path, err := builder.Build(cmd.Context(), book)
			if err != nil {
				return err
			}
			cc.Logger().Info("cbz created",
				logging.Int64(logging.FieldBookID, book.ID),
				logging.String("path", path),
			)
			return nil
		},
	}
}

func newCreateTorrentCommand(cc *commandContext) *cobra.Command {
	var allFlag bool
	var creatorFlag bool

	cmd := &cobra.Command{
		Use:   "create-torrent [BOOK_ID | --creator CREATOR_ID | --all]",
		Short: "Build a book, creator, or whole-site torrent",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cc.Config()
			if err != nil {
				return err
			}
			st, err := cc.Store()
			if err != nil {
				return err
			}
			builder := torrents.NewBuilder(cfg, st, shellutil.Runner{NiceBinary: cfg.Binaries.Nice})

			var path string
			switch {
			case allFlag:
				path, err = builder.BuildAll(cmd.Context())
			case creatorFlag:
				if len(args) != 1 {
					return fmt.Errorf("--creator requires a creator id argument")
				}
				creatorID, idErr := parseID(args[0])
				if idErr != nil {
					return idErr
				}
				creator, getErr := st.CreatorByID(cmd.Context(), creatorID)
				if getErr != nil {
					return getErr
				}
				path, err = builder.BuildCreator(cmd.Context(), creator)
			default:
				if len(args) != 1 {
					return fmt.Errorf("a book id argument is required")
				}
				bookID, idErr := parseID(args[0])
				if idErr != nil {
					return idErr
				}
				book, getErr := st.BookByID(cmd.Context(), bookID)
				if getErr != nil {
					return getErr
				}
				path, err = builder.BuildBook(cmd.Context(), book)
			}
			if err != nil {
				return err
			}
			cc.Logger().Info("torrent created", logging.String("path", path))
			return nil
		},
	}
	cmd.Flags().BoolVar(&allFlag, "all", false, "build the whole-site torrent")
	cmd.Flags().BoolVar(&creatorFlag, "creator", false, "build a creator torrent")
	return cmd
}

func newNotifyP2PCommand(cc *commandContext) *cobra.Command {
	var deleteFlag bool

	cmd := &cobra.Command{
		Use:   "notify-p2p-networks CBZ_PATH",
		Short: "Announce a CBZ to the peer-to-peer networks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cc.Config()
			if err != nil {
				return err
			}
			notifier := p2p.NewNotifier(cfg, shellutil.Runner{})
			if deleteFlag {
				return notifier.NotifyDelete(cmd.Context(), args[0])
			}
			return notifier.Notify(cmd.Context(), args[0])
		},
	}
	cmd.Flags().BoolVar(&deleteFlag, "delete", false, "announce the CBZ's removal")
	return cmd
}

func newUpdateCreatorIndiciaCommand(cc *commandContext) *cobra.Command {
	var optimizeFlag bool
	var rerenderFlag bool

	cmd := &cobra.Command{
		Use:   "update-creator-indicia CREATOR_ID",
		Short: "Render a creator's portrait and landscape indicia images",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			creatorID, err := parseID(args[0])
			if err != nil {
				return err
			}
			cfg, err := cc.Config()
			if err != nil {
				return err
			}
			st, err := cc.Store()
			if err != nil {
				return err
			}
			creator, err := st.CreatorByID(cmd.Context(), creatorID)
			if err != nil {
				return err
			}

			if rerenderFlag {
				for _, img := range []string{creator.IndiciaPortrait, creator.IndiciaLandscape} {
					if img == "" {
						continue
					}
					if err := st.ClearOptimizeLog(cmd.Context(), img); err != nil {
						return err
					}
				}
			}

			renderer := indicia.NewRenderer(cfg, st, shellutil.Runner{NiceBinary: cfg.Binaries.Nice})
			if err := renderer.UpdateCreator(cmd.Context(), creator); err != nil {
				return err
			}

			if optimizeFlag {
				q, err := cc.Queue()
				if err != nil {
					return err
				}
				for _, img := range []string{creator.IndiciaPortrait, creator.IndiciaLandscape} {
					if img == "" {
						continue
					}
					if _, err := queuers.NewOptimizeImg(q, img).Queue(cmd.Context()); err != nil {
						return err
					}
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&optimizeFlag, "optimize", "o", false, "enqueue optimization of the rendered images")
	cmd.Flags().BoolVarP(&rerenderFlag, "resize", "r", false, "discard existing sized variants before rendering")
	return cmd
}

func newProcessImgCommand(cc *commandContext) *cobra.Command {
	var sizeFlag string
	var deleteFlag bool

	cmd := &cobra.Command{
		Use:   "process-img IMAGE...",
		Short: "Produce sized variants of uploaded images, or delete them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cc.Config()
			if err != nil {
				return err
			}
			st, err := cc.Store()
			if err != nil {
				return err
			}
			proc := images.NewProcessor(cfg, st, shellutil.Runner{NiceBinary: cfg.Binaries.Nice}, cc.Logger())

			for _, name := range args {
				if deleteFlag {
					if err := proc.Delete(cmd.Context(), name); err != nil {
						return err
					}
					continue
				}
				var sizes []string
				if sizeFlag != "" {
					sizes = append(sizes, sizeFlag)
				}
				if err := proc.Process(cmd.Context(), name, sizes...); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&sizeFlag, "size", "", "produce only this size (original, web, cbz)")
	cmd.Flags().BoolVar(&deleteFlag, "delete", false, "delete the images' variants instead")
	return cmd
}
