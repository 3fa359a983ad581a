package main

import (
	"encoding/json"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"zcomx/internal/downloads"
	"zcomx/internal/fileutil"
	"zcomx/internal/logging"
	"zcomx/internal/torrents"
)

func newLogDownloadsCommand(cc *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "log-downloads",
		Short: "Roll pending download clicks into the aggregate counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cc.Config()
			if err != nil {
				return err
			}
			st, err := cc.Store()
			if err != nil {
				return err
			}
			logger := downloads.NewLogger(cfg, st, cc.Logger())
			_, err = logger.Drain(cmd.Context(), limit)
			return err
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 1000, "maximum clicks to process (0 for no cap)")
	return cmd
}

func newPurgeTorrentsCommand(cc *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "purge-torrents",
		Short: "Remove archived torrents no record points at",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cc.Config()
			if err != nil {
				return err
			}
			st, err := cc.Store()
			if err != nil {
				return err
			}
			removed, err := torrents.NewPurger(cfg, st, cc.Logger()).Purge(cmd.Context())
			if err != nil {
				return err
			}
			cc.Logger().Info("torrent purge finished", logging.Int("removed", len(removed)))
			return nil
		},
	}
}

// searchEntry is one row of the released-books listing cache.
type searchEntry struct {
	BookID      int64  `json:"book_id"`
	Title       string `json:"title"`
	CreatorID   int64  `json:"creator_id"`
	CreatorName string `json:"creator_name"`
	ReleaseDate string `json:"release_date"`
}

func newSearchPrefetchCommand(cc *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "search-prefetch",
		Short: "Rebuild the released-books listing cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cc.Config()
			if err != nil {
				return err
			}
			st, err := cc.Store()
			if err != nil {
				return err
			}

			books, err := st.ReleasedBooks(cmd.Context())
			if err != nil {
				return err
			}
			creatorNames := make(map[int64]string)
			entries := make([]searchEntry, 0, len(books))
			for _, book := range books {
				name, ok := creatorNames[book.CreatorID]
				if !ok {
					creator, err := st.CreatorByID(cmd.Context(), book.CreatorID)
					if err != nil {
						return err
					}
					name = creator.Name
					creatorNames[book.CreatorID] = name
				}
				entry := searchEntry{
					BookID:      book.ID,
					Title:       book.NameWithNumber(),
					CreatorID:   book.CreatorID,
					CreatorName: name,
				}
				if book.ReleaseDate != nil {
					entry.ReleaseDate = book.ReleaseDate.UTC().Format(time.DateOnly)
				}
				entries = append(entries, entry)
			}

			data, err := json.MarshalIndent(entries, "", "  ")
			if err != nil {
				return err
			}
			cachePath := filepath.Join(cfg.Paths.DataDir, "search_cache.json")
			if err := fileutil.WriteFileAtomic(cachePath, data, 0o644); err != nil {
				return err
			}
			cc.Logger().Info("search cache rebuilt",
				logging.Int("books", len(entries)),
				logging.String("path", cachePath),
			)
			return nil
		},
	}
}
