package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateSite(); err != nil {
		return err
	}
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateBinaries(); err != nil {
		return err
	}
	if err := c.validateQueue(); err != nil {
		return err
	}
	if c.Downloads.DedupWindowSeconds < 0 {
		return errors.New("downloads.dedup_window_seconds must not be negative")
	}
	return nil
}

func (c *Config) validateSite() error {
	if strings.TrimSpace(c.Site.Name) == "" {
		return errors.New("site.name must be set")
	}
	if strings.TrimSpace(c.Site.AnnounceURL) == "" {
		return errors.New("site.announce_url must be set")
	}
	if !strings.Contains(c.Site.CreatorURLTemplate, "%d") {
		return errors.New("site.creator_url_template must contain %d")
	}
	return nil
}

func (c *Config) validatePaths() error {
	required := map[string]string{
		"paths.uploads_dir":  c.Paths.UploadsDir,
		"paths.archive_root": c.Paths.ArchiveRoot,
		"paths.data_dir":     c.Paths.DataDir,
		"paths.log_dir":      c.Paths.LogDir,
	}
	for key, value := range required {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%s must be set", key)
		}
	}
	return nil
}

func (c *Config) validateBinaries() error {
	required := map[string]string{
		"binaries.sevenzip":       c.Binaries.SevenZip,
		"binaries.mktorrent":      c.Binaries.Mktorrent,
		"binaries.zc_p2p":         c.Binaries.ZcP2P,
		"binaries.indicia_script": c.Binaries.IndiciaScript,
		"binaries.zcomx":          c.Binaries.Zcomx,
	}
	for key, value := range required {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%s must be set", key)
		}
	}
	return nil
}

func (c *Config) validateQueue() error {
	if c.Queue.PollIntervalSeconds <= 0 {
		return errors.New("queue.poll_interval_seconds must be positive")
	}
	if c.Queue.LockStaleSeconds < 0 {
		return errors.New("queue.lock_stale_seconds must not be negative")
	}
	if c.Queue.MaxRequeues <= 0 {
		return errors.New("queue.max_requeues must be positive")
	}
	return nil
}
