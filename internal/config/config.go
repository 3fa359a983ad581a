// Package config loads and validates the zco.mx backbone configuration.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Site contains site identity settings shared by the artifact builders.
type Site struct {
	// Name is the public site name used in archive layout and CBZ comments.
	Name string `toml:"name"`
	// AnnounceURL is the BitTorrent tracker announce URL.
	AnnounceURL string `toml:"announce_url"`
	// CreatorURLTemplate renders a creator home URL from a creator id, e.g.
	// "http://%d.zco.mx".
	CreatorURLTemplate string `toml:"creator_url_template"`
}

// Paths contains directory configuration.
type Paths struct {
	UploadsDir  string `toml:"uploads_dir"`
	ArchiveRoot string `toml:"archive_root"`
	DataDir     string `toml:"data_dir"`
	LogDir      string `toml:"log_dir"`
	PIDFile     string `toml:"pid_file"`
}

// Binaries contains paths to the external tools the builders shell out to.
type Binaries struct {
	SevenZip      string `toml:"sevenzip"`
	Mktorrent     string `toml:"mktorrent"`
	Convert       string `toml:"convert"`
	ZcP2P         string `toml:"zc_p2p"`
	IndiciaScript string `toml:"indicia_script"`
	Nice          string `toml:"nice"`
	// Zcomx is the CLI binary queued job commands dispatch through.
	Zcomx string `toml:"zcomx"`
}

// Queue contains daemon timing and requeue settings.
type Queue struct {
	PollIntervalSeconds int `toml:"poll_interval_seconds"`
	LockStaleSeconds    int `toml:"lock_stale_seconds"`
	MaxRequeues         int `toml:"max_requeues"`
}

// Downloads contains download click logging settings.
type Downloads struct {
	// DedupWindowSeconds is the interval within which repeat clicks from the
	// same (ip, user, record) are not counted.
	DedupWindowSeconds int `toml:"dedup_window_seconds"`
}

// Logging contains log output configuration.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for the publishing backbone.
type Config struct {
	Site      Site      `toml:"site"`
	Paths     Paths     `toml:"paths"`
	Binaries  Binaries  `toml:"binaries"`
	Queue     Queue     `toml:"queue"`
	Downloads Downloads `toml:"downloads"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/zcomx/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The second return is
// the resolved path, the third reports whether the file existed.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// WriteSample writes the embedded sample configuration to path, creating
// parent directories. Fails when the file already exists.
func WriteSample(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	return os.WriteFile(path, []byte(sampleConfig), 0o644)
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("zcomx.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.UploadsDir, c.Paths.ArchiveRoot, c.Paths.DataDir, c.Paths.LogDir, c.TempDir()} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// DatabasePath returns the path of the SQLite database holding records and
// the job queue.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.DataDir, "zcomx.db")
}

// TempDir returns the working temp directory under the uploads area.
func (c *Config) TempDir() string {
	return filepath.Join(c.Paths.UploadsDir, "tmp")
}

// CreatorURL renders the public creator URL for a creator id.
func (c *Config) CreatorURL(creatorID int64) string {
	return fmt.Sprintf(c.Site.CreatorURLTemplate, creatorID)
}

func (c *Config) normalize() error {
	paths := []*string{
		&c.Paths.UploadsDir,
		&c.Paths.ArchiveRoot,
		&c.Paths.DataDir,
		&c.Paths.LogDir,
		&c.Paths.PIDFile,
	}
	for _, p := range paths {
		if strings.TrimSpace(*p) == "" {
			continue
		}
		expanded, err := expandPath(*p)
		if err != nil {
			return err
		}
		*p = expanded
	}
	if strings.TrimSpace(c.Paths.PIDFile) == "" {
		c.Paths.PIDFile = filepath.Join(c.Paths.LogDir, "zcomxd.pid")
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}
