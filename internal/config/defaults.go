package config

const (
	defaultSiteName           = "zco.mx"
	defaultAnnounceURL        = "http://bt.zco.mx:6969/announce"
	defaultCreatorURLTemplate = "http://%d.zco.mx"
	defaultUploadsDir         = "~/.local/share/zcomx/uploads"
	defaultArchiveRoot        = "~/.local/share/zcomx/archive"
	defaultDataDir            = "~/.local/share/zcomx/data"
	defaultLogDir             = "~/.local/share/zcomx/logs"
	defaultPollSeconds        = 5
	defaultLockStaleSeconds   = 3600
	defaultMaxRequeues        = 25
	defaultDedupWindow        = 3600
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Site: Site{
			Name:               defaultSiteName,
			AnnounceURL:        defaultAnnounceURL,
			CreatorURLTemplate: defaultCreatorURLTemplate,
		},
		Paths: Paths{
			UploadsDir:  defaultUploadsDir,
			ArchiveRoot: defaultArchiveRoot,
			DataDir:     defaultDataDir,
			LogDir:      defaultLogDir,
		},
		Binaries: Binaries{
			SevenZip:      "7z",
			Mktorrent:     "mktorrent",
			Convert:       "convert",
			ZcP2P:         "zc-p2p",
			IndiciaScript: "zc-indicia",
			Nice:          "nice",
			Zcomx:         "zcomx",
		},
		Queue: Queue{
			PollIntervalSeconds: defaultPollSeconds,
			LockStaleSeconds:    defaultLockStaleSeconds,
			MaxRequeues:         defaultMaxRequeues,
		},
		Downloads: Downloads{
			DedupWindowSeconds: defaultDedupWindow,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
