package config

import "time"

// Default returns a Config populated with all default values.
func Default() *Config {
	return &Config{
		VersionsToKeep:      50,
		IgnoreShaderCache:   true,
		DebugOutput:         false,
		BackupAutosaves:     true,
		BackupRestorePoints: true,
		BackupOther:         true,
		Watch: WatchConfig{
			Mode:           "auto",
			PollInterval:   2 * time.Second,
			DebounceWindow: 5 * time.Second,
		},
		Journal: JournalConfig{
			Enabled: true,
		},
		ConfigReload: ReloadConfig{
			Enabled:  false,
			Schedule: "@every 30s",
		},
	}
}
