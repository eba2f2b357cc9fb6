package config

import "time"

// Config is the full set of recognized options. Defaults come from Default().
type Config struct {
	SourceFolder        string `yaml:"sourceFolder" validate:"required"`
	BackupFolder        string `yaml:"backupFolder" validate:"required"`
	VersionsToKeep      int    `yaml:"versionsToKeep" validate:"min=1"`
	IgnoreShaderCache   bool   `yaml:"ignoreShaderCache"`
	DebugOutput         bool   `yaml:"debugOutput"`
	BackupAutosaves     bool   `yaml:"backupAutosaves"`
	BackupRestorePoints bool   `yaml:"backupRestorePoints"`
	BackupOther         bool   `yaml:"backupOther"`

	Watch        WatchConfig   `yaml:"watch"`
	Journal      JournalConfig `yaml:"journal"`
	ConfigReload ReloadConfig  `yaml:"configReload"`
}

type WatchConfig struct {
	Mode           string        `yaml:"mode" validate:"oneof=auto poll fsnotify"`
	PollInterval   time.Duration `yaml:"pollInterval" validate:"gt=0"`   // e.g. 2s
	DebounceWindow time.Duration `yaml:"debounceWindow" validate:"gt=0"` // e.g. 5s
}

type JournalConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"` // empty: inside the backup folder
}

type ReloadConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Schedule string `yaml:"schedule"` // cron expression, e.g. "@every 30s"
}

// JournalFile is the journal database name used when Journal.Path is empty.
const JournalFile = ".atlas-archive.db"
