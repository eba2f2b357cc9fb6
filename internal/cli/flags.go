package cli

import "io"

// GlobalFlags holds flags available to all subcommands.
type GlobalFlags struct {
	Verbose bool `short:"v" long:"verbose" description:"Enable debug output regardless of the config"`
	Version bool `long:"version" description:"Show version and exit"`
}

// ConfigArg is the positional config file path shared by every subcommand.
type ConfigArg struct {
	Config string `positional-arg-name:"config" description:"Path to the YAML config file"`
}

// RunCommand watches the source folder until interrupted.
type RunCommand struct {
	Args ConfigArg `positional-args:"yes" required:"yes"`

	globals *GlobalFlags
	version string
	out     io.Writer
}

// BackupCommand runs the backup pipeline once without watching.
type BackupCommand struct {
	Category string `long:"category" description:"Backup category: General | Undelete | RestorePoint | AutoSave | Other" default:"General"`

	Args ConfigArg `positional-args:"yes" required:"yes"`

	globals *GlobalFlags
	out     io.Writer
}

// HistoryCommand prints the most recent journal entries.
type HistoryCommand struct {
	Limit int `long:"limit" description:"Maximum entries" default:"20"`

	Args ConfigArg `positional-args:"yes" required:"yes"`

	globals *GlobalFlags
	out     io.Writer
}
