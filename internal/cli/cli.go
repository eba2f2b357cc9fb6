// Package cli implements the atlas-archive command line.
package cli

import (
	"fmt"
	"io"
	"os"

	goflags "github.com/jessevdk/go-flags"
)

type commands struct {
	Run     *RunCommand
	Backup  *BackupCommand
	History *HistoryCommand
}

// buildParser constructs the go-flags parser with all subcommands registered.
func buildParser(version string, out io.Writer) (*goflags.Parser, *GlobalFlags, *commands) {
	var globals GlobalFlags

	parser := goflags.NewParser(&globals, goflags.Default)
	parser.Name = "atlas-archive"
	parser.LongDescription = "Watches a save folder and writes a timestamped zip backup after each burst of changes."

	cmds := &commands{
		Run:     &RunCommand{globals: &globals, version: version, out: out},
		Backup:  &BackupCommand{globals: &globals, out: out},
		History: &HistoryCommand{globals: &globals, out: out},
	}

	parser.AddCommand("run", "Watch the save folder", "Watch the save folder and back it up after changes settle. Stops on SIGINT/SIGTERM, reloads the config on SIGHUP.", cmds.Run)
	parser.AddCommand("backup", "Back up once", "Run the backup pipeline once for the given category, without watching.", cmds.Backup)
	parser.AddCommand("history", "Show recent backups", "Print the most recent entries of the backup journal.", cmds.History)

	return parser, &globals, cmds
}

// Run is the main entry point using os.Args.
func Run(version string) error {
	return RunWithArgs(version, nil)
}

// RunWithArgs parses the given args (or os.Args if nil) and executes the matched subcommand.
func RunWithArgs(version string, args []string) error {
	return runWithArgs(version, args, os.Stdout)
}

func runWithArgs(version string, args []string, out io.Writer) error {
	// --version is valid without a subcommand
	checkArgs := args
	if checkArgs == nil {
		checkArgs = os.Args[1:]
	}
	for _, arg := range checkArgs {
		if arg == "--version" {
			fmt.Fprintf(out, "atlas-archive %s\n", version)
			return nil
		}
		if arg == "--" {
			break
		}
	}

	parser, _, _ := buildParser(version, out)

	var err error
	if args != nil {
		_, err = parser.ParseArgs(args)
	} else {
		_, err = parser.Parse()
	}

	if err != nil {
		if flagsErr, ok := err.(*goflags.Error); ok && flagsErr.Type == goflags.ErrHelp {
			return nil
		}
		return err
	}
	return nil
}
