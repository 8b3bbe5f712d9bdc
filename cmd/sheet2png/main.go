package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/automaxprocs/maxprocs"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Command names.
const (
	cmdExport  = "export"
	cmdDoctor  = "doctor"
	cmdVersion = "version"
	cmdHelp    = "help"
)

// workbookExtensions are the inputs accepted by export.
var workbookExtensions = []string{".xlsx", ".xlsm"}

func main() {
	loadDotEnv(os.Stderr)

	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues safely.
	if hasVerboseFlag(os.Args[1:]) {
		_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
			fmt.Fprintf(os.Stderr, format+"\n", args...)
		}))
	} else {
		_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))
	}

	os.Exit(runMain(os.Args, DefaultEnv()))
}

// runMain dispatches to a command and returns the process exit code.
// args includes the program name.
func runMain(args []string, env *Environment) int {
	if len(args) < 2 {
		printUsage(env.Stderr)
		return ExitUsage
	}

	cmd, rest := args[1], args[2:]

	// Shorthand: sheet2png book.xlsx [flags]
	if !isCommand(cmd) && looksLikeWorkbook(cmd) {
		cmd, rest = cmdExport, args[1:]
	}

	switch cmd {
	case cmdExport:
		ctx, stop := notifyContext(context.Background())
		defer stop()
		return runExportCmd(ctx, rest, env)
	case cmdDoctor:
		return runDoctorCmd(rest, env)
	case cmdVersion:
		fmt.Fprintf(env.Stdout, "sheet2png %s\n", Version)
		return ExitSuccess
	case cmdHelp:
		return runHelpCmd(rest, env)
	case "-h", "--help":
		printUsage(env.Stdout)
		return ExitSuccess
	default:
		fmt.Fprintf(env.Stderr, "unknown command: %s\n\n", cmd)
		printUsage(env.Stderr)
		return ExitUsage
	}
}

func isCommand(s string) bool {
	switch s {
	case cmdExport, cmdDoctor, cmdVersion, cmdHelp:
		return true
	}
	return false
}

// looksLikeWorkbook reports whether s has a supported spreadsheet extension.
func looksLikeWorkbook(s string) bool {
	return slices.Contains(workbookExtensions, strings.ToLower(filepath.Ext(s)))
}

func hasVerboseFlag(args []string) bool {
	for _, a := range args {
		if a == "--" {
			return false
		}
		if a == "-v" || a == "--verbose" {
			return true
		}
	}
	return false
}
