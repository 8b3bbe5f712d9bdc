package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: sheet2png <command> [flags] [args]")
	fmt.Fprintln(w, "       sheet2png <workbook.xlsx> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  export     Export every sheet of a workbook to PNG")
	fmt.Fprintln(w, "  doctor     Check Chrome and the environment")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'sheet2png help <command>' for details on a specific command.")
}

// printExportUsage prints usage for the export command.
func printExportUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: sheet2png export <workbook> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render the first table of every sheet to <output>/<sheet>.png.")
	fmt.Fprintln(w, "Spaces and path separators in sheet names become underscores.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  workbook  .xlsx or .xlsm file")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "  -o, --output <dir>        Output directory (default ./output)")
	fmt.Fprintln(w, "      --on-collision <s>    Duplicate names: overwrite (default), suffix")
	fmt.Fprintln(w, "      --report              Write index.md and index.html")
	fmt.Fprintln(w, "      --json                Print the run summary as JSON")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Rendering:")
	fmt.Fprintln(w, "  -s, --scale <f>           Device scale factor (default 2, max 8)")
	fmt.Fprintln(w, "      --viewport <WxH>      Browser window (default 1920x1080)")
	fmt.Fprintln(w, "  -t, --timeout <d>         Per-sheet render timeout (default 30s)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Style:")
	fmt.Fprintln(w, "      --style <name>        precise (default, no wrapping), standard")
	fmt.Fprintln(w, "      --css <file>          Extra CSS appended to the style")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "General:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors and the final summary")
	fmt.Fprintln(w, "  -v, --verbose             Show debug logs and timing")
	fmt.Fprintln(w, "      --no-color            Disable colored output")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  SHEET2PNG_CONFIG, SHEET2PNG_OUTPUT_DIR, SHEET2PNG_SCALE,")
	fmt.Fprintln(w, "  SHEET2PNG_TIMEOUT, SHEET2PNG_STYLE, SHEET2PNG_VIEWPORT")
	fmt.Fprintln(w, "  ROD_BROWSER_BIN    Chrome binary to use")
	fmt.Fprintln(w, "  ROD_NO_SANDBOX=1   Disable the Chrome sandbox (Docker/CI)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Precedence: flags > environment > config file > defaults.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Exit codes:")
	fmt.Fprintln(w, "  0  run completed (failed sheets are reported, not fatal)")
	fmt.Fprintln(w, "  1  unexpected error or interrupted")
	fmt.Fprintln(w, "  2  invalid flags or config")
	fmt.Fprintln(w, "  3  workbook missing or unreadable, output directory not creatable")
	fmt.Fprintln(w, "  4  Chrome could not be launched")
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: sheet2png doctor [--json]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check that Chrome can be found and launched in this environment.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "      --json    Print results as JSON")
}

// runHelpCmd prints help for a command.
func runHelpCmd(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	switch args[0] {
	case cmdExport:
		printExportUsage(env.Stdout)
	case cmdDoctor:
		printDoctorUsage(env.Stdout)
	case cmdVersion:
		fmt.Fprintln(env.Stdout, "Usage: sheet2png version")
	case cmdHelp:
		fmt.Fprintln(env.Stdout, "Usage: sheet2png help [command]")
	default:
		fmt.Fprintf(env.Stderr, "unknown command: %s\n\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}
