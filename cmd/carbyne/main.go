package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/carbyne-dev/carbyne/internal/config"
	"github.com/carbyne-dev/carbyne/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(execute(os.Args[1:], os.Stderr))
}

// execute runs the CLI with args and reports a failure on stderr.
func execute(args []string, stderr io.Writer) int {
	cmd := rootCmd()
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		errors.Fprint(stderr, err)
		return 1
	}
	return 0
}

func rootCmd() *cobra.Command {
	var noColor bool

	cmd := &cobra.Command{
		Use:   "carbyne",
		Short: "Reactive UI tree runtime",
		Long: `carbyne drives a reactive UI tree: observables feed nodes whose
lifecycle (create, mount, unmount, destroy) is coordinated, including
asynchronous teardown.

The CLI serves a demo tree with a live inspector, or renders it once.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if noColor || os.Getenv("NO_COLOR") != "" {
				errors.DisableColors()
			}
		},
	}

	cmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	cmd.AddCommand(
		initCmd(),
		serveCmd(),
		renderCmd(),
		versionCmd(),
	)
	return cmd
}

// loadConfig reads path when given. Otherwise the config file is looked up
// in the working directory and its parents; without one the defaults apply.
func loadConfig(path string) (*config.Config, error) {
	return loadConfigFrom(".", path)
}

func loadConfigFrom(dir, path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	root, err := config.FindProjectRoot(dir)
	if err != nil {
		return config.Load(dir)
	}
	return config.Load(root)
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}
