package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/lakshaymaurya-felt/reclaim/internal/menu"
)

var (
	// Global flags
	configPath  string
	logFile     string
	verbose     bool
	debug       bool
	metricsFile string
	lockFile    string

	// Version info populated from main
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// SetVersionInfo sets build-time version information.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

var rootCmd = &cobra.Command{
	Use:   "reclaim [vacuum-days]",
	Short: "Clean CVP and system logs and unnecessary files",
	Long: `reclaim - Clean CVP and system logs and unnecessary files.

Removes rotated logs, crash dumps, leftover images, RPMs, heap dumps and
upgrade directories, and vacuums the systemd journal.

Run without arguments on a terminal for the interactive menu.
"reclaim N" is shorthand for "reclaim clean --all --vacuum-time N".`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			days, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("unknown command %q for %q", args[0], cmd.CommandPath())
			}
			return runClean(cmd, cleanOptions{all: true, journal: journalFlags{vacuumTime: days, vacuumSet: true}})
		}
		if !isTerminal() {
			return cmd.Help()
		}
		return runInteractiveMenu(cmd)
	},
}

// Execute runs the root command until it finishes or the process is
// interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "Settings file (default $XDG_CONFIG_HOME/reclaim/config.json)")
	pf.StringVar(&logFile, "logfile", "", "File to save logs to (default /var/log/cleanup.log as root)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Print additional messages to the console")
	pf.BoolVar(&debug, "debug", false, "Turn on debugging")
	pf.StringVar(&metricsFile, "metrics-textfile", "", "Write node_exporter textfile metrics to this path")
	pf.StringVar(&lockFile, "lock-file", "", "Lock file preventing concurrent runs")

	// Register all subcommands
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(journalCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(categoriesCmd)
	rootCmd.AddCommand(completionCmd)
	rootCmd.AddCommand(versionCmd)
}

func isTerminal() bool {
	out := os.Stdout.Fd()
	in := os.Stdin.Fd()
	return (isatty.IsTerminal(out) || isatty.IsCygwinTerminal(out)) &&
		(isatty.IsTerminal(in) || isatty.IsCygwinTerminal(in))
}

// runInteractiveMenu launches the full-screen category menu.
func runInteractiveMenu(cmd *cobra.Command) error {
	a, err := setup(cmd, true)
	if err != nil {
		return err
	}
	defer a.close()

	a.log.Info("--- Starting Cleanup in Interactive Mode ---")
	if err := menu.Run(cmd.Context(), a.sess, a.journalRequest(journalFlags{})); err != nil {
		return err
	}
	a.log.Infof("--- Ending Cleanup --- Freed %s", a.sess.Total())
	fmt.Fprintf(cmd.OutOrStdout(), "Freed %s\n", a.sess.Total())
	return nil
}
