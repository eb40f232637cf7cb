package cmd

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/lakshaymaurya-felt/reclaim/internal/config"
	"github.com/lakshaymaurya-felt/reclaim/internal/core"
	"github.com/lakshaymaurya-felt/reclaim/internal/session"
	"github.com/lakshaymaurya-felt/reclaim/internal/ui"
)

// abortWindow is how long automatic mode waits before touching current logs.
const abortWindow = 12 * time.Second

type cleanOptions struct {
	all           bool
	currentLogs   bool
	systemJournal bool
	dryRun        bool
	noWait        bool
	kubelet       string
	keys          []string
	journal       journalFlags
}

var cleanOpts cleanOptions

var cleanCmd = &cobra.Command{
	Use:   "clean [category...]",
	Short: "Free up disk space",
	Long: `Remove the files matched by the selected categories and vacuum the
system journal. Automatic mode does not ask for confirmation.

Categories are chosen by key (see "reclaim categories") or with --all,
which selects every default category plus the journal.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := cleanOpts
		opts.keys = args
		opts.journal.vacuumSet = cmd.Flags().Changed("vacuum-time")
		return runClean(cmd, opts)
	},
}

func init() {
	f := cleanCmd.Flags()
	f.BoolVar(&cleanOpts.all, "all", false, "Clean every default category and vacuum the journal")
	f.BoolVar(&cleanOpts.currentLogs, "current-logs", false, "Also remove current CVP logs (may hinder debugging)")
	f.StringVar(&cleanOpts.kubelet, "kubelet-logs", "", "Clean kubelet logs at level all|info|warning|error")
	f.BoolVar(&cleanOpts.systemJournal, "system-journal", false, "Vacuum the system journal")
	f.BoolVar(&cleanOpts.dryRun, "dry-run", false, "Show what would be freed without deleting")
	f.BoolVar(&cleanOpts.noWait, "no-wait", false, "Do not pause before removing current logs")
	addJournalFlags(cleanCmd, &cleanOpts.journal)
	cleanCmd.ValidArgsFunction = completeCategories(true)
}

// ─── Plan ────────────────────────────────────────────────────────────────────

// cleanPlan is the ordered work of one automatic run: regular categories in
// configuration order, then the journal, then risky categories.
type cleanPlan struct {
	keys    []string
	journal bool
	risky   []string
}

func (p cleanPlan) empty() bool {
	return len(p.keys) == 0 && !p.journal && len(p.risky) == 0
}

func buildPlan(categories []config.Category, o cleanOptions) (cleanPlan, error) {
	want := make(map[string]bool)
	known := make(map[string]bool, len(categories))
	for _, c := range categories {
		known[c.Key] = true
		if o.all && c.Default && !c.Risky {
			want[c.Key] = true
		}
		if o.currentLogs && c.Risky {
			want[c.Key] = true
		}
	}
	for _, k := range o.keys {
		if k == session.JournalKey {
			o.systemJournal = true
			continue
		}
		if !known[k] {
			return cleanPlan{}, fmt.Errorf("%w %q (see \"reclaim categories\")", session.ErrUnknownCategory, k)
		}
		want[k] = true
	}
	if o.kubelet != "" {
		k, err := config.KubeletKey(o.kubelet)
		if err != nil {
			return cleanPlan{}, err
		}
		want[k] = true
	}

	plan := cleanPlan{journal: o.all || o.systemJournal}
	for _, c := range categories {
		if !want[c.Key] {
			continue
		}
		if c.Risky {
			plan.risky = append(plan.risky, c.Key)
		} else {
			plan.keys = append(plan.keys, c.Key)
		}
	}
	if plan.empty() {
		return plan, errors.New("nothing selected: pass --all, --system-journal or category keys")
	}
	return plan, nil
}

// ─── Run ─────────────────────────────────────────────────────────────────────

func runClean(cmd *cobra.Command, o cleanOptions) error {
	a, err := setup(cmd, !o.dryRun)
	if err != nil {
		return err
	}
	defer a.close()

	plan, err := buildPlan(a.settings.Categories, o)
	if err != nil {
		return err
	}
	req := a.journalRequest(o.journal)
	if plan.journal {
		if err := req.Validate(); err != nil {
			return err
		}
	}

	if o.dryRun {
		a.sess.Refresh()
		printDryRun(cmd.OutOrStdout(), a.sess, plan, req.Retention())
		return nil
	}

	a.log.Warn("--- Starting Cleanup in Automatic mode ---")
	ctx := cmd.Context()

	for _, key := range plan.keys {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := a.sess.Clean(key, true); err != nil {
			return err
		}
	}

	if plan.journal {
		if _, err := a.sess.Vacuum(ctx, req); err != nil {
			return err
		}
	}

	if len(plan.risky) > 0 {
		if !o.noWait {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.WarningStyle().Render("WARNING! This may remove files that may be useful to debug issues."))
			fmt.Fprintln(out, "Press ctrl+c within 10 seconds to abort")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(abortWindow):
			}
		}
		for _, key := range plan.risky {
			if err := ctx.Err(); err != nil {
				return err
			}
			if _, err := a.sess.Clean(key, true); err != nil {
				return err
			}
		}
	}

	a.log.Warnf("--- Ending Cleanup --- Freed %s", a.sess.Total())
	return nil
}

func printDryRun(w io.Writer, sess *session.Session, plan cleanPlan, days int) {
	fmt.Fprintln(w, ui.TitleStyle().Render("Dry run: nothing will be removed"))
	var total int64
	show := func(key string) {
		e, ok := sess.Lookup(key)
		if !ok {
			return
		}
		total += e.Set.Size()
		fmt.Fprintf(w, "  %s %-28s %10s  %d files\n",
			ui.IconBullet, e.Category.Name, e.Set.PrettySize(), len(e.Set.List()))
	}
	for _, key := range plan.keys {
		show(key)
	}
	if plan.journal {
		fmt.Fprintf(w, "  %s %-28s %10s  entries older than %d days\n",
			ui.IconBullet, session.JournalName, "?", days)
	}
	for _, key := range plan.risky {
		show(key)
	}
	fmt.Fprintf(w, "Would free at least %s\n", core.FormatSize(total))
}
