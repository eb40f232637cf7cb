package cmd

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lakshaymaurya-felt/reclaim/internal/config"
	"github.com/lakshaymaurya-felt/reclaim/internal/session"
	"github.com/lakshaymaurya-felt/reclaim/internal/ui"
	"github.com/lakshaymaurya-felt/reclaim/pkg/whitelist"
)

var (
	categoriesGroup     string
	categoriesProtected bool
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List cleanup categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		if categoriesProtected {
			printProtected(cmd, settings.Protected)
			return nil
		}

		cats := settings.Categories
		if categoriesGroup != "" {
			cats = config.GetCategoriesByGroup(cats, categoriesGroup)
		}

		t := ui.Table().Headers("Key", "Name", "Default", "Directories", "Patterns")
		for _, c := range cats {
			def := ""
			switch {
			case c.Risky:
				def = ui.IconWarning
			case c.Default:
				def = ui.IconCheck
			}
			t.Row(c.Key, c.Name, def, strings.Join(c.Directories, "\n"), strings.Join(c.Patterns, " "))
		}
		if categoriesGroup == "" {
			t.Row(session.JournalKey, session.JournalName, ui.IconCheck, "", "journalctl --vacuum-time")
		}
		fmt.Fprintln(cmd.OutOrStdout(), t.Render())
		return nil
	},
}

func printProtected(cmd *cobra.Command, patterns []string) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, ui.TitleStyle().Render("Never removed"))
	for _, p := range whitelist.NeverDelete() {
		fmt.Fprintf(out, "  %s %s\n", ui.IconBullet, p)
	}
	if len(patterns) == 0 {
		return
	}
	fmt.Fprintln(out, ui.TitleStyle().Render("Protected patterns"))
	for _, p := range patterns {
		fmt.Fprintf(out, "  %s %s\n", ui.IconBullet, p)
	}
}

// completeCategories offers the configured category keys, plus the journal
// when withJournal is set, for positional arguments.
func completeCategories(withJournal bool) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		settings, err := loadSettings(cmd)
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		keys := config.Keys(settings.Categories)
		if withJournal {
			keys = append(keys, session.JournalKey)
		}
		var out []string
		for _, k := range keys {
			if strings.HasPrefix(k, toComplete) && !slices.Contains(args, k) {
				out = append(out, k)
			}
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	}
}

func init() {
	categoriesCmd.Flags().StringVar(&categoriesGroup, "group", "", "Only show one group (system, cvp, kubelet)")
	categoriesCmd.Flags().BoolVar(&categoriesProtected, "protected", false, "List the paths that are never removed")
}
