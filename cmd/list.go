package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/lakshaymaurya-felt/reclaim/internal/session"
	"github.com/lakshaymaurya-felt/reclaim/internal/ui"
)

var listSummary bool

var listCmd = &cobra.Command{
	Use:   "list [category...]",
	Short: "Show the files each category would remove",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd, false)
		if err != nil {
			return err
		}
		defer a.close()

		entries := a.sess.Categories()
		if len(args) > 0 {
			entries = entries[:0:0]
			for _, key := range args {
				e, ok := a.sess.Lookup(key)
				if !ok {
					return fmt.Errorf("%w %q (see \"reclaim categories\")", session.ErrUnknownCategory, key)
				}
				entries = append(entries, e)
			}
		}

		out := cmd.OutOrStdout()
		for _, e := range entries {
			e.Set.Refresh()
			files := e.Set.List()
			fmt.Fprintf(out, "%s %s  %s, %s files\n",
				ui.IconDiamond,
				ui.TitleStyle().Render(e.Category.Name),
				e.Set.PrettySize(),
				humanize.Comma(int64(len(files))))
			if listSummary {
				continue
			}
			for _, f := range files {
				fmt.Fprintf(out, "    %s\n", f)
			}
		}
		return nil
	},
}

func init() {
	listCmd.ValidArgsFunction = completeCategories(false)
	listCmd.Flags().BoolVar(&listSummary, "summary", false, "Only print the size of each category")
}
