package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/lakshaymaurya-felt/reclaim/internal/status"
)

var (
	statusRefresh int
	statusOnce    bool
	statusJSON    bool
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show disk usage and reclaimable space",
	Long:  "Dashboard of filesystem usage behind every category and how much each category would free.",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd, false)
		if err != nil {
			return err
		}
		defer a.close()

		ctx := cmd.Context()
		collect := func(ctx context.Context) (*status.Report, error) {
			return status.Collect(ctx, a.sess)
		}

		if statusOnce || statusJSON || !isTerminal() {
			r, err := collect(ctx)
			if err != nil {
				return err
			}
			if statusJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(r)
			}
			fmt.Fprintln(cmd.OutOrStdout(), status.Render(r))
			return nil
		}

		interval := time.Duration(statusRefresh) * time.Second
		p := tea.NewProgram(status.NewStatusModel(collect, interval), tea.WithAltScreen(), tea.WithContext(ctx))
		if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return err
		}
		return nil
	},
}

func init() {
	statusCmd.Flags().IntVar(&statusRefresh, "refresh", 5, "Refresh interval in seconds")
	statusCmd.Flags().BoolVar(&statusOnce, "once", false, "Print one snapshot and exit")
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Output the snapshot as JSON")
}
