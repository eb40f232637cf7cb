package cmd

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/lakshaymaurya-felt/reclaim/internal/core"
	"github.com/lakshaymaurya-felt/reclaim/internal/journal"
	"github.com/lakshaymaurya-felt/reclaim/internal/ui"
)

var journalOpts journalFlags

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Vacuum the system journal",
	Long: `Back up the systemd journal, then remove archived entries older than
--vacuum-time days with journalctl.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !core.HasJournal() {
			return errors.New("journalctl not found; this host has no systemd journal")
		}
		a, err := setup(cmd, true)
		if err != nil {
			return err
		}
		defer a.close()

		jf := journalOpts
		jf.vacuumSet = cmd.Flags().Changed("vacuum-time")
		freed, err := a.sess.Vacuum(cmd.Context(), a.journalRequest(jf))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s Freed %s\n", ui.SuccessStyle().Render(ui.IconCheck), freed)
		return nil
	},
}

var journalBackupsCmd = &cobra.Command{
	Use:   "backups",
	Short: "List journal backups",
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		dir := settings.BackupDir
		if journalOpts.backupDir != "" {
			dir = journalOpts.backupDir
		}

		backups, err := journal.ListBackups(dir)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(backups) == 0 {
			fmt.Fprintf(out, "No journal backups in %s\n", dir)
			return nil
		}

		t := ui.Table().Headers("Backup", "Size", "Taken")
		var total int64
		for _, b := range backups {
			name := b.Path
			if b.Compressed {
				name += " (zstd)"
			}
			t.Row(name, core.FormatSize(b.Size), humanize.Time(b.Time))
			total += b.Size
		}
		fmt.Fprintln(out, t.Render())
		fmt.Fprintf(out, "%d backups, %s\n", len(backups), core.FormatSize(total))
		return nil
	},
}

func init() {
	addJournalFlags(journalCmd, &journalOpts)
	journalBackupsCmd.Flags().StringVar(&journalOpts.backupDir, "backup-dir", "", "Directory holding journal backups")
	journalCmd.AddCommand(journalBackupsCmd)
}
