package cli

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mgaillard/shortforge/internal/logging"
)

func purgeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete leftover scratch directories older than N days",
		Args:  cobra.NoArgs,
		RunE:  runPurge,
	}
	cmd.Flags().Int("days", 7, "Age threshold in days")
	cmd.Flags().Bool("dry-run", false, "Only report what would be deleted")
	return cmd
}

// runPurge sweeps the work directory for build-* scratch dirs that a
// crashed run left behind. Normal runs clean up after themselves; this is
// the janitor for abnormal exits.
func runPurge(cmd *cobra.Command, args []string) error {
	a, closer, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer closer()

	days, _ := cmd.Flags().GetInt("days")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	cutoff := time.Now().AddDate(0, 0, -days)
	log := logging.WithComponent("purge")

	workDir := a.cfg.WorkDir
	if workDir == "" {
		workDir = os.TempDir()
	}
	entries, err := os.ReadDir(workDir)
	if err != nil {
		return err
	}

	removed := 0
	for _, e := range entries {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), "build-") {
			continue
		}
		info, err := e.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(workDir, e.Name())
		if dryRun {
			cmd.Printf("would remove %s\n", path)
			removed++
			continue
		}
		if err := os.RemoveAll(path); err != nil {
			log.Warn().Err(err).Str("dir", path).Msg("purge failed")
			continue
		}
		removed++
	}
	cmd.Printf("%d scratch dirs\n", removed)
	return nil
}
