package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/mgaillard/shortforge/internal/types"
)

func fondsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fonds",
		Short: "Manage the background clip pool",
	}
	cmd.AddCommand(fondsStatsCmd(), fondsAddCmd())
	return cmd
}

func fondsStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Per-theme clip counts and average usage",
		Args:  cobra.NoArgs,
		RunE:  runFondsStats,
	}
}

func runFondsStats(cmd *cobra.Command, args []string) error {
	a, closer, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer closer()

	stats, err := a.st.ClipStats(cmd.Context())
	if err != nil {
		return err
	}
	if len(stats) == 0 {
		cmd.Println("pool is empty")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "THEME\tCLIPS\tAVG USAGE")
	for _, s := range stats {
		fmt.Fprintf(w, "%s\t%d\t%.1f\n", s.Theme, s.Count, s.AvgUsage)
	}
	return w.Flush()
}

func fondsAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <clip.mp4>",
		Short: "Register an already-downloaded clip in the pool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFondsAdd(cmd, args[0])
		},
	}
	cmd.Flags().String("theme", "", "Clip theme (required)")
	cmd.Flags().String("source", "local", "Where the clip came from")
	cmd.Flags().String("url", "", "Origin URL, if any")
	cmd.MarkFlagRequired("theme")
	return cmd
}

func runFondsAdd(cmd *cobra.Command, path string) error {
	a, closer, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer closer()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return err
	}

	// The allocator resolves clips by filename under the pool directory,
	// so a clip registered from elsewhere is copied in.
	if err := os.MkdirAll(a.cfg.Fonds.Dir, 0o755); err != nil {
		return err
	}
	dest, err := filepath.Abs(filepath.Join(a.cfg.Fonds.Dir, filepath.Base(abs)))
	if err != nil {
		return err
	}
	if dest != abs {
		if err := copyClip(abs, dest); err != nil {
			return fmt.Errorf("copy clip into pool: %w", err)
		}
	}

	theme, _ := cmd.Flags().GetString("theme")
	source, _ := cmd.Flags().GetString("source")
	url, _ := cmd.Flags().GetString("url")

	clip := types.BackgroundClip{
		Filename:   filepath.Base(abs),
		Theme:      theme,
		Source:     source,
		URL:        url,
		FileSize:   info.Size(),
		Downloaded: time.Now(),
	}
	if d, err := a.tool.ProbeDuration(cmd.Context(), abs); err == nil {
		clip.Duration = d
	}

	id, err := a.st.AddClip(cmd.Context(), clip)
	if err != nil {
		return err
	}
	cmd.Printf("added %s as fond %d (theme %s)\n", clip.Filename, id, theme)
	return nil
}

func copyClip(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	return out.Close()
}
