package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func statsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Analytics: per-platform aggregates and top shorts by engagement",
		Args:  cobra.NoArgs,
		RunE:  runStats,
	}
	cmd.Flags().String("platform", "", "Only this platform")
	cmd.Flags().Int("days", 0, "Only shorts created in the last N days")
	cmd.Flags().Int("top", 5, "How many top shorts to show")
	return cmd
}

func runStats(cmd *cobra.Command, args []string) error {
	a, closer, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer closer()

	platform, _ := cmd.Flags().GetString("platform")
	days, _ := cmd.Flags().GetInt("days")
	top, _ := cmd.Flags().GetInt("top")

	stats, err := a.st.PlatformStats(cmd.Context(), platform, days)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PLATFORM\tSHORTS\tAVG DUR\tVIEWS\tLIKES\tSHARES\tCOMMENTS")
	for _, s := range stats {
		fmt.Fprintf(w, "%s\t%d\t%.1fs\t%d\t%d\t%d\t%d\n",
			s.Platform, s.TotalShorts, s.AvgDuration,
			s.TotalViews, s.TotalLikes, s.TotalShares, s.TotalComments)
	}
	w.Flush()

	ranked, err := a.st.TopShorts(cmd.Context(), top)
	if err != nil {
		return err
	}
	if len(ranked) == 0 {
		return nil
	}
	cmd.Println()
	w = tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SCORE\tVIDEO\tPLATFORM\tOUTPUT")
	for _, r := range ranked {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", r.Score, r.VideoID, r.Platform, r.ShortPath)
	}
	return w.Flush()
}
