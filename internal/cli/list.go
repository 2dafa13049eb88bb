package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func listCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded shorts",
		Args:  cobra.NoArgs,
		RunE:  runList,
	}
	cmd.Flags().String("platform", "", "Only this platform")
	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	a, closer, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer closer()

	platform, _ := cmd.Flags().GetString("platform")
	builds, err := a.st.ListBuilds(cmd.Context(), platform)
	if err != nil {
		return err
	}
	if len(builds) == 0 {
		cmd.Println("no shorts recorded")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	defer w.Flush()
	fmt.Fprintln(w, "VIDEO\tPLATFORM\tOUTPUT\tCREATED")
	for _, b := range builds {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			b.VideoID, b.Platform, b.OutputPath, b.CreatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}
