package cli

import (
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mgaillard/shortforge/internal/usecase"
)

func buildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build <source.mp4>",
		Short: "Build one short from a narrated video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, args[0])
		},
	}
	cmd.Flags().String("video-id", "", "Video identifier (default: source file name)")
	cmd.Flags().String("platform", "tiktok", "Target platform profile")
	cmd.Flags().String("narration", "", "Narration audio file")
	cmd.Flags().String("transcript", "", "Transcript JSON file")
	cmd.Flags().String("theme", "", "Background clip theme")
	cmd.Flags().String("cta-voice", "", "Voice style for the CTA audio")
	cmd.Flags().Bool("force", false, "Rebuild even if this video/platform pair was already built")
	return cmd
}

func runBuild(cmd *cobra.Command, source string) error {
	a, closer, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer closer()

	absSource, err := filepath.Abs(source)
	if err != nil {
		return err
	}

	videoID, _ := cmd.Flags().GetString("video-id")
	if videoID == "" {
		videoID = strings.TrimSuffix(filepath.Base(absSource), filepath.Ext(absSource))
	}
	platform, _ := cmd.Flags().GetString("platform")
	narration, _ := cmd.Flags().GetString("narration")
	transcript, _ := cmd.Flags().GetString("transcript")
	theme, _ := cmd.Flags().GetString("theme")
	ctaVoice, _ := cmd.Flags().GetString("cta-voice")
	force, _ := cmd.Flags().GetBool("force")

	res, err := a.uc.BuildShort(cmd.Context(), usecase.BuildRequest{
		VideoID:        videoID,
		Platform:       platform,
		SourcePath:     absSource,
		NarrationPath:  narration,
		TranscriptPath: transcript,
		Theme:          theme,
		CTAVoice:       ctaVoice,
		Force:          force,
	})
	if err != nil {
		return err
	}

	cmd.Printf("built %s (%.1fs, score %.2f)\n",
		res.OutputPath, res.Duration.Seconds(), res.Moment.Score)
	if res.ThumbnailPath != "" {
		cmd.Printf("thumbnail %s\n", res.ThumbnailPath)
	}
	return nil
}
