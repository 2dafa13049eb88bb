package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mgaillard/shortforge/internal/usecase"
)

// manifest is the YAML batch input: one item per video/platform pair.
type manifest struct {
	Items []manifestItem `yaml:"items"`
}

type manifestItem struct {
	VideoID    string   `yaml:"video_id"`
	Source     string   `yaml:"source"`
	Narration  string   `yaml:"narration"`
	Transcript string   `yaml:"transcript"`
	Theme      string   `yaml:"theme"`
	CTAVoice   string   `yaml:"cta_voice"`
	Platforms  []string `yaml:"platforms"`
}

func batchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch <manifest.yaml>",
		Short: "Build shorts for every item in a manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, args[0])
		},
	}
	cmd.Flags().Bool("force", false, "Rebuild pairs that were already built")
	return cmd
}

func runBatch(cmd *cobra.Command, path string) error {
	a, closer, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer closer()

	reqs, err := loadManifest(path, a)
	if err != nil {
		return err
	}
	force, _ := cmd.Flags().GetBool("force")
	for i := range reqs {
		reqs[i].Force = force
	}

	sum, err := a.uc.Batch(cmd.Context(), reqs)
	if err != nil {
		return err
	}
	cmd.Printf("built %d, skipped %d, failed %d\n", sum.Built, sum.Skipped, sum.Failed)
	if sum.Failed > 0 {
		return fmt.Errorf("%d builds failed", sum.Failed)
	}
	return nil
}

func loadManifest(path string, a *app) ([]usecase.BuildRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	if len(m.Items) == 0 {
		return nil, fmt.Errorf("manifest %s has no items", path)
	}

	base := filepath.Dir(path)
	var reqs []usecase.BuildRequest
	for _, item := range m.Items {
		videoID := item.VideoID
		if videoID == "" {
			videoID = strings.TrimSuffix(filepath.Base(item.Source), filepath.Ext(item.Source))
		}
		platforms := item.Platforms
		if len(platforms) == 0 {
			for _, p := range a.cfg.Profiles {
				platforms = append(platforms, p.Key)
			}
		}
		for _, platform := range platforms {
			reqs = append(reqs, usecase.BuildRequest{
				VideoID:        videoID,
				Platform:       platform,
				SourcePath:     resolvePath(base, item.Source),
				NarrationPath:  resolvePath(base, item.Narration),
				TranscriptPath: resolvePath(base, item.Transcript),
				Theme:          item.Theme,
				CTAVoice:       item.CTAVoice,
			})
		}
	}
	return reqs, nil
}

// resolvePath makes manifest-relative paths absolute against the manifest
// location.
func resolvePath(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}
