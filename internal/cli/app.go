package cli

import (
	"github.com/spf13/cobra"

	"github.com/mgaillard/shortforge/internal/config"
	"github.com/mgaillard/shortforge/internal/fonds"
	"github.com/mgaillard/shortforge/internal/logging"
	"github.com/mgaillard/shortforge/internal/pipeline"
	"github.com/mgaillard/shortforge/internal/ports"
	"github.com/mgaillard/shortforge/internal/ports/adapters/ffmpeg"
	"github.com/mgaillard/shortforge/internal/store"
	"github.com/mgaillard/shortforge/internal/types"
	"github.com/mgaillard/shortforge/internal/usecase"
)

// app holds the wired components of one command invocation.
type app struct {
	cfg  *config.Config
	st   *store.Store
	tool ports.MediaTool
	uc   usecase.Usecase
}

// newApp loads config, opens the store and wires the pipeline. The
// returned closer must run before exit.
func newApp(cmd *cobra.Command) (*app, func(), error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, err
	}

	log := logging.WithComponent("cli")
	st, err := store.Open(cfg.DatabasePath, log)
	if err != nil {
		return nil, nil, err
	}

	tool := ffmpeg.New(cfg.FFmpeg.BinaryPath, cfg.FFmpeg.ProbePath,
		types.Seconds(cfg.FFmpeg.StageTimeout), log)

	asm, err := pipeline.New(pipeline.Config{
		Tool:    tool,
		WorkDir: cfg.WorkDir,
		OutDir:  cfg.OutputDir,
		Log:     log,
	})
	if err != nil {
		st.Close()
		return nil, nil, err
	}

	uc := usecase.New(usecase.Deps{
		Media:     tool,
		Store:     st,
		Fonds:     fonds.New(st, nil, log),
		Assembler: asm,
		Cfg:       cfg,
		Log:       log,
	})

	a := &app{cfg: cfg, st: st, tool: tool, uc: uc}
	return a, func() { st.Close() }, nil
}
