package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// artifactScope is the scratch directory of one build. Everything written
// through path() disappears with cleanup(), which runs on every exit from
// Assemble; cleanup failures are logged, never escalated.
type artifactScope struct {
	dir string
	log zerolog.Logger
}

func newScope(workDir string, log zerolog.Logger) (*artifactScope, error) {
	if workDir == "" {
		workDir = os.TempDir()
	}
	dir := filepath.Join(workDir, "build-"+uuid.NewString())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}
	return &artifactScope{dir: dir, log: log}, nil
}

func (s *artifactScope) path(name string) string {
	return filepath.Join(s.dir, name)
}

func (s *artifactScope) cleanup() {
	if err := os.RemoveAll(s.dir); err != nil {
		s.log.Warn().Err(err).Str("dir", s.dir).Msg("scratch cleanup failed")
	}
}
