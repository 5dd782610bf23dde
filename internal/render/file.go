package render

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/kapwire/kapwire/internal/feed"
)

// FileRenderer replays a saved HTML snapshot. Useful for debugging an
// extraction offline against a debug dump, and in tests.
type FileRenderer struct {
	cfg    Config
	logger *zap.Logger
}

// NewFile creates a FileRenderer.
func NewFile(cfg Config, logger *zap.Logger) *FileRenderer {
	return &FileRenderer{cfg: cfg, logger: logger}
}

// Render reads the snapshot file and splits it into blocks.
func (r *FileRenderer) Render(ctx context.Context) ([]feed.RawBlock, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("render canceled: %w", err)
	}
	raw, err := os.ReadFile(r.cfg.SnapshotFile)
	if err != nil {
		return nil, fmt.Errorf("read snapshot file: %w", err)
	}
	return BlocksFromHTML(string(raw), r.cfg.RowSelector, r.cfg.MarkerHint)
}
