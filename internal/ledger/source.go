package ledger

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dvloznov/finance-coach/internal/domain"
)

// ErrUnknownSource is returned when configuration names a ledger source that
// does not exist.
var ErrUnknownSource = errors.New("unknown ledger source")

// Source loads a complete ledger from somewhere.
type Source interface {
	// Name identifies the source in logs and snapshots.
	Name() string

	// Load returns every transaction the source holds.
	Load(ctx context.Context) ([]domain.Transaction, error)
}

// FileSource reads a CSV ledger from the local filesystem.
type FileSource struct {
	Path string
}

// NewFileSource creates a source for the CSV file at path.
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

// Name implements Source.
func (s *FileSource) Name() string {
	return "file:" + s.Path
}

// Load implements Source.
func (s *FileSource) Load(ctx context.Context) ([]domain.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("FileSource.Load: open %s: %w", s.Path, err)
	}
	defer f.Close()

	txns, err := DecodeCSV(f)
	if err != nil {
		return nil, fmt.Errorf("FileSource.Load: %s: %w", s.Path, err)
	}
	return txns, nil
}

var _ Source = (*FileSource)(nil)
