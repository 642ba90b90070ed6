package tabular

import (
	"context"
	stderrors "errors"
	"io/fs"
	"os"

	"adoptdash/domain/adoption"
	"adoptdash/internal"
	"adoptdash/internal/errors"
)

// FileSource loads the dataset from a local CSV or XLSX file
type FileSource struct {
	path   string
	reader *DataReader
}

// NewFileSource creates a source for path.
func NewFileSource(path string, cfg Config, logger *internal.Logger) *FileSource {
	return &FileSource{path: path, reader: NewDataReader(cfg, logger)}
}

// Load reads and parses the whole file.
func (s *FileSource) Load(ctx context.Context) (*adoption.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.MissingInputFile(s.path, err)
		}
		return nil, errors.Wrapf(err, "failed to read %s", s.path)
	}
	return s.reader.Parse(s.path, data)
}

// Describe returns the file path.
func (s *FileSource) Describe() string { return s.path }
