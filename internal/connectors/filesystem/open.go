package filesystem

import (
	"errors"
	"io"
	"os"

	"github.com/custodia-labs/docthemes/internal/core/domain"
)

// Batch is a set of opened files ready to upload.
type Batch struct {
	Files   []domain.UploadFile
	handles []*os.File
}

// Open opens every file for reading. wrap, when non-nil, decorates each
// reader, e.g. to report progress. The caller must Close the batch.
func Open(files []File, wrap func(io.Reader) io.Reader) (*Batch, error) {
	b := &Batch{Files: make([]domain.UploadFile, 0, len(files))}
	for _, f := range files {
		fh, err := os.Open(f.Path)
		if err != nil {
			_ = b.Close()
			return nil, err
		}
		b.handles = append(b.handles, fh)

		var r io.Reader = fh
		if wrap != nil {
			r = wrap(fh)
		}
		b.Files = append(b.Files, domain.UploadFile{Name: f.Name, Content: r})
	}
	return b, nil
}

// Close closes every opened file.
func (b *Batch) Close() error {
	var errs []error
	for _, fh := range b.handles {
		if err := fh.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	b.handles = nil
	return errors.Join(errs...)
}
