package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dvloznov/statement-ledger/internal/gcsuploader"
	"github.com/dvloznov/statement-ledger/internal/statement"
)

// Source is one tabular export and the adapter that reads it.
type Source struct {
	Name  string
	Kind  statement.Kind
	Comma rune
	Open  func(ctx context.Context) (io.ReadCloser, error)
}

// FileSource reads a local export.
func FileSource(path string, kind statement.Kind) Source {
	return Source{
		Name: filepath.Base(path),
		Kind: kind,
		Open: func(context.Context) (io.ReadCloser, error) {
			return os.Open(path)
		},
	}
}

// GCSSource reads a gs:// export through store.
func GCSSource(store gcsuploader.ObjectStore, uri string, kind statement.Kind) Source {
	return Source{
		Name: gcsuploader.FilenameFromURI(uri),
		Kind: kind,
		Open: func(ctx context.Context) (io.ReadCloser, error) {
			return store.Open(ctx, uri)
		},
	}
}

// BytesSource wraps an in-memory export, such as an HTTP upload.
func BytesSource(name string, kind statement.Kind, data []byte) Source {
	return Source{
		Name: name,
		Kind: kind,
		Open: func(context.Context) (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

func (s Source) read(ctx context.Context) ([]statement.RawRow, statement.Adapter, error) {
	adapter, err := statement.AdapterFor(s.Kind, s.Comma)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.Open(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", s.Name, err)
	}
	defer rc.Close()

	rows, err := adapter.Read(rc)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", s.Name, err)
	}
	return rows, adapter, nil
}
