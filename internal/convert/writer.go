package convert

import (
	"bytes"
	"fmt"
	"path/filepath"

	"github.com/parquet-go/parquet-go"

	"github.com/92fueler/SeaDronesSee-MOT/internal/fsutil"
)

// IOWriteError reports a failed output write. Op names the operation
// (mkdir, encode, write) and Path the target that failed.
type IOWriteError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOWriteError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOWriteError) Unwrap() error { return e.Err }

// writeParquet encodes rows as a single Snappy-compressed Parquet file at
// path, creating parent directories first. The file is encoded fully in
// memory and written in one WriteFile call, so a failed encode leaves no
// partial file behind.
func writeParquet[T any](fsys fsutil.FileSystem, path string, rows []T) error {
	dir := filepath.Dir(path)
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return &IOWriteError{Op: "mkdir", Path: dir, Err: err}
	}

	var buf bytes.Buffer
	w := parquet.NewGenericWriter[T](&buf, parquet.Compression(&parquet.Snappy))
	if len(rows) > 0 {
		if _, err := w.Write(rows); err != nil {
			return &IOWriteError{Op: "encode", Path: path, Err: err}
		}
	}
	if err := w.Close(); err != nil {
		return &IOWriteError{Op: "encode", Path: path, Err: err}
	}

	if err := fsys.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return &IOWriteError{Op: "write", Path: path, Err: err}
	}
	return nil
}
