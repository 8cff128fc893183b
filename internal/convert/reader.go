package convert

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"

	"github.com/92fueler/SeaDronesSee-MOT/internal/fsutil"
	"github.com/92fueler/SeaDronesSee-MOT/internal/mot"
)

// ReadTables loads a full converted dataset back from outDir. Partitioned
// entities are concatenated file by file in directory walk order, so row
// order across partitions is not the source order. A missing partition
// directory reads as an empty table; missing single-file entities are an
// error.
func ReadTables(fsys fsutil.FileSystem, outDir string) (*mot.Tables, error) {
	t := &mot.Tables{}
	var err error

	if t.Categories, err = readParquet[mot.CategoryRow](fsys, filepath.Join(outDir, CategoriesFile)); err != nil {
		return nil, err
	}
	if t.Videos, err = readParquet[mot.VideoRow](fsys, filepath.Join(outDir, VideosFile)); err != nil {
		return nil, err
	}
	if t.Images, err = readPartitioned[mot.ImageRow](fsys, filepath.Join(outDir, ImagesDir)); err != nil {
		return nil, err
	}
	if t.Annotations, err = readPartitioned[mot.AnnotationRow](fsys, filepath.Join(outDir, AnnotationsDir)); err != nil {
		return nil, err
	}
	if t.Tracks, err = readPartitioned[mot.TrackRow](fsys, filepath.Join(outDir, TracksDir)); err != nil {
		return nil, err
	}

	return t, nil
}

// readParquet decodes every row of one Parquet file.
func readParquet[T any](fsys fsutil.FileSystem, path string) ([]T, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	rows, err := parquet.Read[T](bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return rows, nil
}

// readPartitioned concatenates all partition files under an entity
// directory. A missing directory means the entity had no rows.
func readPartitioned[T any](fsys fsutil.FileSystem, dir string) ([]T, error) {
	if !fsys.Exists(dir) {
		return nil, nil
	}

	var rows []T
	err := walkParquetFiles(fsys, dir, func(path string) error {
		part, err := readParquet[T](fsys, path)
		if err != nil {
			return err
		}
		rows = append(rows, part...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func walkParquetFiles(fsys fsutil.FileSystem, dir string, fn func(path string) error) error {
	entries, err := fsys.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading %s: %w", dir, err)
	}
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if entry.IsDir() {
			if err := walkParquetFiles(fsys, path, fn); err != nil {
				return err
			}
			continue
		}
		if strings.HasSuffix(entry.Name(), ".parquet") {
			if err := fn(path); err != nil {
				return err
			}
		}
	}
	return nil
}
