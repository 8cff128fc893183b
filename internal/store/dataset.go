package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/92fueler/SeaDronesSee-MOT/internal/mot"
)

// TableCounts reports the row count of each dataset table.
type TableCounts struct {
	Categories  int64
	Videos      int64
	Images      int64
	Tracks      int64
	Annotations int64
}

// LoadResult summarizes one bulk load.
type LoadResult struct {
	RunID    string
	Counts   TableCounts
	Duration time.Duration
}

// LoadDataset replaces the dataset tables with the given rows in a single
// transaction. Parents are inserted before children so foreign keys hold
// throughout, and a dataset_loads row records the load for auditing.
func (db *DB) LoadDataset(tables *mot.Tables, runID string) (*LoadResult, error) {
	start := time.Now()

	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Children first on delete, parents first on insert.
	for _, table := range []string{"annotations", "tracks", "images", "videos", "categories"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return nil, fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	if err := insertCategories(tx, tables.Categories); err != nil {
		return nil, err
	}
	if err := insertVideos(tx, tables.Videos); err != nil {
		return nil, err
	}
	if err := insertImages(tx, tables.Images); err != nil {
		return nil, err
	}
	if err := insertTracks(tx, tables.Tracks); err != nil {
		return nil, err
	}
	if err := insertAnnotations(tx, tables.Annotations); err != nil {
		return nil, err
	}

	counts := TableCounts{
		Categories:  int64(len(tables.Categories)),
		Videos:      int64(len(tables.Videos)),
		Images:      int64(len(tables.Images)),
		Tracks:      int64(len(tables.Tracks)),
		Annotations: int64(len(tables.Annotations)),
	}

	_, err = tx.Exec(`
		INSERT INTO dataset_loads (run_id, loaded_at, categories, videos, images, tracks, annotations)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		runID, start.UTC().Format(time.RFC3339),
		counts.Categories, counts.Videos, counts.Images, counts.Tracks, counts.Annotations)
	if err != nil {
		return nil, fmt.Errorf("failed to record dataset load: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit dataset load: %w", err)
	}

	return &LoadResult{RunID: runID, Counts: counts, Duration: time.Since(start)}, nil
}

func insertCategories(tx *sql.Tx, rows []mot.CategoryRow) error {
	stmt, err := tx.Prepare(`INSERT INTO categories (id, supercategory, name) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare categories insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.Exec(row.ID, nullString(row.Supercategory), nullString(row.Name)); err != nil {
			return fmt.Errorf("failed to insert category %d: %w", row.ID, err)
		}
	}
	return nil
}

func insertVideos(tx *sql.Tx, rows []mot.VideoRow) error {
	stmt, err := tx.Prepare(`INSERT INTO videos (id, height, width, name) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare videos insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.Exec(row.ID, row.Height, row.Width, row.Name); err != nil {
			return fmt.Errorf("failed to insert video %d: %w", row.ID, err)
		}
	}
	return nil
}

func insertImages(tx *sql.Tx, rows []mot.ImageRow) error {
	stmt, err := tx.Prepare(`
		INSERT INTO images (id, file_name, file_path, date_time, height, width, video_id, frame_index, dataset_split, source, meta)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare images insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		_, err := stmt.Exec(
			row.ID, row.FileName, nullString(row.FilePath), nullString(row.DateTime),
			row.Height, row.Width, row.VideoID, nullInt32(row.FrameIndex),
			nullString(row.DatasetSplit), nullString(row.Source), nullString(row.Meta))
		if err != nil {
			return fmt.Errorf("failed to insert image %d: %w", row.ID, err)
		}
	}
	return nil
}

func insertTracks(tx *sql.Tx, rows []mot.TrackRow) error {
	stmt, err := tx.Prepare(`INSERT INTO tracks (id, category_id, video_id) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare tracks insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.Exec(row.ID, row.CategoryID, row.VideoID); err != nil {
			return fmt.Errorf("failed to insert track %d: %w", row.ID, err)
		}
	}
	return nil
}

func insertAnnotations(tx *sql.Tx, rows []mot.AnnotationRow) error {
	stmt, err := tx.Prepare(`
		INSERT INTO annotations (id, image_id, category_id, video_id, track_id, area, bbox_x, bbox_y, bbox_width, bbox_height)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare annotations insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		_, err := stmt.Exec(
			row.ID, row.ImageID, row.CategoryID, row.VideoID, row.TrackID,
			row.Area, row.BboxX, row.BboxY, row.BboxWidth, row.BboxHeight)
		if err != nil {
			return fmt.Errorf("failed to insert annotation %d: %w", row.ID, err)
		}
	}
	return nil
}

// Counts queries the current row count of every dataset table.
func (db *DB) Counts() (*TableCounts, error) {
	counts := &TableCounts{}
	for table, dest := range map[string]*int64{
		"categories":  &counts.Categories,
		"videos":      &counts.Videos,
		"images":      &counts.Images,
		"tracks":      &counts.Tracks,
		"annotations": &counts.Annotations,
	} {
		if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(dest); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", table, err)
		}
	}
	return counts, nil
}

// VideoByName looks up one video by its unique name. Returns nil if the
// video does not exist.
func (db *DB) VideoByName(name string) (*mot.VideoRow, error) {
	row := &mot.VideoRow{}
	err := db.QueryRow(
		`SELECT id, height, width, name FROM videos WHERE name = ?`, name).
		Scan(&row.ID, &row.Height, &row.Width, &row.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query video %q: %w", name, err)
	}
	return row, nil
}

// VideoImages returns all images of one video in frame order.
func (db *DB) VideoImages(videoID int32) ([]mot.ImageRow, error) {
	rows, err := db.Query(`
		SELECT id, file_name, file_path, date_time, height, width, video_id, frame_index, dataset_split, source, meta
		FROM images WHERE video_id = ? ORDER BY frame_index, id`, videoID)
	if err != nil {
		return nil, fmt.Errorf("failed to query images for video %d: %w", videoID, err)
	}
	defer rows.Close()

	var images []mot.ImageRow
	for rows.Next() {
		var img mot.ImageRow
		var filePath, dateTime, split, source, meta sql.NullString
		var frameIndex sql.NullInt32
		err := rows.Scan(&img.ID, &img.FileName, &filePath, &dateTime,
			&img.Height, &img.Width, &img.VideoID, &frameIndex, &split, &source, &meta)
		if err != nil {
			return nil, fmt.Errorf("failed to scan image row: %w", err)
		}
		img.FilePath = strPtr(filePath)
		img.DateTime = strPtr(dateTime)
		img.FrameIndex = int32Ptr(frameIndex)
		img.DatasetSplit = strPtr(split)
		img.Source = strPtr(source)
		img.Meta = strPtr(meta)
		images = append(images, img)
	}
	return images, rows.Err()
}

// TrackAnnotations returns all annotations of one track ordered by id,
// which follows frame order in the source data.
func (db *DB) TrackAnnotations(trackID int32) ([]mot.AnnotationRow, error) {
	rows, err := db.Query(`
		SELECT id, image_id, category_id, video_id, track_id, area, bbox_x, bbox_y, bbox_width, bbox_height
		FROM annotations WHERE track_id = ? ORDER BY id`, trackID)
	if err != nil {
		return nil, fmt.Errorf("failed to query annotations for track %d: %w", trackID, err)
	}
	defer rows.Close()

	var anns []mot.AnnotationRow
	for rows.Next() {
		var a mot.AnnotationRow
		err := rows.Scan(&a.ID, &a.ImageID, &a.CategoryID, &a.VideoID, &a.TrackID,
			&a.Area, &a.BboxX, &a.BboxY, &a.BboxWidth, &a.BboxHeight)
		if err != nil {
			return nil, fmt.Errorf("failed to scan annotation row: %w", err)
		}
		anns = append(anns, a)
	}
	return anns, rows.Err()
}

// LastLoad returns the most recent dataset_loads entry, or nil if the
// database has never been loaded.
func (db *DB) LastLoad() (*LoadRecord, error) {
	rec := &LoadRecord{}
	err := db.QueryRow(`
		SELECT run_id, loaded_at, categories, videos, images, tracks, annotations
		FROM dataset_loads ORDER BY id DESC LIMIT 1`).
		Scan(&rec.RunID, &rec.LoadedAt,
			&rec.Counts.Categories, &rec.Counts.Videos, &rec.Counts.Images,
			&rec.Counts.Tracks, &rec.Counts.Annotations)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query last load: %w", err)
	}
	return rec, nil
}

// LoadRecord is one audit entry from the dataset_loads table.
type LoadRecord struct {
	RunID    string
	LoadedAt string
	Counts   TableCounts
}
