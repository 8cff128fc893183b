// Package stats derives summary statistics from a normalized dataset:
// per-entity counts, per-category and per-video breakdowns, and
// distributions of bounding-box area and track length.
package stats

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/92fueler/SeaDronesSee-MOT/internal/mot"
)

// Distribution summarizes one numeric series.
type Distribution struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	P50   float64 `json:"p50"`
	P95   float64 `json:"p95"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// CategoryCount is the number of annotations carrying one category.
type CategoryCount struct {
	CategoryID int32  `json:"category_id"`
	Name       string `json:"name"`
	Count      int    `json:"count"`
}

// VideoCount is the number of images belonging to one video.
type VideoCount struct {
	VideoID int32  `json:"video_id"`
	Name    string `json:"name"`
	Count   int    `json:"count"`
}

// Summary is the full statistics bundle for one dataset.
type Summary struct {
	Categories  int `json:"categories"`
	Videos      int `json:"videos"`
	Images      int `json:"images"`
	Tracks      int `json:"tracks"`
	Annotations int `json:"annotations"`

	AnnotationsPerCategory []CategoryCount `json:"annotations_per_category"`
	ImagesPerVideo         []VideoCount    `json:"images_per_video"`

	// BboxArea is over annotation areas; TrackLength is over the number
	// of annotations per track (zero-length tracks included).
	BboxArea    Distribution `json:"bbox_area"`
	TrackLength Distribution `json:"track_length"`
}

// Collect computes a Summary from normalized tables.
func Collect(tables *mot.Tables) *Summary {
	s := &Summary{
		Categories:  len(tables.Categories),
		Videos:      len(tables.Videos),
		Images:      len(tables.Images),
		Tracks:      len(tables.Tracks),
		Annotations: len(tables.Annotations),
	}

	categoryNames := make(map[int32]string, len(tables.Categories))
	for _, c := range tables.Categories {
		if c.Name != nil {
			categoryNames[c.ID] = *c.Name
		}
	}
	videoNames := make(map[int32]string, len(tables.Videos))
	for _, v := range tables.Videos {
		videoNames[v.ID] = v.Name
	}

	annsPerCategory := make(map[int32]int)
	areas := make([]float64, 0, len(tables.Annotations))
	annsPerTrack := make(map[int32]int)
	for _, a := range tables.Annotations {
		annsPerCategory[a.CategoryID]++
		annsPerTrack[a.TrackID]++
		areas = append(areas, float64(a.Area))
	}

	for id, count := range annsPerCategory {
		name, ok := categoryNames[id]
		if !ok {
			name = fmt.Sprintf("category %d", id)
		}
		s.AnnotationsPerCategory = append(s.AnnotationsPerCategory, CategoryCount{
			CategoryID: id, Name: name, Count: count,
		})
	}
	sort.Slice(s.AnnotationsPerCategory, func(i, j int) bool {
		return s.AnnotationsPerCategory[i].CategoryID < s.AnnotationsPerCategory[j].CategoryID
	})

	imagesPerVideo := make(map[int32]int)
	for _, img := range tables.Images {
		imagesPerVideo[img.VideoID]++
	}
	for id, count := range imagesPerVideo {
		name, ok := videoNames[id]
		if !ok {
			name = fmt.Sprintf("video %d", id)
		}
		s.ImagesPerVideo = append(s.ImagesPerVideo, VideoCount{
			VideoID: id, Name: name, Count: count,
		})
	}
	sort.Slice(s.ImagesPerVideo, func(i, j int) bool {
		return s.ImagesPerVideo[i].VideoID < s.ImagesPerVideo[j].VideoID
	})

	// Track length counts every track, including those no annotation
	// references.
	lengths := make([]float64, 0, len(tables.Tracks))
	for _, track := range tables.Tracks {
		lengths = append(lengths, float64(annsPerTrack[track.ID]))
	}

	s.BboxArea = newDistribution(areas)
	s.TrackLength = newDistribution(lengths)

	return s
}

func newDistribution(xs []float64) Distribution {
	if len(xs) == 0 {
		return Distribution{}
	}

	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)

	return Distribution{
		Count: len(sorted),
		Mean:  stat.Mean(sorted, nil),
		P50:   stat.Quantile(0.5, stat.Empirical, sorted, nil),
		P95:   stat.Quantile(0.95, stat.Empirical, sorted, nil),
		Min:   sorted[0],
		Max:   sorted[len(sorted)-1],
	}
}
