package testutil

import (
	"errors"
	"testing"
)

func TestAssertNoError(t *testing.T) {
	t.Parallel()

	// Verify nil error doesn't cause issues
	AssertNoError(t, nil)
}

func TestAssertNoError_FailurePath(t *testing.T) {
	t.Parallel()

	ok := t.Run("unexpected error", func(t *testing.T) {
		AssertNoError(t, errors.New("boom"))
	})
	if ok {
		t.Fatal("expected subtest to fail when error is non-nil")
	}
}

func TestAssertError(t *testing.T) {
	t.Parallel()

	// Verify non-nil error is handled correctly
	AssertError(t, errors.New("test error"))
}

func TestAssertError_FailurePath(t *testing.T) {
	t.Parallel()

	ok := t.Run("missing expected error", func(t *testing.T) {
		AssertError(t, nil)
	})
	if ok {
		t.Fatal("expected subtest to fail when error is nil")
	}
}

func TestSampleDocument(t *testing.T) {
	t.Parallel()

	doc := SampleDocument(t)

	if len(doc.Categories) != 2 {
		t.Errorf("expected 2 categories, got %d", len(doc.Categories))
	}
	if len(doc.Videos) != 2 {
		t.Errorf("expected 2 videos, got %d", len(doc.Videos))
	}
	if len(doc.Images) != 3 {
		t.Errorf("expected 3 images, got %d", len(doc.Images))
	}
	if len(doc.Annotations) != 4 {
		t.Errorf("expected 4 annotations, got %d", len(doc.Annotations))
	}
}

func TestSampleTables(t *testing.T) {
	t.Parallel()

	tables := SampleTables(t)

	if len(tables.Tracks) != 2 {
		t.Errorf("expected 2 tracks, got %d", len(tables.Tracks))
	}
	// The second video declares its name under the malformed "name:" key,
	// which normalization folds back into the name column.
	var names []string
	for _, v := range tables.Videos {
		names = append(names, v.Name)
	}
	if len(names) != 2 || names[0] != "DJI_0001" || names[1] != "DJI_0002" {
		t.Errorf("unexpected video names: %v", names)
	}
}
