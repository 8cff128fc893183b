package mot

import "fmt"

// MissingFileError reports an input annotation file that does not exist.
type MissingFileError struct {
	Path string
}

func (e *MissingFileError) Error() string {
	return fmt.Sprintf("annotation file not found: %s", e.Path)
}

// MalformedInputError reports an input file that is not valid JSON or is
// missing one of the required top-level collections.
type MalformedInputError struct {
	Path   string
	Reason string
	Err    error
}

func (e *MalformedInputError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed annotation file %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed annotation file %s: %s", e.Path, e.Reason)
}

func (e *MalformedInputError) Unwrap() error { return e.Err }

// SchemaValidationError reports a record that fails the required-field or
// type checks of its entity schema.
type SchemaValidationError struct {
	Entity string // collection name, e.g. "annotations"
	Index  int    // position of the record in its source collection
	ID     int64  // record id when one could be read, -1 otherwise
	Field  string
	Reason string
}

func (e *SchemaValidationError) Error() string {
	if e.ID >= 0 {
		return fmt.Sprintf("%s[%d] (id %d): field %q %s", e.Entity, e.Index, e.ID, e.Field, e.Reason)
	}
	return fmt.Sprintf("%s[%d]: field %q %s", e.Entity, e.Index, e.Field, e.Reason)
}
