package dataset

import (
	"fmt"
	"strings"
)

// InputFileError reports a missing or malformed source file.
type InputFileError struct {
	Path string
	Row  int // 1-based data row; 0 when the error is not row specific
	Err  error
}

func (e *InputFileError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("dataset: %s row %d: %v", e.Path, e.Row, e.Err)
	}
	return fmt.Sprintf("dataset: %s: %v", e.Path, e.Err)
}

func (e *InputFileError) Unwrap() error {
	return e.Err
}

// SchemaError reports required columns absent from the header row.
type SchemaError struct {
	Path    string
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("dataset: %s: missing required columns: %s", e.Path, strings.Join(e.Missing, ", "))
}
