package dataprep

import (
	"fmt"
	"strings"
)

// ColumnNotFoundError reports a target or sensitive column that is empty or
// not present in the dataset header.
type ColumnNotFoundError struct {
	Role      string // "target" or "sensitive"
	Column    string
	Available []string
}

func (e *ColumnNotFoundError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("dataprep: %s column name is empty", e.Role)
	}
	return fmt.Sprintf("dataprep: %s column %q not found (available: %s)",
		e.Role, e.Column, strings.Join(e.Available, ", "))
}

// EmptyDatasetError reports that too few usable rows remain after rows with
// a missing target or sensitive value were dropped.
type EmptyDatasetError struct {
	Rows    int
	Dropped int
	MinRows int
}

func (e *EmptyDatasetError) Error() string {
	return fmt.Sprintf("dataprep: %d usable rows after dropping %d incomplete rows, need at least %d",
		e.Rows, e.Dropped, e.MinRows)
}

// LabelNotFoundError reports a requested positive label absent from the target.
type LabelNotFoundError struct {
	Label  string
	Labels []string
}

func (e *LabelNotFoundError) Error() string {
	return fmt.Sprintf("dataprep: positive label %q not among target labels [%s]",
		e.Label, strings.Join(e.Labels, ", "))
}
