package dataset

import "fmt"

// Ingestion stages.
const (
	StageFetch = "fetch"
	StageParse = "parse"
)

// IngestionError reports that the dataset could not be loaded: the export was
// unreachable or could not be read as a delimited table.
type IngestionError struct {
	Stage string
	Err   error
}

func (e *IngestionError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("dataset %s failed: %v", e.Stage, e.Err)
}

func (e *IngestionError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
