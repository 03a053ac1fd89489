package preprocessing

import (
	"time"
)

// MissingCell identifies one subscale cell left undefined because an
// item value was missing or unparseable.
type MissingCell struct {
	Row   int    `json:"row"`
	Group string `json:"group"`
	Field string `json:"field"`
}

// AggregateReport collects what the aggregation stage surfaced.
type AggregateReport struct {
	MissingCells []MissingCell `json:"missing_cells,omitempty"`
}

// StageReport records the outcome of one pipeline stage.
type StageReport struct {
	Stage    string        `json:"stage"`
	RowsIn   int           `json:"rows_in"`
	RowsOut  int           `json:"rows_out"`
	Fields   int           `json:"fields"`
	Duration time.Duration `json:"duration"`
}

// RunReport summarizes a full preprocessing run.
type RunReport struct {
	RunID        string        `json:"run_id"`
	Stages       []StageReport `json:"stages"`
	MissingCells []MissingCell `json:"missing_cells,omitempty"`
	RowsIn       int           `json:"rows_in"`
	RowsOut      int           `json:"rows_out"`
	FieldsOut    int           `json:"fields_out"`
	StartedAt    time.Time     `json:"started_at"`
	Duration     time.Duration `json:"duration"`
}
