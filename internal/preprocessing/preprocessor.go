package preprocessing

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"scaleprep/internal/errors"
	"scaleprep/pkg/contracts/domain"
)

// Preprocessor applies the four survey preprocessing stages to a table:
// column projection, participant exclusion, field renaming, and
// subscale aggregation. Every stage returns a new table; inputs are
// never mutated.
type Preprocessor struct {
	logger        *slog.Logger
	missingPolicy domain.MissingPolicy
}

// PreprocessorConfig holds configuration options for the Preprocessor.
type PreprocessorConfig struct {
	// MissingPolicy controls how Aggregate treats missing item values.
	// Defaults to domain.MissingPolicyFail.
	MissingPolicy domain.MissingPolicy
}

// NewPreprocessor creates a new preprocessor with the given configuration.
func NewPreprocessor(logger *slog.Logger, config PreprocessorConfig) *Preprocessor {
	if logger == nil {
		logger = slog.Default()
	}
	if config.MissingPolicy == "" {
		config.MissingPolicy = domain.MissingPolicyFail
	}

	return &Preprocessor{
		logger:        logger,
		missingPolicy: config.MissingPolicy,
	}
}

// DefaultPreprocessorConfig returns a default configuration for typical use cases.
func DefaultPreprocessorConfig() PreprocessorConfig {
	return PreprocessorConfig{
		MissingPolicy: domain.MissingPolicyFail,
	}
}

// WithMissingPolicy returns a preprocessor that aggregates under the
// given policy. The receiver is returned as is when the policy is empty
// or already matches.
func (p *Preprocessor) WithMissingPolicy(policy domain.MissingPolicy) *Preprocessor {
	if policy == "" || policy == p.missingPolicy {
		return p
	}
	return &Preprocessor{
		logger:        p.logger,
		missingPolicy: policy,
	}
}

// Project returns a new table retaining only the requested fields, in
// the requested order, preserving row order and count. Referencing a
// field the table does not contain is an error.
func (p *Preprocessor) Project(ctx context.Context, table *domain.Table, fields []string) (*domain.Table, error) {
	p.logger.InfoContext(ctx, "projecting table columns",
		slog.Int("requested_fields", len(fields)),
		slog.Int("table_fields", table.NumFields()),
		slog.Int("rows", table.NumRows()))

	indices := make([]int, len(fields))
	for i, field := range fields {
		idx := table.FieldIndex(field)
		if idx < 0 {
			return nil, errors.NewUnknownFieldError(field)
		}
		indices[i] = idx
	}

	idField := ""
	for _, field := range fields {
		if field == table.IDField {
			idField = table.IDField
			break
		}
	}

	out := domain.NewTable(fields, idField)
	for _, row := range table.Rows {
		projected := make([]string, len(indices))
		for i, idx := range indices {
			projected[i] = row[idx]
		}
		out.AppendRow(projected)
	}

	return out, nil
}

// Exclude returns a new table omitting rows whose participant id is in
// ids. Ids that match no row are a no-op. Rows that survive are carried
// over unchanged and in their original order. A row whose id cell does
// not parse as an integer is a parsing error.
func (p *Preprocessor) Exclude(ctx context.Context, table *domain.Table, ids []int64) (*domain.Table, error) {
	if len(ids) == 0 {
		return table.Clone(), nil
	}

	idIdx := table.FieldIndex(table.IDField)
	if idIdx < 0 {
		return nil, errors.NewUnknownFieldError(table.IDField)
	}

	set := domain.NewExclusionSet(ids)

	out := domain.NewTable(table.Fields, table.IDField)
	excluded := 0
	for i, row := range table.Rows {
		id, err := parseParticipantID(row[idIdx])
		if err != nil {
			return nil, errors.NewParsingError("unparseable participant id", err).
				WithContext("row", i).
				WithContext("value", row[idIdx])
		}
		if set.Contains(id) {
			excluded++
			continue
		}
		out.AppendRow(append([]string(nil), row...))
	}

	p.logger.InfoContext(ctx, "excluded participants",
		slog.Int("requested_ids", len(ids)),
		slog.Int("rows_excluded", excluded),
		slog.Int("rows_remaining", out.NumRows()))

	return out, nil
}

// Rename applies the rename spec to every field name and returns the
// renamed table. Two fields mapping to the same resulting name is an
// error.
func (p *Preprocessor) Rename(ctx context.Context, table *domain.Table, spec domain.RenameSpec) (*domain.Table, error) {
	out := table.Clone()
	if spec.IsZero() {
		return out, nil
	}

	seen := make(map[string]struct{}, len(table.Fields))
	renamed := make([]string, len(table.Fields))
	for i, field := range table.Fields {
		name := spec.Apply(field)
		if _, dup := seen[name]; dup {
			return nil, errors.NewDuplicateFieldError(name)
		}
		seen[name] = struct{}{}
		renamed[i] = name
	}

	out.Fields = renamed
	if table.IDField != "" {
		out.IDField = spec.Apply(table.IDField)
	}

	p.logger.InfoContext(ctx, "renamed table fields",
		slog.Int("fields", len(renamed)),
		slog.String("id_field", out.IDField))

	return out, nil
}

// Aggregate appends one field per group whose per-row value is the sum
// of the group's item fields. A missing or unparseable item value never
// contributes zero: under the fail policy it aborts the stage, under
// the propagate policy the affected row's subscale cell stays empty and
// the occurrence is reported.
func (p *Preprocessor) Aggregate(ctx context.Context, table *domain.Table, groups []domain.GroupSpec) (*domain.Table, *AggregateReport, error) {
	report := &AggregateReport{}
	if len(groups) == 0 {
		return table.Clone(), report, nil
	}

	out := table.Clone()

	for _, group := range groups {
		if out.HasField(group.Name) {
			return nil, nil, errors.NewDuplicateFieldError(group.Name)
		}

		indices := make([]int, len(group.Items))
		for i, item := range group.Items {
			idx := out.FieldIndex(item)
			if idx < 0 {
				return nil, nil, errors.NewUnknownFieldError(item).WithContext("group", group.Name)
			}
			indices[i] = idx
		}

		out.Fields = append(out.Fields, group.Name)
		for rowIdx, row := range out.Rows {
			sum, missingField, ok := sumItems(row, indices, group.Items)
			if !ok {
				if p.missingPolicy == domain.MissingPolicyFail {
					return nil, nil, errors.NewMissingValueError(group.Name, missingField, rowIdx)
				}
				report.MissingCells = append(report.MissingCells, MissingCell{
					Row:   rowIdx,
					Group: group.Name,
					Field: missingField,
				})
				out.Rows[rowIdx] = append(row, "")
				continue
			}
			out.Rows[rowIdx] = append(row, strconv.FormatInt(sum, 10))
		}

		p.logger.InfoContext(ctx, "aggregated subscale",
			slog.String("group", group.Name),
			slog.Int("items", len(group.Items)),
			slog.Int("rows", out.NumRows()))
	}

	if n := len(report.MissingCells); n > 0 {
		p.logger.WarnContext(ctx, "missing item values propagated to subscale cells",
			slog.Int("missing_cells", n))
	}

	return out, report, nil
}

// sumItems sums the item cells of a single row. It reports the first
// missing or unparseable field and ok=false when the sum is undefined.
func sumItems(row []string, indices []int, items []string) (int64, string, bool) {
	var sum int64
	for i, idx := range indices {
		cell := strings.TrimSpace(row[idx])
		if cell == "" {
			return 0, items[i], false
		}
		v, err := strconv.ParseInt(cell, 10, 64)
		if err != nil {
			return 0, items[i], false
		}
		sum += v
	}
	return sum, "", true
}

// parseParticipantID parses an id cell, tolerating surrounding whitespace.
func parseParticipantID(cell string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(cell), 10, 64)
}
