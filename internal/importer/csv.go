package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"scaleprep/internal/errors"
	"scaleprep/pkg/contracts/domain"
)

// Reader loads delimited survey exports into the in-memory table model.
type Reader struct {
	logger *slog.Logger
}

// NewReader creates a new CSV reader.
func NewReader(logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{logger: logger}
}

// ReadFile reads a CSV file into a Table. The first row is the header;
// idField names the participant-id column and must be present.
func (r *Reader) ReadFile(path string, idField string) (*domain.Table, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError("input file").WithContext("path", path)
		}
		return nil, errors.NewStorageError("failed to open input file", err).
			WithContext("path", path)
	}
	defer file.Close()

	table, err := r.Read(file, idField)
	if err != nil {
		return nil, err
	}

	r.logger.Info("read survey table",
		slog.String("path", path),
		slog.Int("fields", table.NumFields()),
		slog.Int("rows", table.NumRows()))

	return table, nil
}

// Read reads CSV data from an io.Reader into a Table.
func (r *Reader) Read(src io.Reader, idField string) (*domain.Table, error) {
	reader := csv.NewReader(src)
	// Survey exports occasionally pad short rows; length is enforced
	// here against the header instead.
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.NewParsingError("input has no header row", nil)
	}
	if err != nil {
		return nil, errors.NewParsingError("failed to read header row", err)
	}

	header[0] = stripBOM(header[0])

	seen := make(map[string]struct{}, len(header))
	for _, field := range header {
		name := strings.TrimSpace(field)
		if name == "" {
			return nil, errors.NewParsingError("header contains an empty field name", nil)
		}
		if _, dup := seen[name]; dup {
			return nil, errors.NewDuplicateFieldError(name)
		}
		seen[name] = struct{}{}
	}

	fields := make([]string, len(header))
	for i, field := range header {
		fields[i] = strings.TrimSpace(field)
	}

	table := domain.NewTable(fields, idField)
	if idField != "" && !table.HasField(idField) {
		return nil, errors.NewUnknownFieldError(idField)
	}

	rowNum := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.NewParsingError(fmt.Sprintf("failed to read row %d", rowNum), err)
		}
		if len(record) != len(fields) {
			return nil, errors.NewParsingError(
				fmt.Sprintf("row %d has %d cells, expected %d", rowNum, len(record), len(fields)), nil).
				WithContext("row", rowNum)
		}
		table.AppendRow(record)
		rowNum++
	}

	return table, nil
}

// stripBOM removes a UTF-8 byte order mark written by spreadsheet exports.
func stripBOM(s string) string {
	return strings.TrimPrefix(s, "\ufeff")
}
