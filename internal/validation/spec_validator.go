package validation

import (
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"scaleprep/internal/errors"
	"scaleprep/pkg/contracts/domain"
)

// SpecValidator checks pipeline specifications before a run. Structural
// tags are enforced with go-playground/validator; cross-field rules the
// tags cannot express are checked explicitly.
type SpecValidator struct {
	logger   *slog.Logger
	validate *validator.Validate
}

// NewSpecValidator creates a new pipeline spec validator.
func NewSpecValidator(logger *slog.Logger) *SpecValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &SpecValidator{
		logger:   logger,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// ValidateSpec validates a pipeline specification. It returns a
// VALIDATION error describing the first problem found.
func (v *SpecValidator) ValidateSpec(spec *domain.PipelineSpec) error {
	if spec == nil {
		return errors.NewValidationError("pipeline spec is nil")
	}

	if err := v.validate.Struct(spec); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			first := verrs[0]
			return errors.NewValidationError(
				fmt.Sprintf("invalid pipeline spec: field %s failed rule %q", first.Namespace(), first.Tag()))
		}
		return errors.NewValidationError(fmt.Sprintf("invalid pipeline spec: %v", err))
	}

	// The exclude stage needs the id column, so a projection must keep it.
	if len(spec.Project) > 0 && len(spec.Exclude) > 0 && !contains(spec.Project, spec.IDField) {
		return errors.NewValidationError(
			fmt.Sprintf("projection drops id field %q required by exclusion", spec.IDField))
	}

	seen := make(map[string]struct{}, len(spec.Scales))
	for _, scale := range spec.Scales {
		if _, dup := seen[scale.Name]; dup {
			return errors.NewValidationError(fmt.Sprintf("duplicate scale name %q", scale.Name))
		}
		seen[scale.Name] = struct{}{}

		items := make(map[string]struct{}, len(scale.Items))
		for _, item := range scale.Items {
			if _, dup := items[item]; dup {
				return errors.NewValidationError(
					fmt.Sprintf("scale %q lists item %q twice", scale.Name, item))
			}
			items[item] = struct{}{}
		}
	}

	v.logger.Debug("pipeline spec validated",
		slog.String("id_field", spec.IDField),
		slog.Int("projected_fields", len(spec.Project)),
		slog.Int("excluded_ids", len(spec.Exclude)),
		slog.Int("scales", len(spec.Scales)))

	return nil
}

func contains(fields []string, name string) bool {
	for _, f := range fields {
		if f == name {
			return true
		}
	}
	return false
}
