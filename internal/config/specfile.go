package config

import (
	"os"

	"gopkg.in/yaml.v2"

	"scaleprep/internal/errors"
	"scaleprep/pkg/contracts/domain"
)

// LoadPipelineSpec reads a pipeline specification from a YAML file.
// The spec describes the full preprocessing run: projected columns,
// excluded participants, rename rules, and subscale definitions.
//
// Example:
//
//	id_field: participant_id
//	project: [participant_id, dass_1, dass_2, dass_3]
//	exclude: [35]
//	rename:
//	  lowercase: true
//	  prefixes:
//	    - {from: "DASS", to: "dass"}
//	scales:
//	  - name: depression
//	    items: [dass_3]
//	missing_policy: fail
func LoadPipelineSpec(path string) (*domain.PipelineSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError("pipeline spec file").WithContext("path", path)
		}
		return nil, errors.NewStorageError("failed to read pipeline spec file", err).
			WithContext("path", path)
	}

	var spec domain.PipelineSpec
	if err := yaml.UnmarshalStrict(data, &spec); err != nil {
		return nil, errors.NewConfigError("failed to parse pipeline spec YAML", err).
			WithContext("path", path)
	}

	return &spec, nil
}
