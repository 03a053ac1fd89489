package domain

import (
	"fmt"
	"strings"
)

// MissingPolicy controls how Aggregate treats missing or unparseable
// item values when computing a subscale sum.
type MissingPolicy string

const (
	// MissingPolicyFail aborts the aggregation on the first missing
	// value. This is the default.
	MissingPolicyFail MissingPolicy = "fail"
	// MissingPolicyPropagate leaves the affected row's subscale cell
	// empty and records the occurrence in the stage report. The value
	// is never treated as zero.
	MissingPolicyPropagate MissingPolicy = "propagate"
)

// GroupSpec defines one subscale: a named construct scored by summing a
// fixed set of item columns.
type GroupSpec struct {
	Name  string   `json:"name" yaml:"name" validate:"required,min=1"`
	Items []string `json:"items" yaml:"items" validate:"required,min=1,dive,required"`
}

// ItemFields builds item column names from a shared prefix and 1-based
// item numbers, e.g. ("dass_", [3,5,10]) -> [dass_3 dass_5 dass_10].
// Questionnaire exports conventionally number items this way.
func ItemFields(prefix string, numbers []int) []string {
	fields := make([]string, len(numbers))
	for i, n := range numbers {
		fields[i] = fmt.Sprintf("%s%d", prefix, n)
	}
	return fields
}

// PrefixRule replaces a leading substring of a field name.
type PrefixRule struct {
	From string `json:"from" yaml:"from" validate:"required"`
	To   string `json:"to" yaml:"to"`
}

// RenameSpec is a pure transform over field names: optional lowercasing
// followed by ordered prefix substitutions. The first matching prefix
// rule wins.
type RenameSpec struct {
	Lowercase bool         `json:"lowercase" yaml:"lowercase"`
	Prefixes  []PrefixRule `json:"prefixes,omitempty" yaml:"prefixes,omitempty" validate:"dive"`
}

// Apply transforms a single field name according to the spec.
func (r RenameSpec) Apply(name string) string {
	out := name
	if r.Lowercase {
		out = strings.ToLower(out)
	}
	for _, p := range r.Prefixes {
		if strings.HasPrefix(out, p.From) {
			out = p.To + strings.TrimPrefix(out, p.From)
			break
		}
	}
	return out
}

// IsZero reports whether the spec performs no transformation at all.
func (r RenameSpec) IsZero() bool {
	return !r.Lowercase && len(r.Prefixes) == 0
}

// PipelineSpec describes a full preprocessing run: which columns to
// keep, which participants to drop, how to normalize field names, and
// which subscales to score.
type PipelineSpec struct {
	IDField       string        `json:"id_field" yaml:"id_field" validate:"required"`
	Project       []string      `json:"project,omitempty" yaml:"project,omitempty"`
	Exclude       []int64       `json:"exclude,omitempty" yaml:"exclude,omitempty"`
	Rename        RenameSpec    `json:"rename,omitempty" yaml:"rename,omitempty"`
	Scales        []GroupSpec   `json:"scales,omitempty" yaml:"scales,omitempty" validate:"dive"`
	MissingPolicy MissingPolicy `json:"missing_policy,omitempty" yaml:"missing_policy,omitempty" validate:"omitempty,oneof=fail propagate"`
}

// EffectiveMissingPolicy returns the configured policy, defaulting to
// MissingPolicyFail when unset.
func (s PipelineSpec) EffectiveMissingPolicy() MissingPolicy {
	if s.MissingPolicy == "" {
		return MissingPolicyFail
	}
	return s.MissingPolicy
}

// ExclusionSet is the set form of an exclusion list, keyed by
// participant id.
type ExclusionSet map[int64]struct{}

// NewExclusionSet builds an ExclusionSet from a list of ids.
func NewExclusionSet(ids []int64) ExclusionSet {
	set := make(ExclusionSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// Contains reports whether the id is excluded.
func (s ExclusionSet) Contains(id int64) bool {
	_, ok := s[id]
	return ok
}
