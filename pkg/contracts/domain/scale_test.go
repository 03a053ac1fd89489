package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestItemFields(t *testing.T) {
	got := ItemFields("dass_", []int{3, 5, 10, 13, 16, 17, 21})
	want := []string{"dass_3", "dass_5", "dass_10", "dass_13", "dass_16", "dass_17", "dass_21"}
	assert.Equal(t, want, got)

	assert.Empty(t, ItemFields("x_", nil))
}

func TestRenameSpec_Apply(t *testing.T) {
	tests := []struct {
		name string
		spec RenameSpec
		in   string
		want string
	}{
		{
			name: "lowercase only",
			spec: RenameSpec{Lowercase: true},
			in:   "DASS_3",
			want: "dass_3",
		},
		{
			name: "prefix substitution",
			spec: RenameSpec{Prefixes: []PrefixRule{{From: "Q", To: "item_"}}},
			in:   "Q12",
			want: "item_12",
		},
		{
			name: "first matching prefix wins",
			spec: RenameSpec{Prefixes: []PrefixRule{
				{From: "dass_dep_", To: "dep_"},
				{From: "dass_", To: "d_"},
			}},
			in:   "dass_dep_3",
			want: "dep_3",
		},
		{
			name: "lowercase before prefix match",
			spec: RenameSpec{Lowercase: true, Prefixes: []PrefixRule{{From: "dass_", To: "d_"}}},
			in:   "DASS_7",
			want: "d_7",
		},
		{
			name: "no rule matches",
			spec: RenameSpec{Prefixes: []PrefixRule{{From: "swls_", To: "sw_"}}},
			in:   "dass_3",
			want: "dass_3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.spec.Apply(tt.in))
		})
	}
}

func TestRenameSpec_IsZero(t *testing.T) {
	assert.True(t, RenameSpec{}.IsZero())
	assert.False(t, RenameSpec{Lowercase: true}.IsZero())
	assert.False(t, RenameSpec{Prefixes: []PrefixRule{{From: "a", To: "b"}}}.IsZero())
}

func TestPipelineSpec_EffectiveMissingPolicy(t *testing.T) {
	assert.Equal(t, MissingPolicyFail, PipelineSpec{}.EffectiveMissingPolicy())
	assert.Equal(t, MissingPolicyPropagate,
		PipelineSpec{MissingPolicy: MissingPolicyPropagate}.EffectiveMissingPolicy())
}

func TestExclusionSet(t *testing.T) {
	set := NewExclusionSet([]int64{35, 108, 109})

	assert.True(t, set.Contains(35))
	assert.True(t, set.Contains(109))
	assert.False(t, set.Contains(42))
	assert.Len(t, set, 3)
}
