package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParseAdminFeeBasis(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want AdminFeeBasis
	}{
		{
			name: "absent",
			raw:  "",
			want: AdminFeeBasis{},
		},
		{
			name: "cap only",
			raw:  "cap",
			want: AdminFeeBasis{Configured: true, InCap: true},
		},
		{
			name: "base only",
			raw:  "base",
			want: AdminFeeBasis{Configured: true, InBase: true},
		},
		{
			name: "both comma separated",
			raw:  "cap, base",
			want: AdminFeeBasis{Configured: true, InCap: true, InBase: true},
		},
		{
			name: "both underscore separated",
			raw:  "cap_base",
			want: AdminFeeBasis{Configured: true, InCap: true, InBase: true},
		},
		{
			name: "mixed case",
			raw:  "CAP",
			want: AdminFeeBasis{Configured: true, InCap: true},
		},
		{
			name: "capital does not flip the cap flag",
			raw:  "capital",
			want: AdminFeeBasis{Configured: true},
		},
		{
			name: "unrecognized token",
			raw:  "neither",
			want: AdminFeeBasis{Configured: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseAdminFeeBasis(tt.raw))
		})
	}
}

func TestAdminFeeBasis_SubjectToCap(t *testing.T) {
	// An unconfigured fee defaults to the cap-subject side; a configured
	// one is subject only when the cap token is present.
	assert.True(t, AdminFeeBasis{}.SubjectToCap())
	assert.True(t, AdminFeeBasis{Configured: true, InCap: true}.SubjectToCap())
	assert.False(t, AdminFeeBasis{Configured: true, InBase: true}.SubjectToCap())
	assert.False(t, AdminFeeBasis{Configured: true}.SubjectToCap())
}

func TestParseDecimal(t *testing.T) {
	value, ok := ParseDecimal("1234.56")
	assert.True(t, ok)
	assert.True(t, value.Equal(decimal.NewFromFloat(1234.56)))

	value, ok = ParseDecimal("  42  ")
	assert.True(t, ok)
	assert.True(t, value.Equal(decimal.NewFromInt(42)))

	_, ok = ParseDecimal("")
	assert.False(t, ok)

	_, ok = ParseDecimal("n/a")
	assert.False(t, ok)
}

func TestSettings_RuleAccessors(t *testing.T) {
	var empty Settings
	assert.Nil(t, empty.Inclusions(CategoryCAM))
	assert.Nil(t, empty.Exclusions(CategoryCAM))

	s := Settings{
		GLInclusions: map[Category][]string{CategoryCAM: {"510000-520000"}},
		GLExclusions: map[Category][]string{CategoryBase: {"515000"}},
	}
	assert.Equal(t, []string{"510000-520000"}, s.Inclusions(CategoryCAM))
	assert.Equal(t, []string{"515000"}, s.Exclusions(CategoryBase))
	assert.Nil(t, s.Inclusions(CategoryRET))
}
