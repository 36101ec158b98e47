package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCategory(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Category
	}{
		{"stay", CategoryStay},
		{"Accommodation", CategoryStay},
		{" hotel ", CategoryStay},
		{"transportation", CategoryTransport},
		{"Food", CategoryDining},
		{"activities", CategoryActivity},
		{"things to do", CategoryActivity},
	}
	for _, tt := range tests {
		got, err := ParseCategory(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.True(t, got.Valid())
	}

	_, err := ParseCategory("nightlife")
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.False(t, Category("nightlife").Valid())
}

func TestProfileMultipliers(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 1.2, Profile(CategoryStay).Multiplier, 0.0001)
	assert.InDelta(t, 1.0, Profile(CategoryTransport).Multiplier, 0.0001)
	assert.InDelta(t, 1.5, Profile(CategoryDining).Multiplier, 0.0001)
	assert.InDelta(t, 1.8, Profile(CategoryActivity).Multiplier, 0.0001)

	for _, c := range AllCategories() {
		p := Profile(c)
		assert.NotEmpty(t, p.Label, c)
		assert.NotEmpty(t, p.SearchNoun, c)
		assert.NotEmpty(t, p.DefaultQuestions, c)
	}
}

func TestProfileUnknownCategory(t *testing.T) {
	t.Parallel()

	p := Profile(Category("spa"))
	assert.InDelta(t, 1.0, p.Multiplier, 0.0001)
	assert.Equal(t, "spa", p.Label)
}
