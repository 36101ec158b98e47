package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_RequiresName(t *testing.T) {
	_, ok := Normalize(RawCandidate{Description: "no name"})
	assert.False(t, ok)

	_, ok = Normalize(RawCandidate{Name: "   "})
	assert.False(t, ok)
}

func TestNormalize_ContentHashID(t *testing.T) {
	a, ok := Normalize(RawCandidate{Name: "Beachfront Cottage", Location: "Cascais"})
	require.True(t, ok)
	b, _ := Normalize(RawCandidate{Name: "  beachfront cottage ", Location: "CASCAIS"})

	assert.NotEmpty(t, a.ID)
	assert.Equal(t, a.ID, b.ID)
	assert.Equal(t, ContentID("Beachfront Cottage", "Cascais"), a.ID)

	c, _ := Normalize(RawCandidate{Name: "Beachfront Cottage", Location: "Sintra"})
	assert.NotEqual(t, a.ID, c.ID)
}

func TestNormalize_KeepsProviderID(t *testing.T) {
	c, ok := Normalize(RawCandidate{ID: "ChIJ-1", Name: "Tasca", SourceRef: "ChIJ-1"})
	require.True(t, ok)
	assert.Equal(t, "ChIJ-1", c.ID)
	assert.Equal(t, "ChIJ-1", c.SourceRef)
}

func TestNormalize_Rating(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want *float64
	}{
		{"number", 4.5, ptr(4.5)},
		{"int", 3, ptr(3)},
		{"string", "4.2", ptr(4.2)},
		{"too high", 7.0, nil},
		{"negative", -1.0, nil},
		{"garbage", "great", nil},
		{"absent", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := Normalize(RawCandidate{Name: "x", Rating: tt.in})
			require.True(t, ok)
			if tt.want == nil {
				assert.Nil(t, c.Rating)
				return
			}
			require.NotNil(t, c.Rating)
			assert.InDelta(t, *tt.want, *c.Rating, 0.0001)
		})
	}
}

func TestNormalize_PriceAndTags(t *testing.T) {
	c, _ := Normalize(RawCandidate{
		Name:          "Surf lesson",
		PriceEstimate: 45.0,
		Tags:          []any{"Outdoor", "outdoor ", "Beach", 3},
	})
	assert.Equal(t, "45", c.PriceEstimate)
	assert.Equal(t, []string{"outdoor", "beach"}, c.Tags)

	c, _ = Normalize(RawCandidate{
		Name:          "Villa",
		PriceEstimate: map[string]any{"min": 3000.0, "max": 4000.0},
		Tags:          "pool, garden",
	})
	assert.Equal(t, "3000-4000", c.PriceEstimate)
	assert.Equal(t, []string{"pool", "garden"}, c.Tags)

	c, _ = Normalize(RawCandidate{Name: "Museum", PriceEstimate: "Varies"})
	assert.Equal(t, "Varies", c.PriceEstimate)
}

func TestNormalizeAll_DropsNameless(t *testing.T) {
	out := NormalizeAll([]RawCandidate{{Name: "A"}, {}, {Name: "B"}})
	require.Len(t, out, 2)
	assert.Equal(t, "A", out[0].Name)
	assert.Equal(t, "B", out[1].Name)
}

func ptr(f float64) *float64 { return &f }
