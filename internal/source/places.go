package source

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/trip-planner/internal/model"
	"github.com/sells-group/trip-planner/pkg/google"
)

const defaultPlacesLimit = 15

// priceLevels maps Places price levels onto symbolic estimates. Only
// "Free" parses as a number; the rest are kept by the budget filter.
var priceLevels = map[string]string{
	"PRICE_LEVEL_FREE":           "Free",
	"PRICE_LEVEL_INEXPENSIVE":    "$",
	"PRICE_LEVEL_MODERATE":       "$$",
	"PRICE_LEVEL_EXPENSIVE":      "$$$",
	"PRICE_LEVEL_VERY_EXPENSIVE": "$$$$",
}

// PlacesSource generates candidates with Google Places Text Search.
type PlacesSource struct {
	client google.Client
}

// NewPlacesSource creates a PlacesSource backed by client.
func NewPlacesSource(client google.Client) *PlacesSource {
	return &PlacesSource{client: client}
}

// Name implements Source.
func (s *PlacesSource) Name() string { return "places" }

// Fetch implements Source.
func (s *PlacesSource) Fetch(ctx context.Context, req Request) ([]model.Candidate, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = defaultPlacesLimit
	}

	query := PlacesQuery(req)
	resp, err := s.client.TextSearch(ctx, google.TextSearchRequest{
		TextQuery:      query,
		MaxResultCount: limit,
	})
	if err != nil {
		return nil, eris.Wrapf(err, "source: places search %q", query)
	}

	raws := make([]RawCandidate, 0, len(resp.Places))
	for _, p := range resp.Places {
		raws = append(raws, fromPlace(p))
	}
	out := NormalizeAll(raws)

	zap.L().Debug("places candidates fetched",
		zap.String("category", string(req.Category)),
		zap.String("query", query),
		zap.Int("count", len(out)),
	)
	return out, nil
}

// PlacesQuery builds the text query for a request, e.g.
// "cottage lodging near beach in Lisbon".
func PlacesQuery(req Request) string {
	terms := append([]string{}, req.Prefs.Types...)
	if req.Category == model.CategoryDining {
		terms = append(terms, req.Prefs.Dietary...)
	}
	terms = append(terms, model.Profile(req.Category).SearchNoun)

	q := strings.Join(terms, " ")
	if len(req.Prefs.Location) > 0 {
		q += " near " + strings.Join(req.Prefs.Location, " ")
	}
	if d := strings.TrimSpace(req.Destination); d != "" {
		q += " in " + d
	}
	return strings.TrimSpace(q)
}

func fromPlace(p google.Place) RawCandidate {
	raw := RawCandidate{
		ID:          p.ID,
		Name:        p.DisplayName.Text,
		Description: p.EditorialSummary.Text,
		Location:    p.FormattedAddress,
		SourceRef:   p.ID,
	}
	if p.Rating > 0 {
		raw.Rating = p.Rating
	}

	tags := make([]string, 0, len(p.Types))
	for _, t := range p.Types {
		tags = append(tags, strings.ReplaceAll(t, "_", " "))
	}
	raw.Tags = tags

	switch {
	case p.PriceRange != nil && p.PriceRange.StartPrice != nil && p.PriceRange.EndPrice != nil:
		raw.PriceEstimate = p.PriceRange.StartPrice.Units + "-" + p.PriceRange.EndPrice.Units
	case p.PriceRange != nil && p.PriceRange.StartPrice != nil:
		raw.PriceEstimate = p.PriceRange.StartPrice.Units
	default:
		raw.PriceEstimate = priceLevels[p.PriceLevel]
	}
	return raw
}
