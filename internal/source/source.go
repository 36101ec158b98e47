// Package source fetches raw candidates from external providers (Google
// Places, Claude) and normalizes them into model.Candidate values.
package source

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/sells-group/trip-planner/internal/model"
)

// Request describes one candidate generation call.
type Request struct {
	Category    model.Category
	Destination string
	Prefs       model.PreferenceSet
	Limit       int
}

// Source returns unranked candidates for a request.
type Source interface {
	Name() string
	Fetch(ctx context.Context, req Request) ([]model.Candidate, error)
}

// RawCandidate is a provider record before normalization. Only Name is
// required; numeric fields tolerate both numbers and strings.
type RawCandidate struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	PriceEstimate any    `json:"price_estimate"`
	Rating        any    `json:"rating"`
	Location      string `json:"location"`
	Tags          any    `json:"tags"`
	SourceRef     string `json:"source_ref"`
}

// Normalize maps a raw record onto a Candidate. Records without a name are
// dropped. A missing id is replaced by a hash of the case-folded name and
// location, and ratings outside 0..5 become absent.
func Normalize(raw RawCandidate) (model.Candidate, bool) {
	name := strings.TrimSpace(raw.Name)
	if name == "" {
		return model.Candidate{}, false
	}

	c := model.Candidate{
		ID:            strings.TrimSpace(raw.ID),
		Name:          name,
		Description:   strings.TrimSpace(raw.Description),
		PriceEstimate: priceText(raw.PriceEstimate),
		Rating:        ratingValue(raw.Rating),
		Location:      strings.TrimSpace(raw.Location),
		Tags:          tagList(raw.Tags),
		SourceRef:     strings.TrimSpace(raw.SourceRef),
	}
	if c.ID == "" {
		c.ID = ContentID(c.Name, c.Location)
	}
	return c, true
}

// NormalizeAll normalizes raws, dropping unusable records.
func NormalizeAll(raws []RawCandidate) []model.Candidate {
	out := make([]model.Candidate, 0, len(raws))
	for _, r := range raws {
		if c, ok := Normalize(r); ok {
			out = append(out, c)
		}
	}
	return out
}

// ContentID is the fallback candidate id for providers without one.
func ContentID(name, location string) string {
	sum := sha256.Sum256([]byte(model.NormalizeToken(name) + "|" + model.NormalizeToken(location)))
	return "h_" + hex.EncodeToString(sum[:8])
}

func priceText(v any) string {
	switch p := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(p)
	case float64:
		return strconv.FormatFloat(p, 'f', -1, 64)
	case int:
		return strconv.Itoa(p)
	case map[string]any:
		lo, okLo := numberOf(p["min"])
		hi, okHi := numberOf(p["max"])
		switch {
		case okLo && okHi:
			return strconv.FormatFloat(lo, 'f', -1, 64) + "-" + strconv.FormatFloat(hi, 'f', -1, 64)
		case okHi:
			return strconv.FormatFloat(hi, 'f', -1, 64)
		case okLo:
			return strconv.FormatFloat(lo, 'f', -1, 64)
		}
	}
	return ""
}

func ratingValue(v any) *float64 {
	r, ok := numberOf(v)
	if !ok || r < 0 || r > 5 {
		return nil
	}
	return &r
}

func numberOf(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

func tagList(v any) []string {
	var raw []string
	switch t := v.(type) {
	case string:
		raw = strings.Split(t, ",")
	case []string:
		raw = t
	case []any:
		for _, x := range t {
			if s, ok := x.(string); ok {
				raw = append(raw, s)
			}
		}
	}
	return model.AppendUnique(nil, raw...)
}
