package model

// Candidate is a single recommendable option (stay, route, restaurant, activity).
// Candidates are immutable once ranked; callers copy before changing them.
type Candidate struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description,omitempty"`
	PriceEstimate string   `json:"price_estimate,omitempty"`
	Rating        *float64 `json:"rating,omitempty"`
	Location      string   `json:"location,omitempty"`
	Tags          []string `json:"tags,omitempty"`
	SourceRef     string   `json:"source_ref,omitempty"`
}

// RatingValue returns the rating, or 0 when absent.
func (c Candidate) RatingValue() float64 {
	if c.Rating == nil {
		return 0
	}
	return *c.Rating
}

// DedupKey identifies candidates that describe the same real-world place:
// the provider reference when present, otherwise the case-folded name.
func (c Candidate) DedupKey() string {
	if c.SourceRef != "" {
		return "ref:" + c.SourceRef
	}
	return "name:" + NormalizeToken(c.Name)
}
