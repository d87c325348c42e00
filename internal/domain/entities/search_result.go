package entities

// SearchHit is one site search result.
type SearchHit struct {
	ID      string      `json:"id"`
	Kind    ContentKind `json:"kind"`
	Page    string      `json:"page"`
	Path    string      `json:"path"`
	Title   string      `json:"title"`
	Snippet string      `json:"snippet"`
	Score   float64     `json:"score"`
}

// SearchResults wraps hits with the backend that produced them.
type SearchResults struct {
	Query   string       `json:"query"`
	Hits    []*SearchHit `json:"hits"`
	Total   int          `json:"total"`
	Backend string       `json:"backend"`
}
