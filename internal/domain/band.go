package domain

// Band is a band record owned by the upstream API.
type Band struct {
	ID      int      `json:"id"`
	Name    string   `json:"name"`
	Country string   `json:"country,omitempty"`
	Genres  []string `json:"genres,omitempty"`
}

// BandPage is one upstream page of the band list.
type BandPage struct {
	Bands []Band `json:"bands"`
	Total int    `json:"total"`
	Pages int    `json:"pages"`
}
