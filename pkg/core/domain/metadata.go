package domain

// Metadata is what the fetcher scrapes from a page. Missing values are "".
type Metadata struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image"`
}
