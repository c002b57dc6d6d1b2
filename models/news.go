package models

// NewsItem is one entry of the home screen news feed.
type NewsItem struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Description string `json:"description,omitempty"`
	PubDate     string `json:"pub_date,omitempty"`
}
