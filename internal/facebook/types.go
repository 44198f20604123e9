package facebook

import "time"

// Config holds the settings of the Facebook page source
type Config struct {
	Name       string
	Title      string
	GraphURL   string
	APIVersion string
	PageID     string
	Token      string
	Limit      int
	Timeout    time.Duration
	UserAgent  string

	MinInterval time.Duration // minimum delay between Graph API calls, 0 disables
}

// PostsResponse is the Graph API body of /{page-id}/posts
type PostsResponse struct {
	Data   []Post  `json:"data"`
	Paging *Paging `json:"paging,omitempty"`
}

// Post is a single page post. Message is absent for photo or share-only posts.
type Post struct {
	ID          string `json:"id"`
	Message     string `json:"message,omitempty"`
	CreatedTime string `json:"created_time,omitempty"`
}

// Paging holds the cursors of a Graph API list response
type Paging struct {
	Next     string `json:"next,omitempty"`
	Previous string `json:"previous,omitempty"`
}
