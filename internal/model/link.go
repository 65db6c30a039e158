package model

// LinkRequest carries the raw query of a signed link request. TTL is kept as
// text so that parsing and range checks happen in one place.
type LinkRequest struct {
	Key string
	TTL string
}

// SignedLink is a time-limited download URL for a resolved object key.
type SignedLink struct {
	URL       string `json:"url"`
	ExpiresIn int    `json:"expiresIn"`
	Key       string `json:"key"`
}
