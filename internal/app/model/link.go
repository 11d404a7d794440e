package model

// IndexKey is the synthetic key used when a short link is mounted on the
// root path of its hostname.
const IndexKey = ":index"

// LinkRecord is the stored mapping behind a short link. It is written by
// the management layer and read-only from the resolver's point of view.
type LinkRecord struct {
	URL          string `json:"url"`
	Password     bool   `json:"password,omitempty"`
	PasswordHash string `json:"password_hash,omitempty"`
	Proxy        bool   `json:"proxy,omitempty"`
}
