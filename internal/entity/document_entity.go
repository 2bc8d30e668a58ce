package entity

import (
	"time"
)

// LiveDocument is a co-edited text document. Content carries inline **bold** and
// *italic* markers.
type LiveDocument struct {
	Id           string    `json:"id"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	LastModified time.Time `json:"last_modified"`
}
