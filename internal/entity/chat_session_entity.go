package entity

import (
	"time"
)

// ChatSession is an archived conversation kept in the user's history.
type ChatSession struct {
	Id             string          `json:"id"`
	Title          string          `json:"title"`
	Summary        string          `json:"summary"`
	Tags           []string        `json:"tags"`
	Timestamp      time.Time       `json:"timestamp"`
	Transcriptions []Transcription `json:"transcriptions"`
}
