package model

import "time"

// DraftRecord is the durable snapshot of an unsubmitted feedback session.
// It is always written wholesale.
type DraftRecord struct {
	Responses    ResponseBuffer `json:"responses"`
	CurrentIndex int            `json:"currentIndex"`
	SavedAt      time.Time      `json:"savedAt"`
}
