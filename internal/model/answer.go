package model

import "time"

// Submission is a completed, anonymous set of answers. It deliberately has no user field.
type Submission struct {
	ID          string         `json:"id" bson:"_id"`
	TaskID      string         `json:"taskId" bson:"taskId"`
	Department  string         `json:"department" bson:"department"`
	Responses   ResponseBuffer `json:"responses" bson:"responses"`
	SubmittedAt time.Time      `json:"submittedAt" bson:"submittedAt"`
}

// Completion records that a user has submitted a task, without linking to the answers.
type Completion struct {
	UserID      string    `json:"userId" bson:"userId"`
	TaskID      string    `json:"taskId" bson:"taskId"`
	CompletedAt time.Time `json:"completedAt" bson:"completedAt"`
}
