package model

import "time"

// Task is a feedback form assigned to every employee of a department.
type Task struct {
	ID         string     `json:"id" bson:"_id" yaml:"id"`
	Title      string     `json:"title" bson:"title" yaml:"title"`
	Department string     `json:"department" bson:"department" yaml:"department"`
	Questions  []Question `json:"questions" bson:"questions" yaml:"questions"`
	CreatedAt  time.Time  `json:"createdAt" bson:"createdAt" yaml:"-"`
	UpdatedAt  time.Time  `json:"updatedAt" bson:"updatedAt" yaml:"-"`
}

// TaskSummary is the list view of a task for an employee.
type TaskSummary struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	QuestionCount int    `json:"questionCount"`
	Submitted     bool   `json:"submitted"`
}
