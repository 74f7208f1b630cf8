package model

import "strings"

// Question is one free-text prompt of a feedback task. Immutable once the task is published.
type Question struct {
	ID          string `json:"id" bson:"id" yaml:"id"`
	Text        string `json:"text" bson:"text" yaml:"text"`
	Placeholder string `json:"placeholder,omitempty" bson:"placeholder,omitempty" yaml:"placeholder,omitempty"`
}

// ResponseBuffer maps question id to the free-text answer typed so far.
type ResponseBuffer map[string]string

// Clone returns an independent copy of the buffer.
func (b ResponseBuffer) Clone() ResponseBuffer {
	out := make(ResponseBuffer, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}

// HasAnswer reports whether questionID has a non-blank answer.
func (b ResponseBuffer) HasAnswer(questionID string) bool {
	return strings.TrimSpace(b[questionID]) != ""
}
