package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeKVs_RedactsSensitiveKeys(t *testing.T) {
	out := sanitizeKVs([]interface{}{
		"task_id", "t1",
		"password", "hunter2",
		"access_token", "abc",
		"answer", "my manager is great",
		"dangling",
	})

	assert.Equal(t, []interface{}{
		"task_id", "t1",
		"password", "[REDACTED]",
		"access_token", "[REDACTED]",
		"answer", "[REDACTED]",
		"dangling",
	}, out)
}

func TestNewNop_DoesNotPanic(t *testing.T) {
	l := NewNop().With("component", "test")
	l.Info("hello", "k", "v")
	l.Sync()
}
