package service

// Broadcaster interface for WebSocket delivery (avoids import cycle)
type Broadcaster interface {
	SendToUser(userID, taskID string, msgType string, payload interface{})
	DisconnectUser(userID string)
}
