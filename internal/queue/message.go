package queue

import "encoding/json"

// MessageVersion is the current tracking message schema version.
const MessageVersion = 1

// TrackMessage asks a tracker to follow one submitted job to completion.
type TrackMessage struct {
	InvocationArn string `json:"invocationArn"`
	InputURI      string `json:"inputUri"`
	OutputURI     string `json:"outputUri"`
	ProjectArn    string `json:"projectArn"`
	RequestID     string `json:"requestId"`
	EnqueuedAt    string `json:"enqueuedAt"`
	Version       int    `json:"version"`
}

// EncodeMessage returns the JSON representation of a message.
func EncodeMessage(msg TrackMessage) ([]byte, error) {
	return json.Marshal(msg)
}

// DecodeMessage parses a JSON payload into a TrackMessage.
func DecodeMessage(payload []byte) (TrackMessage, error) {
	var msg TrackMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return TrackMessage{}, err
	}
	return msg, nil
}
