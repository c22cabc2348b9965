package model

import "time"

type MessageKind string

const (
	MessageKindInfo    MessageKind = "info"
	MessageKindSuccess MessageKind = "success"
	MessageKindFailure MessageKind = "failure"
)

// UploadMessage is one entry of an upload record's activity log.
type UploadMessage struct {
	ID        int64       `json:"id" bson:"id"`
	UploadID  int64       `json:"upload_id" bson:"upload_id"`
	Kind      MessageKind `json:"kind" bson:"kind"`
	Body      string      `json:"body" bson:"body"`
	CreatedAt time.Time   `json:"created_at" bson:"created_at"`
}

const (
	UploadEventStatus   = "upload_status"
	UploadEventProgress = "upload_progress"
)

// UploadEvent is published to realtime subscribers and message brokers.
type UploadEvent struct {
	Type           string      `json:"type"`
	UploadID       int64       `json:"upload_id"`
	Title          string      `json:"title"`
	State          UploadState `json:"state"`
	YouTubeVideoID *string     `json:"youtube_video_id,omitempty"`
	Error          *string     `json:"error,omitempty"`
	Message        string      `json:"message,omitempty"`
	Progress       float64     `json:"progress,omitempty"`
	At             time.Time   `json:"at"`
}
