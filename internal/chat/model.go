package chat

import (
	"encoding/json"
	"fmt"
)

// MessageType discriminates the message union.
type MessageType string

const (
	TypeText  MessageType = "text"
	TypeImage MessageType = "image"
	TypeVideo MessageType = "video"
)

// Profile is immutable once created; dialogs reference it by id only.
type Profile struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// Message is a tagged union over text/image/video. Only the fields of the
// active variant are populated; MarshalJSON emits exactly that variant.
type Message struct {
	ID        string      `json:"id"`
	DialogID  string      `json:"dialogId"`
	SenderID  string      `json:"senderId"`
	CreatedAt int64       `json:"createdAt"`
	Type      MessageType `json:"type"`
	Delivered bool        `json:"delivered"`

	// text
	Content string `json:"content,omitempty"`
	// image
	ImageURL string `json:"imageUrl,omitempty"`
	Caption  string `json:"caption,omitempty"`
	// video
	VideoURL     string `json:"videoUrl,omitempty"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
	Duration     int    `json:"duration,omitempty"`
}

type baseMessage struct {
	ID        string      `json:"id"`
	DialogID  string      `json:"dialogId"`
	SenderID  string      `json:"senderId"`
	CreatedAt int64       `json:"createdAt"`
	Type      MessageType `json:"type"`
	Delivered bool        `json:"delivered"`
}

func (m Message) base() baseMessage {
	return baseMessage{
		ID:        m.ID,
		DialogID:  m.DialogID,
		SenderID:  m.SenderID,
		CreatedAt: m.CreatedAt,
		Type:      m.Type,
		Delivered: m.Delivered,
	}
}

// MarshalJSON switches exhaustively over the variant so that adding a new
// message type forces a change here.
func (m Message) MarshalJSON() ([]byte, error) {
	switch m.Type {
	case TypeText:
		return json.Marshal(struct {
			baseMessage
			Content string `json:"content"`
		}{m.base(), m.Content})
	case TypeImage:
		return json.Marshal(struct {
			baseMessage
			ImageURL string `json:"imageUrl"`
			Caption  string `json:"caption,omitempty"`
		}{m.base(), m.ImageURL, m.Caption})
	case TypeVideo:
		return json.Marshal(struct {
			baseMessage
			VideoURL     string `json:"videoUrl"`
			ThumbnailURL string `json:"thumbnailUrl"`
			Duration     int    `json:"duration"`
		}{m.base(), m.VideoURL, m.ThumbnailURL, m.Duration})
	default:
		return nil, fmt.Errorf("marshal message %s: unknown type %q", m.ID, m.Type)
	}
}

// Dialog is a two-party conversation. LastMessage and UpdatedAt are caches
// of the log's most recent entry and are rewritten on every append.
type Dialog struct {
	ID             string    `json:"id"`
	ParticipantIDs [2]string `json:"participantIds"`
	LastMessage    Message   `json:"lastMessage"`
	UpdatedAt      int64     `json:"updatedAt"`
}

// HasParticipant reports whether id is one of the dialog's two participants.
func (d Dialog) HasParticipant(id string) bool {
	return d.ParticipantIDs[0] == id || d.ParticipantIDs[1] == id
}

// Page is an offset-based slice of an ordered collection.
type Page[T any] struct {
	Items   []T  `json:"items"`
	Total   int  `json:"total"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"hasMore"`
}
