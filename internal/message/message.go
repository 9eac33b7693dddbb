package message

import "time"

// Message is one chat message as fetched from a message source.
type Message struct {
	ID     int64
	Date   time.Time
	ChatID int64
	// Text is empty when the message carries no text (stickers, photos...).
	Text    string
	ReplyTo *int64
}

// IsReply reports whether the message was sent as a reply to another one.
func (m Message) IsReply() bool {
	return m.ReplyTo != nil
}
