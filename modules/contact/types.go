// Package contact handles messages sent through the public contact form and
// the admin-side reply flow. Replies are append-only; a message's status only
// ever moves forward through unread, read, replied.
package contact

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// MessageStatus tracks how far a contact message has been handled.
type MessageStatus string

const (
	StatusUnread  MessageStatus = "unread"
	StatusRead    MessageStatus = "read"
	StatusReplied MessageStatus = "replied"
)

// Message is one submission from the public contact form.
type Message struct {
	ID        uuid.UUID
	Name      string
	Email     string
	Phone     string
	Subject   string
	Body      string
	Status    MessageStatus
	CreatedAt time.Time
	Replies   []Reply
}

// Reply is one admin response to a message. Replies are never edited or
// deleted once written.
type Reply struct {
	ID        uuid.UUID
	MessageID uuid.UUID
	AdminID   uuid.UUID
	Body      string
	CreatedAt time.Time
}

var (
	ErrMessageNotFound = errors.New("contact: message not found")
	ErrInvalidEmail    = errors.New("contact: invalid email address")
	ErrInvalidPhone    = errors.New("contact: invalid phone number")
	ErrEmptyName       = errors.New("contact: name is required")
	ErrEmptySubject    = errors.New("contact: subject is required")
	ErrEmptyBody       = errors.New("contact: message body is required")
	ErrEmptyReply      = errors.New("contact: reply body is required")
)
