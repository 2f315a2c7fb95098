package domain

import (
	"errors"
	"time"
)

var (
	ErrMessageNotFound    = errors.New("message not found")
	ErrSubscriberNotFound = errors.New("subscriber not found")
	ErrAlreadySubscribed  = errors.New("already subscribed")
	ErrSettingNotFound    = errors.New("setting not found")
)

type ContactSubmission struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

type Subscriber struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	IsActive     bool      `json:"is_active"`
	SubscribedAt time.Time `json:"subscribed_at"`
}

type Setting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Stats backs the admin dashboard counters.
type Stats struct {
	Projects       int `json:"projects"`
	Publications   int `json:"publications"`
	Messages       int `json:"messages"`
	UnreadMessages int `json:"unread_messages"`
	Subscribers    int `json:"subscribers"`
	Education      int `json:"education"`
	Experiences    int `json:"experiences"`
	Certifications int `json:"certifications"`
	Achievements   int `json:"achievements"`
}
