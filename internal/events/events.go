package events

import "chatnotify/internal/models"

// AppEvent is the closed set of events pushed to clients. An event is
// immutable once constructed and may be shared read-only across every
// connection it is delivered to.
type AppEvent interface {
	// Name is the stream event label the client switches on.
	Name() string
	// Payload is the JSON-encodable body of the stream event.
	Payload() any
}

type NewChat struct {
	Chat *models.Chat
}

func (e *NewChat) Name() string { return "NewChat" }
func (e *NewChat) Payload() any { return e.Chat }

type AddToChat struct {
	Chat *models.Chat
}

func (e *AddToChat) Name() string { return "AddToChat" }
func (e *AddToChat) Payload() any { return e.Chat }

type RemoveFromChat struct {
	ChatID int64 `json:"chat_id"`
	UserID int64 `json:"user_id"`
}

func (e *RemoveFromChat) Name() string { return "RemoveFromChat" }
func (e *RemoveFromChat) Payload() any { return e }

type NewMessage struct {
	Message *models.Message
}

func (e *NewMessage) Name() string { return "NewMessage" }
func (e *NewMessage) Payload() any { return e.Message }

// Delivery pairs one event with the users that must receive it.
type Delivery struct {
	UserIDs []int64
	Event   AppEvent
}
