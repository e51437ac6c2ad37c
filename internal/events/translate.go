package events

import (
	"encoding/json"
	"errors"
	"fmt"

	"chatnotify/internal/models"
)

// Notification channels the chat server's triggers publish on.
const (
	ChannelChatUpdated        = "chat_updated"
	ChannelChatMessageCreated = "chat_message_created"
)

var ErrUnknownChannel = errors.New("unknown notification channel")

type chatUpdated struct {
	Op  string       `json:"op"`
	Old *models.Chat `json:"old"`
	New *models.Chat `json:"new"`
}

type chatMessageCreated struct {
	Message *models.Message `json:"message"`
	Members []int64         `json:"members"`
}

// Translate maps one raw notification to zero or more deliveries. It is a
// pure function over the payload: membership comes from the notification
// itself, never from a database query, so the fan-out set reflects the
// writer's view at trigger time.
func Translate(channel string, payload []byte) ([]Delivery, error) {
	switch channel {
	case ChannelChatUpdated:
		var cu chatUpdated
		if err := json.Unmarshal(payload, &cu); err != nil {
			return nil, fmt.Errorf("decode %s: %w", channel, err)
		}
		return translateChatUpdated(&cu)
	case ChannelChatMessageCreated:
		var mc chatMessageCreated
		if err := json.Unmarshal(payload, &mc); err != nil {
			return nil, fmt.Errorf("decode %s: %w", channel, err)
		}
		if mc.Message == nil {
			return nil, fmt.Errorf("%s: missing message", channel)
		}
		return []Delivery{{
			UserIDs: mc.Members,
			Event:   &NewMessage{Message: mc.Message},
		}}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownChannel, channel)
	}
}

func translateChatUpdated(cu *chatUpdated) ([]Delivery, error) {
	switch cu.Op {
	case "INSERT":
		if cu.New == nil {
			return nil, errors.New("chat_updated INSERT: missing new row")
		}
		return []Delivery{{
			UserIDs: cu.New.Members,
			Event:   &NewChat{Chat: cu.New},
		}}, nil
	case "UPDATE":
		if cu.Old == nil || cu.New == nil {
			return nil, errors.New("chat_updated UPDATE: missing old or new row")
		}
		var out []Delivery
		if added := diffMembers(cu.New.Members, cu.Old.Members); len(added) > 0 {
			out = append(out, Delivery{
				UserIDs: cu.New.Members,
				Event:   &AddToChat{Chat: cu.New},
			})
		}
		// removed users get the event too, on the pre-removal member list
		for _, id := range diffMembers(cu.Old.Members, cu.New.Members) {
			out = append(out, Delivery{
				UserIDs: cu.Old.Members,
				Event:   &RemoveFromChat{ChatID: cu.Old.ID, UserID: id},
			})
		}
		return out, nil
	case "DELETE":
		if cu.Old == nil {
			return nil, errors.New("chat_updated DELETE: missing old row")
		}
		out := make([]Delivery, 0, len(cu.Old.Members))
		for _, id := range cu.Old.Members {
			out = append(out, Delivery{
				UserIDs: cu.Old.Members,
				Event:   &RemoveFromChat{ChatID: cu.Old.ID, UserID: id},
			})
		}
		return out, nil
	default:
		return nil, fmt.Errorf("chat_updated: unknown op %q", cu.Op)
	}
}

// diffMembers returns the ids in a that are not in b, preserving a's order.
func diffMembers(a, b []int64) []int64 {
	seen := make(map[int64]struct{}, len(b))
	for _, id := range b {
		seen[id] = struct{}{}
	}
	var out []int64
	for _, id := range a {
		if _, ok := seen[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}
