package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslateChatInsert(t *testing.T) {
	payload := []byte(`{
		"op": "INSERT",
		"old": null,
		"new": {"id": 3, "ws_id": 1, "name": "general", "type": "group", "members": [7, 9]}
	}`)

	deliveries, err := Translate(ChannelChatUpdated, payload)
	require.NoError(t, err)
	require.Len(t, deliveries, 1)

	d := deliveries[0]
	assert.Equal(t, []int64{7, 9}, d.UserIDs)
	nc, ok := d.Event.(*NewChat)
	require.True(t, ok)
	assert.Equal(t, "NewChat", nc.Name())
	assert.Equal(t, int64(3), nc.Chat.ID)
	assert.Equal(t, "general", nc.Chat.Name)
}

func TestTranslateChatUpdateAddsMember(t *testing.T) {
	payload := []byte(`{
		"op": "UPDATE",
		"old": {"id": 3, "ws_id": 1, "type": "group", "members": [7, 9]},
		"new": {"id": 3, "ws_id": 1, "type": "group", "members": [7, 9, 11]}
	}`)

	deliveries, err := Translate(ChannelChatUpdated, payload)
	require.NoError(t, err)
	require.Len(t, deliveries, 1)

	d := deliveries[0]
	assert.Equal(t, []int64{7, 9, 11}, d.UserIDs, "fan-out is the updated member list")
	ac, ok := d.Event.(*AddToChat)
	require.True(t, ok)
	assert.Equal(t, "AddToChat", ac.Name())
}

func TestTranslateChatUpdateRemovesMember(t *testing.T) {
	payload := []byte(`{
		"op": "UPDATE",
		"old": {"id": 3, "ws_id": 1, "type": "group", "members": [7, 9]},
		"new": {"id": 3, "ws_id": 1, "type": "group", "members": [7]}
	}`)

	deliveries, err := Translate(ChannelChatUpdated, payload)
	require.NoError(t, err)
	require.Len(t, deliveries, 1)

	d := deliveries[0]
	// the removed user is still in the fan-out set, so their client can react
	assert.Equal(t, []int64{7, 9}, d.UserIDs)
	rm, ok := d.Event.(*RemoveFromChat)
	require.True(t, ok)
	assert.Equal(t, int64(3), rm.ChatID)
	assert.Equal(t, int64(9), rm.UserID)
}

func TestTranslateChatUpdateAddAndRemove(t *testing.T) {
	payload := []byte(`{
		"op": "UPDATE",
		"old": {"id": 3, "ws_id": 1, "type": "group", "members": [7, 9]},
		"new": {"id": 3, "ws_id": 1, "type": "group", "members": [7, 11]}
	}`)

	deliveries, err := Translate(ChannelChatUpdated, payload)
	require.NoError(t, err)
	require.Len(t, deliveries, 2)

	_, ok := deliveries[0].Event.(*AddToChat)
	assert.True(t, ok)
	rm, ok := deliveries[1].Event.(*RemoveFromChat)
	require.True(t, ok)
	assert.Equal(t, int64(9), rm.UserID)
	assert.Equal(t, []int64{7, 9}, deliveries[1].UserIDs)
}

func TestTranslateChatUpdateNoMembershipChange(t *testing.T) {
	payload := []byte(`{
		"op": "UPDATE",
		"old": {"id": 3, "ws_id": 1, "name": "old", "type": "group", "members": [7, 9]},
		"new": {"id": 3, "ws_id": 1, "name": "renamed", "type": "group", "members": [7, 9]}
	}`)

	deliveries, err := Translate(ChannelChatUpdated, payload)
	require.NoError(t, err)
	assert.Empty(t, deliveries, "a rename alone produces no events")
}

func TestTranslateChatDelete(t *testing.T) {
	payload := []byte(`{
		"op": "DELETE",
		"old": {"id": 3, "ws_id": 1, "type": "group", "members": [7, 9]},
		"new": null
	}`)

	deliveries, err := Translate(ChannelChatUpdated, payload)
	require.NoError(t, err)
	require.Len(t, deliveries, 2)
	for i, want := range []int64{7, 9} {
		rm, ok := deliveries[i].Event.(*RemoveFromChat)
		require.True(t, ok)
		assert.Equal(t, want, rm.UserID)
		assert.Equal(t, []int64{7, 9}, deliveries[i].UserIDs)
	}
}

func TestTranslateNewMessage(t *testing.T) {
	payload := []byte(`{
		"message": {"id": 42, "chat_id": 3, "sender_id": 7, "content": "hi", "files": [], "created_at": "2024-06-01T10:00:00Z"},
		"members": [7, 9]
	}`)

	deliveries, err := Translate(ChannelChatMessageCreated, payload)
	require.NoError(t, err)
	require.Len(t, deliveries, 1)

	d := deliveries[0]
	assert.Equal(t, []int64{7, 9}, d.UserIDs, "sender is included in the fan-out set")
	nm, ok := d.Event.(*NewMessage)
	require.True(t, ok)
	assert.Equal(t, "NewMessage", nm.Name())
	assert.Equal(t, "hi", nm.Message.Content)
}

func TestTranslateRejectsBadInput(t *testing.T) {
	cases := []struct {
		name    string
		channel string
		payload string
	}{
		{"unknown channel", "user_updated", `{}`},
		{"invalid json", ChannelChatUpdated, `{not json`},
		{"unknown op", ChannelChatUpdated, `{"op": "TRUNCATE"}`},
		{"insert without row", ChannelChatUpdated, `{"op": "INSERT"}`},
		{"update without old", ChannelChatUpdated, `{"op": "UPDATE", "new": {"id": 3, "members": [7]}}`},
		{"delete without old", ChannelChatUpdated, `{"op": "DELETE"}`},
		{"message missing", ChannelChatMessageCreated, `{"members": [7]}`},
		{"message invalid json", ChannelChatMessageCreated, `[1, 2`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			deliveries, err := Translate(tc.channel, []byte(tc.payload))
			assert.Error(t, err)
			assert.Nil(t, deliveries)
		})
	}
}

func TestTranslateUnknownChannelError(t *testing.T) {
	_, err := Translate("whatever", []byte(`{}`))
	assert.ErrorIs(t, err, ErrUnknownChannel)
}
