package bot

import (
	"context"
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uley/internal/storage/stubs"
)

func textUpdate(id int, chatID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{
		UpdateID: id,
		Message: &tgbotapi.Message{
			Chat: &tgbotapi.Chat{ID: chatID},
			From: &tgbotapi.User{FirstName: "Анна"},
			Text: text,
		},
	}
}

func TestPollOnce_CursorAdvancesPastEveryUpdate(t *testing.T) {
	b, api, _ := newTestBot(allowedMock())
	var checkpoints []int
	b.checkpoint = func(offset int) { checkpoints = append(checkpoints, offset) }

	api.batches = [][]tgbotapi.Update{{
		textUpdate(5, strangerChat, "/id"),
		{UpdateID: 6}, // bodyless: a callback or an edit, still consumes the cursor
		{UpdateID: 7, Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: employeeChat}}},
	}}

	require.NoError(t, b.pollOnce(context.Background()))

	assert.Equal(t, 8, b.offset)
	assert.Equal(t, []int{8}, checkpoints)
	// Only the /id update produced a reply.
	assert.Len(t, api.texts(), 1)
}

func TestPollOnce_RequestsCurrentOffset(t *testing.T) {
	b, api, _ := newTestBot(allowedMock())
	b.offset = 41

	require.NoError(t, b.pollOnce(context.Background()))

	require.Len(t, api.offsets, 1)
	assert.Equal(t, 41, api.offsets[0])
}

func TestPollOnce_EmptyBatchSkipsCheckpoint(t *testing.T) {
	b, _, _ := newTestBot(allowedMock())
	called := false
	b.checkpoint = func(int) { called = true }

	require.NoError(t, b.pollOnce(context.Background()))

	assert.False(t, called)
}

func TestPollOnce_StaleUpdateDoesNotRewindCursor(t *testing.T) {
	b, api, _ := newTestBot(allowedMock())
	b.offset = 10
	api.batches = [][]tgbotapi.Update{{{UpdateID: 3}}}

	require.NoError(t, b.pollOnce(context.Background()))

	assert.Equal(t, 10, b.offset)
}

func TestPollOnce_TransportError(t *testing.T) {
	b, api, _ := newTestBot(allowedMock())
	api.pollErr = errors.New("telegram down")

	err := b.pollOnce(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "get updates")
}

func TestStart_RestoresCursorAndStopsOnCancel(t *testing.T) {
	db := stubs.NewMockDB()
	require.NoError(t, db.SetPollOffset(context.Background(), 41))
	b, api, _ := newTestBot(db)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	b.Start(ctx)

	assert.Equal(t, 41, b.offset)
	require.NotEmpty(t, api.offsets)
	assert.Equal(t, 41, api.offsets[0])
}

func TestStart_LifecycleNotices(t *testing.T) {
	db := stubs.NewMockDB()
	b, api, _ := newTestBot(db)
	b.operator = "Оксана"

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	b.Start(ctx)

	texts := api.texts()
	require.GreaterOrEqual(t, len(texts), 2)
	assert.Contains(t, texts[0], "БОТ РАБОТАЕТ")
	assert.Contains(t, texts[0], "Оксана")
	// Operator absent from the store degrades to the generic notice.
	assert.Contains(t, texts[len(texts)-1], "БОТ ОСТАНОВЛЕН")
	assert.Contains(t, texts[len(texts)-1], "Не найден в БД")
}
