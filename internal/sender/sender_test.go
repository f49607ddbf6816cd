package sender

import (
	"errors"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeAPI records deliveries and fails for the chats listed in failFor.
type fakeAPI struct {
	mu       sync.Mutex
	messages map[int64][]string
	docs     map[int64]int
	failFor  map[int64]bool
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		messages: make(map[int64][]string),
		docs:     make(map[int64]int),
		failFor:  make(map[int64]bool),
	}
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch v := c.(type) {
	case tgbotapi.MessageConfig:
		if f.failFor[v.ChatID] {
			return tgbotapi.Message{}, errors.New("blocked by user")
		}
		f.messages[v.ChatID] = append(f.messages[v.ChatID], v.Text)
	case tgbotapi.DocumentConfig:
		if f.failFor[v.ChatID] {
			return tgbotapi.Message{}, errors.New("blocked by user")
		}
		f.docs[v.ChatID]++
	}
	return tgbotapi.Message{}, nil
}

func newTestSender(api *fakeAPI, defaultChatID int64) *Sender {
	s := New(api, defaultChatID, zap.NewNop())
	s.filePause = 0
	s.recipientPause = 0
	return s
}

func TestBroadcast_FailureIsolatedPerRecipient(t *testing.T) {
	api := newFakeAPI()
	api.failFor[2] = true
	s := newTestSender(api, 0)

	result := s.Broadcast("Привет!", []int64{1, 2, 3}, nil)

	assert.True(t, result.Success)
	assert.Equal(t, 2, result.Sent)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "ID 2")
	assert.Equal(t, []string{"Привет!"}, api.messages[1])
	assert.Empty(t, api.messages[2])
	assert.Equal(t, []string{"Привет!"}, api.messages[3])
	assert.Equal(t, "Отправлено: 2 из 3 сотр. (Ошибки: 1)", result.Message)
}

func TestBroadcast_AllCleanRun(t *testing.T) {
	api := newFakeAPI()
	s := newTestSender(api, 0)

	result := s.Broadcast("Отчет готов", []int64{1, 2}, nil)

	assert.True(t, result.Success)
	assert.Equal(t, 2, result.Sent)
	assert.Empty(t, result.Errors)
	assert.Equal(t, "Отправлено: 2 из 2 сотр.", result.Message)
}

func TestBroadcast_FallsBackToDefaultChat(t *testing.T) {
	api := newFakeAPI()
	s := newTestSender(api, 77)

	result := s.Broadcast("Привет!", nil, nil)

	assert.True(t, result.Success)
	assert.Equal(t, 1, result.Sent)
	assert.Equal(t, []string{"Привет!"}, api.messages[77])
}

func TestBroadcast_NoRecipientsAnywhere(t *testing.T) {
	api := newFakeAPI()
	s := newTestSender(api, 0)

	result := s.Broadcast("Привет!", nil, nil)

	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "Нет получателей")
	assert.Empty(t, api.messages, "no transport calls expected")
}

func TestBroadcast_SkipsZeroChatID(t *testing.T) {
	api := newFakeAPI()
	s := newTestSender(api, 0)

	result := s.Broadcast("Привет!", []int64{0, 5}, nil)

	assert.Equal(t, 1, result.Sent)
	assert.Empty(t, api.messages[0])
	assert.Len(t, api.messages[5], 1)
}

func TestBroadcast_TotalFailure(t *testing.T) {
	api := newFakeAPI()
	api.failFor[1] = true
	api.failFor[2] = true
	s := newTestSender(api, 0)

	result := s.Broadcast("Привет!", []int64{1, 2}, nil)

	assert.False(t, result.Success)
	assert.Zero(t, result.Sent)
	assert.Contains(t, result.Message, "Сбой рассылки")
	assert.Len(t, result.Errors, 2)
}

func TestBroadcast_FilesFollowMessage(t *testing.T) {
	api := newFakeAPI()
	s := newTestSender(api, 0)

	result := s.Broadcast("Сводка во вложении", []int64{1, 2}, []string{"report.xlsx", "photo.jpg"})

	assert.True(t, result.Success)
	assert.Contains(t, result.Message, "(+файлы)")
	assert.Equal(t, 2, api.docs[1])
	assert.Equal(t, 2, api.docs[2])
}

func TestBroadcastAsync_FiresDoneOnce(t *testing.T) {
	api := newFakeAPI()
	s := newTestSender(api, 0)

	done := make(chan Result, 1)
	s.BroadcastAsync("Привет!", []int64{1}, nil, func(r Result) { done <- r })

	result := <-done
	assert.True(t, result.Success)
	assert.Equal(t, 1, result.Sent)
}
