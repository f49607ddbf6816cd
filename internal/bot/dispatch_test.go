package bot

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"uley/internal/models"
	"uley/internal/storage"
	"uley/internal/storage/stubs"
)

// fakeAPI records outbound traffic and replays canned update batches.
type fakeAPI struct {
	mu      sync.Mutex
	sent    []tgbotapi.Chattable
	batches [][]tgbotapi.Update
	offsets []int
	pollErr error
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) GetUpdates(cfg tgbotapi.UpdateConfig) ([]tgbotapi.Update, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.offsets = append(f.offsets, cfg.Offset)
	if f.pollErr != nil {
		return nil, f.pollErr
	}
	if len(f.batches) == 0 {
		return nil, nil
	}
	batch := f.batches[0]
	f.batches = f.batches[1:]
	return batch, nil
}

// texts flattens every sent message into its text for assertions.
func (f *fakeAPI) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.sent {
		if msg, ok := c.(tgbotapi.MessageConfig); ok {
			out = append(out, msg.Text)
		}
	}
	return out
}

func (f *fakeAPI) lastText(t *testing.T) string {
	t.Helper()
	texts := f.texts()
	require.NotEmpty(t, texts)
	return texts[len(texts)-1]
}

const (
	superChat    int64 = 100
	employeeChat int64 = 200
	strangerChat int64 = 300
)

func newTestBot(db storage.Storage) (*Bot, *fakeAPI, *MemorySessions) {
	api := &fakeAPI{}
	sessions := NewMemorySessions()
	return &Bot{
		api:          api,
		db:           db,
		sessions:     sessions,
		superAdminID: superChat,
		logger:       zap.NewNop(),
		pollTimeout:  1,
		idleSleep:    time.Millisecond,
		errorBackoff: time.Millisecond,
	}, api, sessions
}

func allowedMock() *stubs.MockDB {
	db := stubs.NewMockDB()
	db.AddRecipient(employeeChat)
	return db
}

func TestHandleMessage_UnknownChatDenied(t *testing.T) {
	b, api, sessions := newTestBot(allowedMock())

	b.HandleMessage(context.Background(), strangerChat, BtnFinance, "Гость")

	texts := api.texts()
	require.Len(t, texts, 1)
	assert.Contains(t, texts[0], "Доступ запрещен")
	assert.Contains(t, texts[0], "<code>300</code>")
	assert.Zero(t, sessions.Len(), "denied chat must not get session state")
}

func TestHandleMessage_DenyOnRecipientsFailure(t *testing.T) {
	db := &failingStore{MockDB: allowedMock()}
	db.recipientsErr = errors.New("db gone")
	b, api, _ := newTestBot(db)

	b.HandleMessage(context.Background(), employeeChat, BtnFinance, "Анна")

	assert.Contains(t, api.lastText(t), "Доступ запрещен")
}

func TestHandleMessage_IDCommandBypassesAuth(t *testing.T) {
	b, api, _ := newTestBot(allowedMock())

	b.HandleMessage(context.Background(), strangerChat, "/id", "Гость")

	assert.Contains(t, api.lastText(t), "<code>300</code>")
}

func TestHandleMessage_StartResetsFromAnyState(t *testing.T) {
	b, api, sessions := newTestBot(allowedMock())
	sessions.Set(employeeChat, StateAwaitingDateArchive)

	b.HandleMessage(context.Background(), employeeChat, "/start", "Анна")

	assert.Equal(t, StateMain, sessions.Get(employeeChat))
	assert.Contains(t, api.lastText(t), "Привет, Анна")
}

func TestHandleMessage_FinanceFlow(t *testing.T) {
	b, api, sessions := newTestBot(allowedMock())

	b.HandleMessage(context.Background(), employeeChat, BtnFinance, "Анна")
	assert.Equal(t, StateFinance, sessions.Get(employeeChat))
	assert.Contains(t, api.lastText(t), "ФИНАНСЫ")

	// Empty store: the daily report degrades to the no-data line.
	b.HandleMessage(context.Background(), employeeChat, BtnCashToday, "Анна")
	assert.Contains(t, api.lastText(t), "данных нет")
	assert.Equal(t, StateFinance, sessions.Get(employeeChat))

	b.HandleMessage(context.Background(), employeeChat, BtnBack, "Анна")
	assert.Equal(t, StateMain, sessions.Get(employeeChat))
}

func TestHandleMessage_FreeTextInMainFallsBack(t *testing.T) {
	b, api, sessions := newTestBot(allowedMock())

	b.HandleMessage(context.Background(), employeeChat, "как дела?", "Анна")

	assert.Equal(t, StateMain, sessions.Get(employeeChat))
	assert.Contains(t, api.lastText(t), "кнопки меню")
}

func TestHandleMessage_AdminRequiresSuper(t *testing.T) {
	b, api, sessions := newTestBot(allowedMock())

	b.HandleMessage(context.Background(), employeeChat, BtnAdmin, "Анна")
	assert.Equal(t, StateMain, sessions.Get(employeeChat))
	assert.Contains(t, api.lastText(t), "кнопки меню")

	b.HandleMessage(context.Background(), employeeChat, BtnDownloadDB, "Анна")
	assert.Contains(t, api.lastText(t), "нет прав на скачивание")
}

func TestHandleMessage_SuperOpensAdminPanel(t *testing.T) {
	b, api, sessions := newTestBot(stubs.NewMockDB())

	b.HandleMessage(context.Background(), superChat, BtnAdmin, "Шеф")

	assert.Equal(t, StateAdminPanel, sessions.Get(superChat))
	assert.Contains(t, api.lastText(t), "Админ-панель")
}

func TestHandleMessage_ActionLogRequiresSuper(t *testing.T) {
	b, api, sessions := newTestBot(allowedMock())
	sessions.Set(employeeChat, StateAdminPanel)

	b.HandleMessage(context.Background(), employeeChat, BtnActionLog, "Анна")

	assert.Equal(t, StateAdminPanel, sessions.Get(employeeChat))
	assert.Contains(t, api.lastText(t), "только у Супер-Админа")
}

func TestHandleMessage_EmployeeLookup(t *testing.T) {
	db := stubs.NewMockDB()
	db.AddUser(models.User{ID: 1, FullName: "Анна Иванова", Username: "anna"})
	db.AddUser(models.User{ID: 2, FullName: "Иван Петров", Username: "ivan"})
	db.AddLogEntry(1, models.ActionLogEntry{
		Timestamp: time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC),
		Username:  "anna", Table: "cash_transactions", Action: "create",
		NewData: `{"category":"Бар","amount":150}`,
	})
	db.AddLogEntry(2, models.ActionLogEntry{
		Timestamp: time.Date(2026, 8, 28, 11, 0, 0, 0, time.UTC),
		Username:  "ivan", Table: "bookings", Action: "delete",
	})

	b, api, sessions := newTestBot(db)
	sessions.Set(superChat, StateAwaitingLogUser)

	// No match: stay in the state and ask again.
	b.HandleMessage(context.Background(), superChat, "zzz", "Шеф")
	assert.Contains(t, api.lastText(t), "Сотрудник не найден")
	assert.Equal(t, StateAwaitingLogUser, sessions.Get(superChat))

	// Ambiguous: list candidates, stay in the state.
	b.HandleMessage(context.Background(), superChat, "ан", "Шеф")
	last := api.lastText(t)
	assert.Contains(t, last, "Найдено несколько")
	assert.Contains(t, last, "Анна Иванова")
	assert.Contains(t, last, "Иван Петров")
	assert.Equal(t, StateAwaitingLogUser, sessions.Get(superChat))

	// Unique: filtered digest, then back to the journal menu.
	b.HandleMessage(context.Background(), superChat, "anna", "Шеф")
	texts := api.texts()
	require.GreaterOrEqual(t, len(texts), 2)
	digest := texts[len(texts)-2]
	assert.Contains(t, digest, "ЖУРНАЛ ДЕЙСТВИЙ (1)")
	assert.Contains(t, digest, "anna")
	assert.NotContains(t, digest, "ivan")
	assert.Equal(t, StateLogMenu, sessions.Get(superChat))
}

func TestHandleMessage_LookupCancel(t *testing.T) {
	b, api, sessions := newTestBot(stubs.NewMockDB())
	sessions.Set(superChat, StateAwaitingLogUser)

	b.HandleMessage(context.Background(), superChat, BtnCancel, "Шеф")

	assert.Equal(t, StateLogMenu, sessions.Get(superChat))
	assert.Contains(t, api.lastText(t), "Журнал действий")
}

func TestHandleMessage_ArchiveDate(t *testing.T) {
	b, api, sessions := newTestBot(stubs.NewMockDB())
	sessions.Set(superChat, StateAwaitingDateArchive)

	// Bad input keeps the prompt alive.
	b.HandleMessage(context.Background(), superChat, "вчера", "Шеф")
	assert.Contains(t, api.lastText(t), "Неверный формат")
	assert.Equal(t, StateAwaitingDateArchive, sessions.Get(superChat))

	// A valid date produces the report and returns to the admin panel.
	b.HandleMessage(context.Background(), superChat, "01.01", "Шеф")
	texts := api.texts()
	require.GreaterOrEqual(t, len(texts), 2)
	assert.Contains(t, texts[len(texts)-2], "данных нет")
	assert.Equal(t, StateAdminPanel, sessions.Get(superChat))
}

func TestHandleMessage_ArchiveCancel(t *testing.T) {
	b, _, sessions := newTestBot(stubs.NewMockDB())
	sessions.Set(superChat, StateAwaitingDateArchive)

	b.HandleMessage(context.Background(), superChat, BtnCancel, "Шеф")

	assert.Equal(t, StateAdminPanel, sessions.Get(superChat))
}

func TestHandleMessage_StatsPeriod(t *testing.T) {
	b, api, sessions := newTestBot(allowedMock())
	sessions.Set(employeeChat, StateStatsPeriod)

	b.HandleMessage(context.Background(), employeeChat, BtnWeek, "Анна")
	assert.Contains(t, api.lastText(t), "СТАТИСТИКА ЗА 7 ДНЕЙ")

	b.HandleMessage(context.Background(), employeeChat, BtnMonth, "Анна")
	assert.Contains(t, api.lastText(t), "СТАТИСТИКА ЗА 30 ДНЕЙ")
	assert.Equal(t, StateStatsPeriod, sessions.Get(employeeChat))
}

func TestHandleMessage_ReportErrorBoundary(t *testing.T) {
	db := &failingStore{MockDB: allowedMock()}
	db.ledgerErr = errors.New("disk io")
	b, api, sessions := newTestBot(db)
	sessions.Set(employeeChat, StateFinance)

	b.HandleMessage(context.Background(), employeeChat, BtnCashToday, "Анна")

	assert.Contains(t, api.lastText(t), "Не удалось сформировать отчет")
	assert.Equal(t, StateFinance, sessions.Get(employeeChat))
}

func TestHandleMessage_DownloadDBWithoutFile(t *testing.T) {
	b, api, _ := newTestBot(stubs.NewMockDB())

	b.HandleMessage(context.Background(), superChat, BtnDownloadDB, "Шеф")

	assert.Contains(t, api.lastText(t), "не является файлом")
}

func TestDecodeAction_CoversEveryMenuLabel(t *testing.T) {
	labels := []string{
		"/start", BtnMainMenu, BtnBack, BtnCancel,
		BtnFinance, BtnUpcoming, BtnStatus, BtnDownloadDB, BtnAdmin,
		BtnCashToday, BtnCashYesterday,
		BtnArchive, BtnPeriodStats, BtnActionLog,
		BtnLogLast, BtnLogSearch, BtnWeek, BtnMonth,
	}
	for _, l := range labels {
		assert.NotEqual(t, ActionNone, DecodeAction(l), "label %q has no action", l)
	}
	assert.Equal(t, ActionNone, DecodeAction("просто текст"))
}

// failingStore injects errors into selected queries.
type failingStore struct {
	*stubs.MockDB
	recipientsErr error
	ledgerErr     error
}

func (f *failingStore) Recipients(ctx context.Context) ([]int64, error) {
	if f.recipientsErr != nil {
		return nil, f.recipientsErr
	}
	return f.MockDB.Recipients(ctx)
}

func (f *failingStore) TransactionsByRange(ctx context.Context, from, to time.Time) ([]models.CashTransaction, error) {
	if f.ledgerErr != nil {
		return nil, f.ledgerErr
	}
	return f.MockDB.TransactionsByRange(ctx, from, to)
}
