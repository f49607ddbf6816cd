package report

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"uley/internal/models"
)

func TestFormatEntry_Registry(t *testing.T) {
	tests := []struct {
		name    string
		table   string
		action  string
		payload string
		want    string
	}{
		{
			name:    "sale",
			table:   "stock_moves",
			action:  "create",
			payload: `{"type":"продажа","product":"Сок","qty":2,"total":170}`,
			want:    "Продажа: Сок (2 шт) = 170р",
		},
		{
			name:    "writeoff",
			table:   "stock_moves",
			action:  "create",
			payload: `{"type":"списание","product":"Чипсы","qty":1,"writeoff_type":"в счёт ЗП"}`,
			want:    "Списание (в счёт ЗП): Чипсы (1)",
		},
		{
			name:    "prize",
			table:   "stock_moves",
			action:  "create",
			payload: `{"type":"выдача_приза","product":"Мишка","qty":1,"total":60}`,
			want:    "Приз: Мишка (1 шт) = 60 тик",
		},
		{
			name:    "restock",
			table:   "stock_moves",
			action:  "create",
			payload: `{"type":"приход","product":"Сок","qty":24}`,
			want:    "Приход: Сок (24)",
		},
		{
			name:    "cash",
			table:   "cash_transactions",
			action:  "create",
			payload: `{"category":"Лабиринт","amount":800}`,
			want:    "Касса: Лабиринт 800р",
		},
		{
			name:    "booking",
			table:   "bookings",
			action:  "update",
			payload: `{"client_name":"Мария","event_date":"2026-09-05"}`,
			want:    "Банкет: Мария на 2026-09-05",
		},
		{
			name:    "booking payment",
			table:   "booking_payments",
			action:  "create",
			payload: `{"amount":5000,"stage":"предоплата"}`,
			want:    "Оплата банкета: 5000р (предоплата)",
		},
		{
			name:    "certificate issue",
			table:   "certificates",
			action:  "create",
			payload: `{"code":"C-100","amount":2000}`,
			want:    "Сертификат: C-100 (2000р)",
		},
		{
			name:    "certificate use",
			table:   "certificates",
			action:  "use",
			payload: `{"code":"C-100","used":500}`,
			want:    "Списание серт: C-100 (-500р)",
		},
		{
			name:    "user record",
			table:   "users",
			action:  "create",
			payload: `{"username":"anna"}`,
			want:    "Пользователь: anna",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatEntry(tt.table, tt.action, tt.payload))
		})
	}
}

func TestFormatEntry_Fallbacks(t *testing.T) {
	// Unknown table falls through to the generic key/value dump with
	// identifiers stripped and keys sorted.
	got := FormatEntry("rooms", "update", `{"id":7,"name":"Зал 2","capacity":20,"user_id":1}`)
	assert.Equal(t, "capacity: 20, name: Зал 2", got)

	// Unknown payload kind on a registered table degrades the same way.
	got = FormatEntry("stock_moves", "create", `{"type":"инвентаризация","delta":-3}`)
	assert.Equal(t, "delta: -3, type: инвентаризация", got)

	assert.Equal(t, "Без деталей", FormatEntry("bookings", "delete", ""))

	raw := strings.Repeat("x", 80)
	got = FormatEntry("bookings", "create", raw)
	assert.Equal(t, raw[:50]+"...", got)
}

func TestActionLog_Digest(t *testing.T) {
	ts := time.Date(2026, 8, 28, 15, 4, 0, 0, time.UTC)
	entries := []models.ActionLogEntry{
		{Timestamp: ts, Username: "anna", Table: "cash_transactions", Action: "create",
			NewData: `{"category":"Бар","amount":150}`},
		{Timestamp: ts.Add(-time.Hour), Username: "oleg", Table: "bookings", Action: "delete"},
	}

	text := ActionLog(entries)

	assert.Contains(t, text, "ЖУРНАЛ ДЕЙСТВИЙ (2)")
	assert.Contains(t, text, "28.08 15:04 | 👤 <b>anna</b>")
	assert.Contains(t, text, "➕ Касса: Бар 150р")
	assert.Contains(t, text, "🗑 Без деталей")
}

func TestActionLog_Empty(t *testing.T) {
	assert.Equal(t, "📭 Журнал пуст по вашему запросу.", ActionLog(nil))
}
