package report

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"uley/internal/models"
)

// entryFormatter turns a decoded journal payload into one human line.
type entryFormatter func(action string, data map[string]any) string

// logKey addresses a formatter by table and action. An empty Action matches
// every action on the table; exact pairs are tried first.
type logKey struct {
	Table  string
	Action string
}

// Stock moves carry their own kind in the payload, so one formatter covers
// the whole table.
var logFormatters = map[logKey]entryFormatter{
	{"stock_moves", ""}:        formatStockMove,
	{"cash_transactions", ""}:  formatCashTransaction,
	{"bookings", ""}:           formatBooking,
	{"booking_payments", ""}:   formatBookingPayment,
	{"certificates", "create"}: formatCertificateIssue,
	{"certificates", "use"}:    formatCertificateUse,
	{"users", ""}:              formatUserRecord,
}

// ActionLog renders journal entries, newest first as supplied by the store.
func ActionLog(entries []models.ActionLogEntry) string {
	if len(entries) == 0 {
		return "📭 Журнал пуст по вашему запросу."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📋 <b>ЖУРНАЛ ДЕЙСТВИЙ (%d):</b>\n", len(entries))

	for _, e := range entries {
		fmt.Fprintf(&b, "\n%s | 👤 <b>%s</b>\n%s %s\n",
			e.Timestamp.Format("02.01 15:04"),
			e.Username,
			actionIcon(e.Action),
			FormatEntry(e.Table, e.Action, e.NewData))
	}
	return b.String()
}

// FormatEntry decodes one opaque payload into a single readable line via
// the per-table registry. Unparseable JSON degrades to a truncated raw
// dump, a missing payload to a fixed placeholder.
func FormatEntry(table, action, payload string) string {
	if payload == "" {
		return "Без деталей"
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(payload), &data); err != nil {
		if len(payload) > 50 {
			payload = payload[:50]
		}
		return payload + "..."
	}

	if f, ok := logFormatters[logKey{table, action}]; ok {
		return f(action, data)
	}
	if f, ok := logFormatters[logKey{table, ""}]; ok {
		return f(action, data)
	}
	return formatGeneric(action, data)
}

func actionIcon(action string) string {
	switch action {
	case "delete":
		return "🗑"
	case "create":
		return "➕"
	case "update":
		return "✏️"
	case "use":
		return "💳"
	default:
		return "📝"
	}
}

func formatStockMove(action string, data map[string]any) string {
	name := str(data, "product")
	if name == "" {
		name = str(data, "name")
	}
	if name == "" {
		name = "?"
	}
	qty := num(data, "qty")

	switch str(data, "type") {
	case "продажа":
		return fmt.Sprintf("Продажа: %s (%.0f шт) = %.0fр", name, qty, num(data, "total"))
	case "списание":
		reason := str(data, "writeoff_type")
		if reason == "" {
			reason = "списание"
		}
		return fmt.Sprintf("Списание (%s): %s (%.0f)", reason, name, qty)
	case "выдача_приза":
		return fmt.Sprintf("Приз: %s (%.0f шт) = %.0f тик", name, qty, num(data, "total"))
	case "приход":
		return fmt.Sprintf("Приход: %s (%.0f)", name, qty)
	default:
		return formatGeneric(action, data)
	}
}

func formatCashTransaction(_ string, data map[string]any) string {
	cat := str(data, "category")
	if cat == "" {
		cat = "?"
	}
	return fmt.Sprintf("Касса: %s %.0fр", cat, num(data, "amount"))
}

func formatBooking(_ string, data map[string]any) string {
	client := str(data, "client_name")
	if client == "" {
		client = "?"
	}
	date := str(data, "event_date")
	if date == "" {
		date = "?"
	}
	return fmt.Sprintf("Банкет: %s на %s", client, date)
}

func formatBookingPayment(_ string, data map[string]any) string {
	stage := str(data, "stage")
	if stage == "" {
		stage = "?"
	}
	return fmt.Sprintf("Оплата банкета: %.0fр (%s)", num(data, "amount"), stage)
}

func formatCertificateIssue(_ string, data map[string]any) string {
	return fmt.Sprintf("Сертификат: %s (%.0fр)", str(data, "code"), num(data, "amount"))
}

func formatCertificateUse(_ string, data map[string]any) string {
	return fmt.Sprintf("Списание серт: %s (-%.0fр)", str(data, "code"), num(data, "used"))
}

func formatUserRecord(_ string, data map[string]any) string {
	return fmt.Sprintf("Пользователь: %s", str(data, "username"))
}

// formatGeneric shows the first two key/value pairs, identifiers excluded.
// Keys are sorted so the output is stable.
func formatGeneric(_ string, data map[string]any) string {
	keys := make([]string, 0, len(data))
	for k := range data {
		if k == "id" || k == "user_id" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) > 2 {
		keys = keys[:2]
	}

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %v", k, data[k]))
	}
	return strings.Join(parts, ", ")
}

func str(data map[string]any, key string) string {
	if v, ok := data[key].(string); ok {
		return v
	}
	return ""
}

func num(data map[string]any, key string) float64 {
	if v, ok := data[key].(float64); ok {
		return v
	}
	return 0
}
