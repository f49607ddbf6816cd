package bot

// State names a position in the menu tree. Every chat starts at StateMain.
type State int

const (
	StateMain State = iota
	StateFinance
	StateAdminPanel
	StateLogMenu
	StateAwaitingLogUser
	StateAwaitingDateArchive
	StateStatsPeriod
)

// Action is a stable identifier for a menu button. Dispatch runs on
// actions, never on display labels, so renaming a button cannot silently
// break a transition.
type Action int

const (
	ActionNone Action = iota // free text / unrecognized
	ActionReset
	ActionBack
	ActionCancel
	ActionFinance
	ActionUpcoming
	ActionStatus
	ActionDownloadDB
	ActionAdmin
	ActionCashToday
	ActionCashYesterday
	ActionArchive
	ActionPeriodStats
	ActionActionLog
	ActionLogLast
	ActionLogSearch
	ActionWeek
	ActionMonth
)

// Reply-keyboard button labels. The bot matches inbound text against these
// verbatim; everything else is free text.
const (
	BtnMainMenu      = "🔙 Главное меню"
	BtnBack          = "🔙 Назад"
	BtnCancel        = "🔙 Отмена"
	BtnFinance       = "📊 Финансы"
	BtnUpcoming      = "🎂 Ближайшие ДР"
	BtnStatus        = "ℹ️ Статус"
	BtnDownloadDB    = "📂 Скачать БД"
	BtnAdmin         = "👁️ Админ"
	BtnCashToday     = "💰 Касса (Сегодня)"
	BtnCashYesterday = "📅 Касса (Вчера)"
	BtnArchive       = "📅 Архив отчетов"
	BtnPeriodStats   = "📉 Статистика (Период)"
	BtnActionLog     = "📋 Журнал действий"
	BtnLogLast       = "Последние 20"
	BtnLogSearch     = "🔍 Поиск по сотруднику"
	BtnWeek          = "За неделю (7 дней)"
	BtnMonth         = "За месяц (30 дней)"
)

var labelActions = map[string]Action{
	"/start":         ActionReset,
	BtnMainMenu:      ActionReset,
	BtnBack:          ActionBack,
	BtnCancel:        ActionCancel,
	BtnFinance:       ActionFinance,
	BtnUpcoming:      ActionUpcoming,
	BtnStatus:        ActionStatus,
	BtnDownloadDB:    ActionDownloadDB,
	BtnAdmin:         ActionAdmin,
	BtnCashToday:     ActionCashToday,
	BtnCashYesterday: ActionCashYesterday,
	BtnArchive:       ActionArchive,
	BtnPeriodStats:   ActionPeriodStats,
	BtnActionLog:     ActionActionLog,
	BtnLogLast:       ActionLogLast,
	BtnLogSearch:     ActionLogSearch,
	BtnWeek:          ActionWeek,
	BtnMonth:         ActionMonth,
}

// DecodeAction maps inbound text to its action, ActionNone for free text.
func DecodeAction(text string) Action {
	return labelActions[text]
}
