package bot

// All user-facing bot messages in one place.

// ── /start & /help ──────────────────────────────────────────────────

const msgStart = `<b>Вітаю у Світло UA!</b>

Я показую графік відключень світла для вашої групи та надсилаю в канал сповіщення про повітряні тривоги.

/schedule - Графік для групи (наприклад, /schedule g2)
/help - Детальніше`

const msgHelp = `<b>Як це працює:</b>

1. Надішліть /schedule з номером групи: g1, g2 або g3
2. Я покажу, чи є зараз світло, коли наступна зміна та всі інтервали на найближчі години
3. Без номера показую групу g1

Сповіщення про тривоги приходять у канал автоматично.`

// ── /schedule ───────────────────────────────────────────────────────

const (
	msgScheduleHeader    = "<b>Група %s</b>\n"
	msgScheduleStatus    = "%s %s\n"
	msgScheduleNext      = "Наступна зміна: %s (через %s)\n"
	msgScheduleNoNext    = "Наступна зміна: %s\n"
	msgScheduleEntryLine = "• %s, %s: %s\n"
)

// ── Alarm notifications ─────────────────────────────────────────────

const (
	msgAlarmRaised  = "🔴 Повітряна тривога: %s"
	msgAlarmCleared = "🟢 Відбій тривоги: %s"
	msgAlarmTime    = "\n🕒 %s"
	msgAlarmTypes   = "\nТип: %s"
)

// alertTypeNames translates upstream alert types.
var alertTypeNames = map[string]string{
	"AIR":          "повітряна тривога",
	"ARTILLERY":    "загроза артобстрілу",
	"URBAN_FIGHTS": "загроза вуличних боїв",
	"CHEMICAL":     "хімічна загроза",
	"NUCLEAR":      "радіаційна загроза",
	"INFO":         "інформація",
}
