package bot

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/rs/zerolog"
	tele "gopkg.in/telebot.v3"

	"svitlo-ua/internal/schedule"
)

// Bot wraps the Telegram bot and its chat commands.
type Bot struct {
	bot *tele.Bot
	loc *time.Location
	now func() time.Time
	log zerolog.Logger
}

var htmlOpts = &tele.SendOptions{ParseMode: tele.ModeHTML}

// New creates and configures the Telegram bot.
func New(token string, loc *time.Location, log zerolog.Logger) (*Bot, error) {
	pref := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}

	bot := &Bot{bot: b, loc: loc, now: time.Now, log: log}
	bot.registerHandlers()

	if err := b.SetCommands([]tele.Command{
		{Text: "schedule", Description: "Графік відключень для групи"},
		{Text: "help", Description: "Довідка про команди"},
	}); err != nil {
		log.Warn().Err(err).Msg("failed to set commands")
	}

	return bot, nil
}

// Start begins polling for Telegram updates. Call as a goroutine.
func (b *Bot) Start() {
	b.log.Info().Msg("starting Telegram bot polling")
	b.bot.Start()
}

// Stop gracefully stops the bot.
func (b *Bot) Stop() {
	b.bot.Stop()
}

// TeleBot returns the underlying telebot instance (used by the notifier).
func (b *Bot) TeleBot() *tele.Bot {
	return b.bot
}

func (b *Bot) registerHandlers() {
	b.bot.Handle("/start", b.handleStart)
	b.bot.Handle("/help", b.handleHelp)
	b.bot.Handle("/schedule", b.handleSchedule)
}

func (b *Bot) handleStart(c tele.Context) error {
	return c.Send(msgStart, tele.ModeHTML)
}

func (b *Bot) handleHelp(c tele.Context) error {
	return c.Send(msgHelp, tele.ModeHTML)
}

func (b *Bot) handleSchedule(c tele.Context) error {
	group := strings.ToLower(strings.TrimSpace(c.Message().Payload))
	view := schedule.BuildView(b.now().In(b.loc), group)
	return c.Send(FormatSchedule(view), tele.ModeHTML)
}

// FormatSchedule renders a schedule view as an HTML chat message.
func FormatSchedule(v schedule.View) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, msgScheduleHeader, html.EscapeString(v.Group))

	icon := "🔴"
	if v.IsOn {
		icon = "🟢"
	}
	fmt.Fprintf(&sb, msgScheduleStatus, icon, v.StatusLabel)

	if v.NextChange != nil {
		fmt.Fprintf(&sb, msgScheduleNext, v.NextChangeLabel, v.Countdown)
	} else {
		fmt.Fprintf(&sb, msgScheduleNoNext, v.NextChangeLabel)
	}

	if len(v.Entries) > 0 {
		sb.WriteString("\n")
	}
	for _, e := range v.Entries {
		fmt.Fprintf(&sb, msgScheduleEntryLine, e.KindLabel, e.StateLabel, e.TimeRange)
	}
	return sb.String()
}
