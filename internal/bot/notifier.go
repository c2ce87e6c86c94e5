package bot

import (
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/rs/zerolog"
	tele "gopkg.in/telebot.v3"

	"svitlo-ua/internal/mq"
)

// Sender is the part of *tele.Bot the notifier needs.
type Sender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// AlarmNotifier posts alarm changes to a Telegram channel.
type AlarmNotifier struct {
	sender    Sender
	channelID int64
	loc       *time.Location
	log       zerolog.Logger
}

func NewAlarmNotifier(s Sender, channelID int64, loc *time.Location, log zerolog.Logger) *AlarmNotifier {
	return &AlarmNotifier{sender: s, channelID: channelID, loc: loc, log: log}
}

// NotifyAlarmChange sends the formatted change to the channel.
func (n *AlarmNotifier) NotifyAlarmChange(msg mq.AlarmChangeMsg) error {
	text := FormatAlarmMessage(msg, n.loc)
	chat := &tele.Chat{ID: n.channelID}
	if _, err := n.sender.Send(chat, text, htmlOpts); err != nil {
		if isChannelError(err) {
			n.log.Error().Err(err).Int64("channel", n.channelID).Msg("lost access to alarm channel")
		}
		return fmt.Errorf("send alarm change for region %s: %w", msg.RegionID, err)
	}
	return nil
}

// FormatAlarmMessage renders a change as HTML with the time in loc.
func FormatAlarmMessage(msg mq.AlarmChangeMsg, loc *time.Location) string {
	region := html.EscapeString(msg.RegionName)
	if region == "" {
		region = html.EscapeString(msg.RegionID)
	}

	var b strings.Builder
	if msg.Active {
		fmt.Fprintf(&b, msgAlarmRaised, region)
	} else {
		fmt.Fprintf(&b, msgAlarmCleared, region)
	}
	fmt.Fprintf(&b, msgAlarmTime, msg.When.In(loc).Format("15:04"))

	if msg.Active && len(msg.AlertTypes) > 0 {
		names := make([]string, 0, len(msg.AlertTypes))
		for _, t := range msg.AlertTypes {
			if name, ok := alertTypeNames[t]; ok {
				names = append(names, name)
			} else {
				names = append(names, html.EscapeString(t))
			}
		}
		fmt.Fprintf(&b, msgAlarmTypes, strings.Join(names, ", "))
	}
	return b.String()
}

// isChannelError reports whether a Telegram API error means the bot lost access to a channel.
func isChannelError(err error) bool {
	return errors.Is(err, tele.ErrChatNotFound) ||
		errors.Is(err, tele.ErrKickedFromGroup) ||
		errors.Is(err, tele.ErrKickedFromSuperGroup) ||
		errors.Is(err, tele.ErrKickedFromChannel) ||
		errors.Is(err, tele.ErrNotChannelMember) ||
		errors.Is(err, tele.ErrNoRightsToSend)
}
