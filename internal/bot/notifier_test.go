package bot

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v3"

	"svitlo-ua/internal/mq"
	"svitlo-ua/internal/schedule"
)

var kyivSummer = time.FixedZone("EEST", 3*60*60)

type fakeSender struct {
	to   tele.Recipient
	what interface{}
	err  error
}

func (f *fakeSender) Send(to tele.Recipient, what interface{}, _ ...interface{}) (*tele.Message, error) {
	f.to, f.what = to, what
	if f.err != nil {
		return nil, f.err
	}
	return &tele.Message{ID: 1}, nil
}

func TestFormatAlarmMessage(t *testing.T) {
	when := time.Date(2026, 10, 18, 11, 5, 0, 0, time.UTC)

	tests := []struct {
		name string
		msg  mq.AlarmChangeMsg
		want string
	}{
		{
			name: "raised",
			msg:  mq.AlarmChangeMsg{RegionID: "14", RegionName: "Київська область", Active: true, AlertTypes: []string{"AIR"}, When: when},
			want: "🔴 Повітряна тривога: Київська область\n🕒 14:05\nТип: повітряна тривога",
		},
		{
			name: "cleared",
			msg:  mq.AlarmChangeMsg{RegionID: "14", RegionName: "Київська область", When: when},
			want: "🟢 Відбій тривоги: Київська область\n🕒 14:05",
		},
		{
			name: "unknown type and escaped name",
			msg:  mq.AlarmChangeMsg{RegionID: "9", RegionName: "A & B", Active: true, AlertTypes: []string{"AIR", "<X>"}, When: when},
			want: "🔴 Повітряна тривога: A &amp; B\n🕒 14:05\nТип: повітряна тривога, &lt;X&gt;",
		},
		{
			name: "falls back to region id",
			msg:  mq.AlarmChangeMsg{RegionID: "31", When: when},
			want: "🟢 Відбій тривоги: 31\n🕒 14:05",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatAlarmMessage(tt.msg, kyivSummer))
		})
	}
}

func TestAlarmNotifier_SendsToChannel(t *testing.T) {
	s := &fakeSender{}
	n := NewAlarmNotifier(s, -100123, kyivSummer, zerolog.Nop())

	msg := mq.AlarmChangeMsg{RegionID: "14", RegionName: "Київська область", Active: true, When: time.Now()}
	require.NoError(t, n.NotifyAlarmChange(msg))

	chat, ok := s.to.(*tele.Chat)
	require.True(t, ok)
	assert.Equal(t, int64(-100123), chat.ID)
	assert.Contains(t, s.what, "Київська область")
}

func TestAlarmNotifier_SendError(t *testing.T) {
	s := &fakeSender{err: tele.ErrChatNotFound}
	n := NewAlarmNotifier(s, 1, kyivSummer, zerolog.Nop())

	err := n.NotifyAlarmChange(mq.AlarmChangeMsg{RegionID: "14"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, tele.ErrChatNotFound))
	assert.True(t, isChannelError(err))
}

func TestFormatSchedule(t *testing.T) {
	now := time.Date(2026, 10, 18, 10, 15, 30, 0, time.UTC)
	got := FormatSchedule(schedule.BuildView(now, "g3"))

	want := "<b>Група g3</b>\n" +
		"🔴 Світла немає\n" +
		"Наступна зміна: 18.10, 11:30 (через 1:14:30)\n" +
		"\n" +
		"• Планове, Відключення: 10:00 — 11:30\n" +
		"• Екстрене, Відключення: 13:00 — 13:30\n"
	assert.Equal(t, want, got)
}

func TestFormatSchedule_DefaultGroupPowered(t *testing.T) {
	// 13:45 UTC: g1 planned is 14:00-15:30, so power is on.
	now := time.Date(2026, 10, 18, 13, 45, 0, 0, time.UTC)
	got := FormatSchedule(schedule.BuildView(now, ""))

	assert.Contains(t, got, "<b>Група g1</b>\n🟢 Світло є\n")
	assert.Contains(t, got, "(через 15:00)")
}

func TestFormatSchedule_EscapesGroup(t *testing.T) {
	now := time.Date(2026, 10, 18, 13, 45, 0, 0, time.UTC)
	got := FormatSchedule(schedule.BuildView(now, "<g1&"))

	assert.Contains(t, got, "<b>Група &lt;g1&amp;</b>\n")
	assert.NotContains(t, got, "<g1&")
}
