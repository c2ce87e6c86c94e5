package main

import (
	"context"
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"svitlo-ua/internal/logging"
	"svitlo-ua/internal/mq"
)

type alarmNotifier interface {
	NotifyAlarmChange(msg mq.AlarmChangeMsg) error
}

// listener consumes alarm changes from RabbitMQ and forwards them to Telegram.
type listener struct {
	consumer *mq.Consumer
	notifier alarmNotifier
	log      zerolog.Logger
}

func newListener(n alarmNotifier, consumer *mq.Consumer) *listener {
	return &listener{
		consumer: consumer,
		notifier: n,
		log:      logging.Component("listener"),
	}
}

func (l *listener) start(ctx context.Context) {
	alarmCh, err := l.consumer.Consume(mq.QueueAlarmChange)
	if err != nil {
		l.log.Fatal().Err(err).Str("queue", mq.QueueAlarmChange).Msg("failed to consume")
	}
	l.log.Info().Str("queue", mq.QueueAlarmChange).Msg("consuming")

	for {
		select {
		case <-ctx.Done():
			l.log.Info().Msg("stopped")
			return
		case d, ok := <-alarmCh:
			if !ok {
				return
			}
			l.handle(d)
		}
	}
}

func (l *listener) handle(d amqp.Delivery) {
	if err := l.handleAlarmChange(d.Body); err != nil {
		l.log.Error().Err(err).Msg("alarm_change not delivered")
	}
	_ = d.Ack(false)
}

func (l *listener) handleAlarmChange(payload []byte) error {
	var msg mq.AlarmChangeMsg
	if err := json.Unmarshal(payload, &msg); err != nil {
		l.log.Warn().Err(err).Msg("bad alarm_change message")
		return nil
	}
	return l.notifier.NotifyAlarmChange(msg)
}
