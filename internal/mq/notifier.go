package mq

import "context"

// AlarmPublisher implements alerts.Notifier by publishing to RabbitMQ.
type AlarmPublisher struct {
	pub *Publisher
}

// NewAlarmPublisher creates a notifier that publishes alarm changes to RabbitMQ.
func NewAlarmPublisher(pub *Publisher) *AlarmPublisher {
	return &AlarmPublisher{pub: pub}
}

// NotifyAlarmChange publishes an alarm change message to the queue.
func (n *AlarmPublisher) NotifyAlarmChange(ctx context.Context, msg AlarmChangeMsg) error {
	return n.pub.Publish(ctx, RoutingAlarmChange, msg.EventID, msg)
}
