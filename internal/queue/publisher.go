package queue

import (
    "context"
    "encoding/json"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "go.uber.org/zap"
)

// Publisher emits activity events. Publishing is best-effort: callers log
// the error and carry on, a broker outage never fails a request.
type Publisher interface {
    Publish(ctx context.Context, ev ActivityEvent) error
}

// NopPublisher drops every event. It is used when EVENTS_ENABLED is false.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, ActivityEvent) error { return nil }

// AMQPPublisher publishes each event as a persistent JSON message on a
// durable queue through the default exchange. A connection is dialed per
// publish; event volume is one message per user action.
type AMQPPublisher struct {
    URL   string
    Queue string
    Log   *zap.Logger
}

func NewAMQPPublisher(url, queue string, log *zap.Logger) *AMQPPublisher {
    return &AMQPPublisher{URL: url, Queue: queue, Log: log}
}

// Publish declares the queue (idempotent) and sends ev. Any error is logged
// and returned.
func (p *AMQPPublisher) Publish(ctx context.Context, ev ActivityEvent) error {
    if ev.OccurredAt.IsZero() {
        ev.OccurredAt = time.Now().UTC()
    }
    body, err := json.Marshal(ev)
    if err != nil {
        p.Log.Warn("activity: marshal event failed", zap.String("type", ev.Type), zap.Error(err))
        return err
    }

    conn, err := amqp.Dial(p.URL)
    if err != nil {
        p.Log.Warn("activity: dial failed", zap.Error(err))
        return err
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        p.Log.Warn("activity: channel open failed", zap.Error(err))
        return err
    }
    defer func() { _ = ch.Close() }()

    if _, err := ch.QueueDeclare(
        p.Queue, // name
        true,    // durable
        false,   // autoDelete
        false,   // exclusive
        false,   // noWait
        nil,     // args
    ); err != nil {
        p.Log.Warn("activity: queue declare failed", zap.String("queue", p.Queue), zap.Error(err))
        return err
    }

    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        Timestamp:    ev.OccurredAt,
        Type:         ev.Type,
        Body:         body,
    }
    if err := ch.PublishWithContext(ctx, "", p.Queue, false, false, pub); err != nil {
        p.Log.Warn("activity: publish failed", zap.String("type", ev.Type), zap.Error(err))
        return err
    }
    return nil
}
