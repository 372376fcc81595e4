package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "go.uber.org/zap"
)

// Consumer reads activity events from the broker and appends one line per
// event to LogPath.
type Consumer struct {
    URL     string
    Queue   string
    LogPath string
    Log     *zap.Logger
}

// Run connects to RabbitMQ, declares the durable queue and consumes until
// ctx is cancelled. Broken connections are retried with exponential backoff
// capped at 30s. Run returns ctx.Err() on cancellation.
func (c *Consumer) Run(ctx context.Context) error {
    backoff := time.Second
    for {
        conn, err := amqp.Dial(c.URL)
        if err != nil {
            c.Log.Warn("activity-consumer: dial failed", zap.Error(err), zap.Duration("retry_in", backoff))
            select {
            case <-ctx.Done():
                return ctx.Err()
            case <-time.After(backoff):
            }
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second

        err = c.consume(ctx, conn)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        c.Log.Warn("activity-consumer: consume loop ended, reconnecting", zap.Error(err))
        select {
        case <-ctx.Done():
            return ctx.Err()
        case <-time.After(2 * time.Second):
        }
    }
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        c.Log.Warn("activity-consumer: set QoS failed", zap.Error(err))
    }
    if _, err := ch.QueueDeclare(c.Queue, true, false, false, false, nil); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }
    msgs, err := ch.Consume(c.Queue, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume: %w", err)
    }

    for {
        select {
        case <-ctx.Done():
            return ctx.Err()
        case d, ok := <-msgs:
            if !ok {
                return errors.New("deliveries channel closed")
            }
            if err := c.HandleMessage(d.Body); err != nil {
                c.Log.Error("activity-consumer: handle message failed", zap.Error(err))
                _ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
                continue
            }
            _ = d.Ack(false)
        }
    }
}

// HandleMessage decodes one event and appends its log line.
func (c *Consumer) HandleMessage(body []byte) error {
    var ev ActivityEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    if ev.Type == "" {
        return errors.New("event without type")
    }
    if err := os.MkdirAll(filepath.Dir(c.LogPath), 0o755); err != nil {
        return fmt.Errorf("mkdir log dir: %w", err)
    }
    f, err := os.OpenFile(c.LogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()

    if _, err := f.WriteString(FormatLine(ev)); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}

// FormatLine renders ev as a single human-friendly log line.
func FormatLine(ev ActivityEvent) string {
    line := fmt.Sprintf("[%s] %s | user_id=%s", ev.OccurredAt.UTC().Format(time.RFC3339), ev.Type, ev.UserID)
    if ev.Username != "" {
        line += fmt.Sprintf(" | username=%q", ev.Username)
    }
    if ev.Filename != "" {
        line += fmt.Sprintf(" | file=%q", ev.Filename)
    }
    if ev.Detail != "" {
        line += fmt.Sprintf(" | detail=%q", ev.Detail)
    }
    return line + "\n"
}
