package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/GoArmGo/UserApp/internal/config"
	"github.com/GoArmGo/UserApp/internal/messaging/payloads"

	amqp "github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 5 * time.Second

// ErrDeliveryChannelClosed - брокер закрыл канал доставки, потребитель остановлен
var ErrDeliveryChannelClosed = errors.New("RabbitMQ delivery channel closed")

// Client представляет собой клиент RabbitMQ
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   amqp.Queue
	logger  *slog.Logger
}

// NewClient создает и инициализирует новый клиент RabbitMQ
func NewClient(cfg *config.Config, logger *slog.Logger) (*Client, error) {
	client := &Client{logger: logger}

	conn, err := amqp.Dial(cfg.RabbitMQ.RabbitMQURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	client.conn = conn
	logger.Info("connected to RabbitMQ")

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}
	client.channel = ch

	// Идемпотентно: очередь создаётся, только если её ещё нет
	q, err := ch.QueueDeclare(
		cfg.RabbitMQ.RabbitMQQueueName, // name
		true,                           // durable
		false,                          // delete when unused
		false,                          // exclusive
		false,                          // no-wait
		nil,                            // arguments
	)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to declare a queue: %w", err)
	}
	client.queue = q
	logger.Info("queue declared", "queue", q.Name, "messages", q.Messages)

	return client, nil
}

// Close закрывает соединение и канал RabbitMQ
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			c.logger.Error("error closing RabbitMQ channel", "error", err)
			errs = append(errs, err)
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			c.logger.Error("error closing RabbitMQ connection", "error", err)
			errs = append(errs, err)
		} else {
			c.logger.Info("RabbitMQ connection closed")
		}
	}
	return errors.Join(errs...)
}

// PublishUserEvent публикует событие о пользователе, реализует ports.UserEventPublisher
func (c *Client) PublishUserEvent(ctx context.Context, payload payloads.UserEventPayload) error {
	msg, err := newPublishing(payload)
	if err != nil {
		return err
	}

	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = c.channel.PublishWithContext(
		publishCtx,
		"",           // exchange
		c.queue.Name, // routing key
		false,        // mandatory
		false,        // immediate
		msg,
	)
	if err != nil {
		return fmt.Errorf("failed to publish a message: %w", err)
	}

	c.logger.Debug("user event published",
		"queue", c.queue.Name,
		"event", payload.Event,
		"user_id", payload.UserID,
	)
	return nil
}

// StartConsumingUserEvents начинает потребление событий из очереди.
// Возвращённый канал получает ошибку, если потребитель остановился сам,
// и закрывается при выходе горутины.
// Реализует интерфейс ports.UserEventConsumer.
func (c *Client) StartConsumingUserEvents(ctx context.Context, handler func(context.Context, payloads.UserEventPayload) error) (<-chan error, error) {
	msgs, err := c.channel.Consume(
		c.queue.Name, // queue
		"",           // consumer
		false,        // auto-ack, подтверждаем вручную
		false,        // exclusive
		false,        // no-local
		false,        // no-wait
		nil,          // args
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register a consumer: %w", err)
	}

	c.logger.Info("consumer registered, waiting for messages", "queue", c.queue.Name)

	done := make(chan error, 1)
	go consume(ctx, msgs, handler, c.logger, done)

	return done, nil
}

func consume(
	ctx context.Context,
	msgs <-chan amqp.Delivery,
	handler func(context.Context, payloads.UserEventPayload) error,
	logger *slog.Logger,
	done chan<- error,
) {
	defer close(done)
	for {
		select {
		case msg, ok := <-msgs:
			if !ok {
				logger.Warn("RabbitMQ channel closed, stopping consumer")
				done <- ErrDeliveryChannelClosed
				return
			}
			handleDelivery(ctx, msg, handler, logger)
		case <-ctx.Done():
			logger.Info("context cancelled, stopping RabbitMQ consumer")
			return
		}
	}
}

func newPublishing(payload payloads.UserEventPayload) (amqp.Publishing, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("failed to marshal payload to JSON: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Type:         string(payload.Event),
		Timestamp:    payload.OccurredAt,
		Body:         body,
	}, nil
}

// handleDelivery разбирает и обрабатывает одно сообщение.
// Битое сообщение отбрасывается, ошибка обработчика возвращает его в очередь.
func handleDelivery(
	ctx context.Context,
	msg amqp.Delivery,
	handler func(context.Context, payloads.UserEventPayload) error,
	logger *slog.Logger,
) {
	var payload payloads.UserEventPayload
	if err := json.Unmarshal(msg.Body, &payload); err != nil {
		logger.Error("error unmarshalling message", "error", err, "body", string(msg.Body))
		if err := msg.Nack(false, false); err != nil {
			logger.Error("error NACKing message after unmarshal failure", "error", err)
		}
		return
	}

	if err := handler(ctx, payload); err != nil {
		logger.Error("error processing message", "error", err, "event", payload.Event, "user_id", payload.UserID)
		if err := msg.Nack(false, true); err != nil {
			logger.Error("error NACKing message after processing failure", "error", err)
		}
		return
	}

	if err := msg.Ack(false); err != nil {
		logger.Error("error ACKing message", "error", err)
	}
}
