package rabbitmq

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	amqp "github.com/streadway/amqp"
)

// Queue names. The notification queue feeds the mail worker; the alert queue
// feeds admin tooling and carries reconciliation hazards, which must never be
// lost in a log file.
const (
	NotificationQueue = "notification_queue"
	AlertQueue        = "admin_alert_queue"
	ShippingQueue     = "shipping_queue"
)

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL string
}

// NewClient creates a new RabbitMQ client. It connects to RabbitMQ, sets up
// a channel and declares the queues the engine publishes to.
func NewClient(cfg Config) (*Client, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close() // Close connection if channel creation fails
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	for _, queue := range []string{NotificationQueue, AlertQueue, ShippingQueue} {
		_, err = ch.QueueDeclare(
			queue, // name
			true,  // durable (persists messages across broker restarts)
			false, // delete when unused
			false, // exclusive (only one connection can use it)
			false, // no-wait
			nil,   // arguments
		)
		if err != nil {
			ch.Close()
			conn.Close()
			return nil, fmt.Errorf("failed to declare %s: %w", queue, err)
		}
	}

	log.Println("RabbitMQ client connected and queues declared.")

	return &Client{
		conn:    conn,
		channel: ch,
	}, nil
}

// Close closes the RabbitMQ connection and channel.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred during RabbitMQ client close: %v", errs)
	}
	return nil
}

// Publish sends a persistent JSON message to a queue via the default
// exchange.
func (c *Client) Publish(queue string, body []byte) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}

	err := c.channel.Publish(
		"",    // exchange: default exchange
		queue, // routing key: the queue name
		false, // mandatory: if true, returns message if it cannot be routed
		false, // immediate: if true, returns message if it cannot be delivered to any consumer
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent, // Make message persistent
			Timestamp:    time.Now(),
		})
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	log.Printf(" [x] Sent event to %s: %s", queue, body)
	return nil
}

// PublishOrderConfirmation enqueues the buyer's order-confirmation mail.
func (c *Client) PublishOrderConfirmation(buyerEmail, orderID string, total float64) error {
	body, err := json.Marshal(map[string]interface{}{
		"type":     "order.confirmation",
		"email":    buyerEmail,
		"order_id": orderID,
		"total":    total,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal order confirmation: %w", err)
	}
	return c.Publish(NotificationQueue, body)
}

// PublishAdminOrderAlert enqueues the new-order notice for the shop admins.
func (c *Client) PublishAdminOrderAlert(orderID string, total float64) error {
	body, err := json.Marshal(map[string]interface{}{
		"type":     "order.admin_alert",
		"order_id": orderID,
		"total":    total,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal admin order alert: %w", err)
	}
	return c.Publish(AlertQueue, body)
}

// PublishReconciliationHazard enqueues the captured-money-without-an-order
// alert. Consumers of the alert queue are expected to page a human.
func (c *Client) PublishReconciliationHazard(sessionID, reason string) error {
	body, err := json.Marshal(map[string]interface{}{
		"type":       "payment.reconciliation_hazard",
		"session_id": sessionID,
		"reason":     reason,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal reconciliation hazard: %w", err)
	}
	return c.Publish(AlertQueue, body)
}

// ConsumeNotifications starts a goroutine that feeds notification-queue
// messages to the handler. The handler returning nil acknowledges the
// message; an error nacks it back onto the queue.
func (c *Client) ConsumeNotifications(messageHandler func(msg amqp.Delivery) error) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available for consumption")
	}

	queue, err := c.channel.QueueDeclare(
		NotificationQueue, // name
		true,              // durable
		false,             // delete when unused
		false,             // exclusive
		false,             // no-wait
		nil,               // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue for consuming: %w", err)
	}

	msgs, err := c.channel.Consume(
		queue.Name, // queue
		"",         // consumer tag: unique identifier for the consumer
		false,      // auto-ack: set to false to manually acknowledge messages
		false,      // exclusive
		false,      // no-local
		false,      // no-wait
		nil,        // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	log.Printf(" [*] Waiting for notification events.")

	go func() {
		for msg := range msgs {
			if err := messageHandler(msg); err != nil {
				log.Printf("Error processing message %d: %v", msg.DeliveryTag, err)
				if requeueErr := msg.Nack(false, true); requeueErr != nil {
					log.Printf("Error nacking message %d: %v", msg.DeliveryTag, requeueErr)
				}
			} else {
				if ackErr := msg.Ack(false); ackErr != nil {
					log.Printf("Error acking message %d: %v", msg.DeliveryTag, ackErr)
				}
			}
		}
	}()

	return nil
}
