package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// StartEventConsumer connects to RabbitMQ, declares the domain event
// queues (durable), and starts consuming messages. Each message is
// appended to logs/booking.log in a single-line, human-friendly format.
// The function runs a reconnect loop and keeps running indefinitely,
// logging any processing errors while rejecting the offending message so
// the server continues operating.
func StartEventConsumer() error {
	url := brokerURL()

	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Printf("event-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeLoop(conn); err != nil {
			log.Printf("event-consumer: consume loop ended: %v; reconnecting", err)
			// Sleep briefly before reconnect
			time.Sleep(2 * time.Second)
			continue
		}
	}
}

func consumeLoop(conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("event-consumer: set QoS failed: %v", err)
	}

	for _, name := range []string{BookingCreatedQueue, NegotiationResolvedQueue} {
		if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
			return fmt.Errorf("queue declare %s: %w", name, err)
		}
	}

	bookings, err := ch.Consume(BookingCreatedQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume %s: %w", BookingCreatedQueue, err)
	}
	negotiations, err := ch.Consume(NegotiationResolvedQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume %s: %w", NegotiationResolvedQueue, err)
	}

	for {
		select {
		case d, ok := <-bookings:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			ackOrReject(d, handleBookingCreated(d.Body))
		case d, ok := <-negotiations:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			ackOrReject(d, handleNegotiationResolved(d.Body))
		}
	}
}

func ackOrReject(d amqp.Delivery, err error) {
	if err != nil {
		log.Printf("event-consumer: handle message failed: %v", err)
		_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
		return
	}
	_ = d.Ack(false)
}

func handleBookingCreated(body []byte) error {
	var ev BookingCreatedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	line := fmt.Sprintf("[%s] Station booked | booking_id=%d | user_id=%d | station_id=%d | slot=[%s, %s)\n",
		ev.CreatedAt, ev.BookingID, ev.UserID, ev.StationID, ev.StartTime, ev.EndTime)
	return appendLog(line)
}

func handleNegotiationResolved(body []byte) error {
	var ev NegotiationResolvedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	line := fmt.Sprintf("[%s] Negotiation %s | negotiation_id=%d | requester_id=%d | responder_id=%d | booking_id=%d | reward=%.2f\n",
		ev.ResolvedAt, ev.Status, ev.NegotiationID, ev.RequesterID, ev.ResponderID, ev.BookingID, ev.ProposedReward)
	return appendLog(line)
}

func appendLog(line string) error {
	// Ensure logs directory exists
	if err := os.MkdirAll("logs", 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	fpath := filepath.Join("logs", "booking.log")
	f, err := os.OpenFile(fpath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}
