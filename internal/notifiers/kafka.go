package notifiers

import (
	"context"
	"encoding/json"
	"time"

	"github.com/questly/auth-service/internal/logger"
	"github.com/segmentio/kafka-go"
)

// messageWriter is the subset of kafka.Writer the notifier needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// ResetCodeNotifier publishes password-reset codes to a topic consumed by
// the outbound email worker. Delivery beyond the broker is that worker's
// problem.
type ResetCodeNotifier struct {
	writer messageWriter
}

// NewResetCodeNotifier creates a notifier over the given Kafka writer.
func NewResetCodeNotifier(writer messageWriter) *ResetCodeNotifier {
	return &ResetCodeNotifier{writer: writer}
}

// NewKafkaWriter builds the writer NewResetCodeNotifier expects, addressed
// at the notifications topic.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
	}
}

// resetCodeMessage is the payload the email worker consumes.
type resetCodeMessage struct {
	Type     string    `json:"type"`
	Email    string    `json:"email"`
	Code     string    `json:"code"`
	IssuedAt time.Time `json:"issued_at"`
}

// SendResetCode publishes the code keyed by email, so retries for the same
// address land in one partition and arrive in order.
func (n *ResetCodeNotifier) SendResetCode(ctx context.Context, email, code string) error {
	payload, err := json.Marshal(resetCodeMessage{
		Type:     "password_reset_code",
		Email:    email,
		Code:     code,
		IssuedAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	err = n.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(email),
		Value: payload,
	})
	if err != nil {
		logger.Log.Errorw("failed to publish reset code notification", "err", err)
		return err
	}

	return nil
}
