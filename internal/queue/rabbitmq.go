package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ChathuraAt1/kpi-platform-sub001/internal/config"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// EvaluationJob is one unit of evaluation generation: one user-month.
type EvaluationJob struct {
	UserID uuid.UUID `json:"user_id"`
	Year   int       `json:"year"`
	Month  int       `json:"month"`
}

type RabbitMQ struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   amqp.Queue
	log     *logrus.Logger
}

func NewRabbitMQ(log *logrus.Logger) (*RabbitMQ, error) {
	cfg := config.LoadQueueConfig()

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connecting to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("opening channel: %w", err)
	}
	q, err := ch.QueueDeclare(cfg.QueueName, true, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("declaring queue %s: %w", cfg.QueueName, err)
	}

	log.Infof("connected to RabbitMQ, queue %s declared", q.Name)
	return &RabbitMQ{conn: conn, channel: ch, queue: q, log: log}, nil
}

func (r *RabbitMQ) PublishEvaluationJob(job EvaluationJob) error {
	body, err := json.Marshal(job)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return r.channel.PublishWithContext(ctx, "", r.queue.Name, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
}

// ConsumeEvaluationJobs runs handler for every job on the queue in a
// background goroutine. Malformed messages are logged and dropped.
func (r *RabbitMQ) ConsumeEvaluationJobs(handler func(EvaluationJob)) error {
	msgs, err := r.channel.Consume(r.queue.Name, "", true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("registering consumer: %w", err)
	}

	go func() {
		for d := range msgs {
			var job EvaluationJob
			if err := json.Unmarshal(d.Body, &job); err != nil {
				r.log.Warnf("dropping malformed evaluation job: %v", err)
				continue
			}
			handler(job)
		}
	}()
	return nil
}

func (r *RabbitMQ) Close() {
	if r.channel != nil {
		_ = r.channel.Close()
	}
	if r.conn != nil {
		_ = r.conn.Close()
	}
}
