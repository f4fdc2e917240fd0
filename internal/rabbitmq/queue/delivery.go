package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/medreminder/internal/model"
	"github.com/aliskhannn/medreminder/internal/queue"
)

const (
	ExchangeName   = "reminder.intents"
	MainQueueName  = "reminder.delivery"
	RetryQueueName = "reminder.delivery.retry"
	DLQName        = "reminder.delivery.dlq"

	AttemptHeader       = "x-attempt"
	ReasonHeader        = "x-dlq-reason"
	DeadLetteredHeader  = "x-dead-lettered-at"
	deliveryCountHeader = "x-delivery-count"
	deathHeader         = "x-death"

	parkTimeout = 5 * time.Second
)

type inflight struct {
	msg        amqp.Delivery
	receivedAt time.Time
}

type expiry int

const (
	expiryHold expiry = iota
	expiryRequeue
	expiryPark
)

// expire decides what happens to a delivery still held at now. A delivery
// past its visibility timeout that used up its receives goes to the DLQ.
func expire(e inflight, now time.Time, cfg queue.Config) expiry {
	if now.Sub(e.receivedAt) < cfg.VisibilityTimeout {
		return expiryHold
	}
	if receiveCount(e.msg.Headers) >= cfg.MaxReceiveCount {
		return expiryPark
	}

	return expiryRequeue
}

// DeliveryQueue is the delivery queue on top of RabbitMQ. Intents are
// published to a fanout exchange so further subscribers can bind their own
// queues. Released messages wait in a TTL queue that dead-letters back into
// the main queue.
type DeliveryQueue struct {
	conn *amqp.Connection
	pub  *amqp.Channel
	cons *amqp.Channel
	cfg  queue.Config

	deliveries <-chan amqp.Delivery
	pubMu      sync.Mutex

	mu       sync.Mutex
	inflight map[string]inflight

	stop chan struct{}
	once sync.Once
}

var _ queue.Queue = (*DeliveryQueue)(nil)

// NewDeliveryQueue declares the topology and starts consuming the main
// queue with the given prefetch.
func NewDeliveryQueue(conn *amqp.Connection, cfg queue.Config, prefetch int) (*DeliveryQueue, error) {
	pub, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open publish channel: %w", err)
	}

	if err := pub.Confirm(false); err != nil {
		return nil, fmt.Errorf("failed to enable publisher confirms: %w", err)
	}

	if err := declare(pub, cfg); err != nil {
		return nil, err
	}

	cons, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open consume channel: %w", err)
	}

	if err := cons.Qos(prefetch, 0, false); err != nil {
		return nil, fmt.Errorf("failed to set qos: %w", err)
	}

	deliveries, err := cons.Consume(MainQueueName, "", false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to consume main queue: %w", err)
	}

	q := &DeliveryQueue{
		conn:       conn,
		pub:        pub,
		cons:       cons,
		cfg:        cfg,
		deliveries: deliveries,
		inflight:   make(map[string]inflight),
		stop:       make(chan struct{}),
	}

	go q.reap()

	return q, nil
}

func declare(ch *amqp.Channel, cfg queue.Config) error {
	if err := ch.ExchangeDeclare(ExchangeName, amqp.ExchangeFanout, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	_, err := ch.QueueDeclare(DLQName, true, false, false, false, amqp.Table{
		"x-message-ttl": cfg.DLQRetention.Milliseconds(),
	})
	if err != nil {
		return fmt.Errorf("failed to declare DLQ queue: %w", err)
	}

	retryArgs := amqp.Table{
		"x-dead-letter-exchange":    "",
		"x-dead-letter-routing-key": MainQueueName,
		"x-message-ttl":             cfg.RetryDelay.Milliseconds(),
	}

	if _, err := ch.QueueDeclare(RetryQueueName, true, false, false, false, retryArgs); err != nil {
		return fmt.Errorf("failed to declare retry queue: %w", err)
	}

	// x-delivery-limit dead-letters messages requeued by crashed consumers.
	mainArgs := amqp.Table{
		"x-queue-type":              "quorum",
		"x-dead-letter-exchange":    "",
		"x-dead-letter-routing-key": DLQName,
		"x-delivery-limit":          int32(cfg.MaxReceiveCount),
	}

	mainQ, err := ch.QueueDeclare(MainQueueName, true, false, false, false, mainArgs)
	if err != nil {
		return fmt.Errorf("failed to declare main queue: %w", err)
	}

	if err := ch.QueueBind(mainQ.Name, "", ExchangeName, false, nil); err != nil {
		return fmt.Errorf("failed to bind the exchange to the main queue: %w", err)
	}

	return nil
}

// Publish sends an intent to the exchange and waits for the broker confirm.
func (q *DeliveryQueue) Publish(ctx context.Context, intent model.Intent) error {
	body, err := json.Marshal(intent)
	if err != nil {
		return fmt.Errorf("failed to marshal intent: %w", err)
	}

	return q.publish(ctx, ExchangeName, "", message(intent.ID.String(), body, amqp.Table{AttemptHeader: int32(0)}))
}

func (q *DeliveryQueue) publish(ctx context.Context, exchange, key string, msg amqp.Publishing) error {
	q.pubMu.Lock()
	defer q.pubMu.Unlock()

	dc, err := q.pub.PublishWithDeferredConfirmWithContext(ctx, exchange, key, true, false, msg)
	if err != nil {
		return fmt.Errorf("failed to publish: %w", err)
	}

	ok, err := dc.WaitContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to wait for confirm: %w", err)
	}
	if !ok {
		return errors.New("publish was nacked by the broker")
	}

	return nil
}

func message(id string, body []byte, headers amqp.Table) amqp.Publishing {
	return amqp.Publishing{
		MessageId:    id,
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Headers:      headers,
		Body:         body,
	}
}

// ReceiveBatch waits up to wait for at most max deliveries.
func (q *DeliveryQueue) ReceiveBatch(ctx context.Context, max int, wait time.Duration) ([]queue.Delivery, error) {
	timer := time.NewTimer(wait)
	defer timer.Stop()

	var out []queue.Delivery
	for len(out) < max {
		select {
		case <-ctx.Done():
			if len(out) > 0 {
				return out, nil
			}
			return nil, ctx.Err()

		case <-timer.C:
			return out, nil

		case msg, ok := <-q.deliveries:
			if !ok {
				return out, queue.ErrClosed
			}

			d, err := decode(msg)
			if err != nil {
				zlog.Logger.Error().Err(err).Str("message_id", msg.MessageId).Msg("undecodable message, dead-lettering")
				q.park(ctx, msg, queue.ReasonUndecodable, receiveCount(msg.Headers))
				continue
			}

			q.mu.Lock()
			q.inflight[d.Receipt] = inflight{msg: msg, receivedAt: time.Now()}
			q.mu.Unlock()

			out = append(out, d)
		}
	}

	return out, nil
}

func decode(msg amqp.Delivery) (queue.Delivery, error) {
	var in model.Intent
	if err := json.Unmarshal(msg.Body, &in); err != nil {
		return queue.Delivery{}, fmt.Errorf("failed to unmarshal intent: %w", err)
	}

	return queue.Delivery{
		Intent:       in,
		Receipt:      strconv.FormatUint(msg.DeliveryTag, 10),
		ReceiveCount: receiveCount(msg.Headers),
	}, nil
}

// receiveCount adds the attempts spent in the retry queue to the
// redeliveries the broker counted itself.
func receiveCount(h amqp.Table) int {
	return headerInt(h, AttemptHeader) + headerInt(h, deliveryCountHeader) + 1
}

func headerInt(h amqp.Table, key string) int {
	switch v := h[key].(type) {
	case int32:
		return int(v)
	case int64:
		return int(v)
	case int:
		return v
	case int16:
		return int(v)
	case int8:
		return int(v)
	case uint8:
		return int(v)
	default:
		return 0
	}
}

func (q *DeliveryQueue) take(receipt string) (amqp.Delivery, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	e, ok := q.inflight[receipt]
	if !ok {
		return amqp.Delivery{}, queue.ErrUnknownReceipt
	}
	delete(q.inflight, receipt)

	return e.msg, nil
}

// Acknowledge removes a received message permanently.
func (q *DeliveryQueue) Acknowledge(_ context.Context, d queue.Delivery) error {
	msg, err := q.take(d.Receipt)
	if err != nil {
		return err
	}

	return msg.Ack(false)
}

// Release republishes the message to the retry queue, or to the DLQ once
// MaxReceiveCount is reached, and acks the original.
func (q *DeliveryQueue) Release(ctx context.Context, d queue.Delivery) (bool, error) {
	msg, err := q.take(d.Receipt)
	if err != nil {
		return false, err
	}

	if d.ReceiveCount >= q.cfg.MaxReceiveCount {
		return true, q.park(ctx, msg, queue.ReasonMaxReceives, d.ReceiveCount)
	}

	target := RetryQueueName
	if q.cfg.RetryDelay <= 0 {
		target = MainQueueName
	}

	headers := amqp.Table{AttemptHeader: int32(d.ReceiveCount)}
	if err := q.publish(ctx, "", target, message(msg.MessageId, msg.Body, headers)); err != nil {
		_ = msg.Nack(false, true)
		return false, err
	}

	return false, msg.Ack(false)
}

// DeadLetter moves a received message straight to the DLQ.
func (q *DeliveryQueue) DeadLetter(ctx context.Context, d queue.Delivery, reason string) error {
	msg, err := q.take(d.Receipt)
	if err != nil {
		return err
	}

	return q.park(ctx, msg, reason, d.ReceiveCount)
}

func (q *DeliveryQueue) park(ctx context.Context, msg amqp.Delivery, reason string, count int) error {
	headers := amqp.Table{
		AttemptHeader:      int32(count),
		ReasonHeader:       reason,
		DeadLetteredHeader: time.Now().UTC().Format(time.RFC3339Nano),
	}

	if err := q.publish(ctx, "", DLQName, message(msg.MessageId, msg.Body, headers)); err != nil {
		_ = msg.Nack(false, true)
		return fmt.Errorf("failed to dead-letter message: %w", err)
	}

	return msg.Ack(false)
}

// reap hands messages held longer than the visibility timeout back to the
// broker, or parks them in the DLQ once their receives are used up.
func (q *DeliveryQueue) reap() {
	tick := q.cfg.VisibilityTimeout / 10
	if tick <= 0 {
		tick = time.Second
	}

	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-q.stop:
			return
		case now := <-ticker.C:
			var park []amqp.Delivery

			q.mu.Lock()
			for receipt, e := range q.inflight {
				switch expire(e, now, q.cfg) {
				case expiryHold:
					continue
				case expiryPark:
					park = append(park, e.msg)
				case expiryRequeue:
					if err := e.msg.Nack(false, true); err != nil {
						zlog.Logger.Error().Err(err).Str("message_id", e.msg.MessageId).Msg("failed to requeue expired delivery")
					}
				}
				delete(q.inflight, receipt)
			}
			q.mu.Unlock()

			for _, msg := range park {
				q.parkExpired(msg)
			}
		}
	}
}

func (q *DeliveryQueue) parkExpired(msg amqp.Delivery) {
	ctx, cancel := context.WithTimeout(context.Background(), parkTimeout)
	defer cancel()

	if err := q.park(ctx, msg, queue.ReasonMaxReceives, receiveCount(msg.Headers)); err != nil {
		zlog.Logger.Error().Err(err).Str("message_id", msg.MessageId).Msg("failed to dead-letter expired delivery")
		return
	}
	zlog.Logger.Warn().Str("message_id", msg.MessageId).Msg("expired delivery dead-lettered")
}

// DeadLetters peeks at up to limit dead letters. The messages stay in the
// DLQ: they are requeued when the peek channel closes.
func (q *DeliveryQueue) DeadLetters(_ context.Context, limit int) ([]queue.DeadLetter, error) {
	ch, err := q.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	var out []queue.DeadLetter
	for limit <= 0 || len(out) < limit {
		msg, ok, err := ch.Get(DLQName, false)
		if err != nil {
			return nil, fmt.Errorf("failed to get dead letter: %w", err)
		}
		if !ok {
			break
		}

		out = append(out, deadLetter(msg))
	}

	return out, nil
}

func deadLetter(msg amqp.Delivery) queue.DeadLetter {
	var in model.Intent
	_ = json.Unmarshal(msg.Body, &in)

	dl := queue.DeadLetter{
		Intent:       in,
		ReceiveCount: headerInt(msg.Headers, AttemptHeader),
	}

	if reason, ok := msg.Headers[ReasonHeader].(string); ok {
		dl.Reason = reason
	} else if _, ok := msg.Headers[deathHeader]; ok {
		// dead-lettered by the broker on x-delivery-limit
		dl.Reason = queue.ReasonMaxReceives
		dl.ReceiveCount = receiveCount(msg.Headers) - 1
	}

	dl.DeadLetteredAt = msg.Timestamp
	if at, ok := msg.Headers[DeadLetteredHeader].(string); ok {
		if t, err := time.Parse(time.RFC3339Nano, at); err == nil {
			dl.DeadLetteredAt = t
		}
	}

	return dl
}

// DeadLetterStats reports the DLQ depth and the age of its oldest message.
func (q *DeliveryQueue) DeadLetterStats(_ context.Context) (queue.Stats, error) {
	ch, err := q.conn.Channel()
	if err != nil {
		return queue.Stats{}, fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	info, err := ch.QueueDeclarePassive(DLQName, true, false, false, false, amqp.Table{
		"x-message-ttl": q.cfg.DLQRetention.Milliseconds(),
	})
	if err != nil {
		return queue.Stats{}, fmt.Errorf("failed to inspect DLQ: %w", err)
	}

	st := queue.Stats{Depth: info.Messages}
	if info.Messages == 0 {
		return st, nil
	}

	msg, ok, err := ch.Get(DLQName, false)
	if err != nil {
		return queue.Stats{}, fmt.Errorf("failed to peek DLQ: %w", err)
	}
	if ok {
		st.OldestAge = time.Since(deadLetter(msg).DeadLetteredAt)
	}

	return st, nil
}

// Redrive moves up to limit dead letters back to the main queue with a
// fresh attempt count.
func (q *DeliveryQueue) Redrive(ctx context.Context, limit int) (int, error) {
	ch, err := q.conn.Channel()
	if err != nil {
		return 0, fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	n := 0
	for limit <= 0 || n < limit {
		msg, ok, err := ch.Get(DLQName, false)
		if err != nil {
			return n, fmt.Errorf("failed to get dead letter: %w", err)
		}
		if !ok {
			break
		}

		headers := amqp.Table{AttemptHeader: int32(0)}
		if err := q.publish(ctx, "", MainQueueName, message(msg.MessageId, msg.Body, headers)); err != nil {
			return n, err
		}

		if err := msg.Ack(false); err != nil {
			return n, fmt.Errorf("failed to ack dead letter: %w", err)
		}
		n++
	}

	return n, nil
}

// Close stops consuming and closes both channels.
func (q *DeliveryQueue) Close() error {
	var err error
	q.once.Do(func() {
		close(q.stop)
		err = errors.Join(q.cons.Close(), q.pub.Close())
	})

	return err
}
