package mailer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type job struct {
	ctx    context.Context
	msg    Message
	result chan error
}

// Dispatcher delivers messages on a single worker goroutine. Callers wait
// for the outcome of their own message, so SMTP connections are never
// opened concurrently while failures still reach the caller.
type Dispatcher struct {
	transport Transport
	timeout   time.Duration
	log       zerolog.Logger

	mu     sync.RWMutex
	closed bool
	queue  chan job
	done   chan struct{}
}

// NewDispatcher starts a worker that holds up to size pending messages and
// sends each through t, bounded by timeout.
func NewDispatcher(t Transport, size int, timeout time.Duration, log zerolog.Logger) *Dispatcher {
	if size < 1 {
		size = 1
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	d := &Dispatcher{
		transport: t,
		timeout:   timeout,
		log:       log,
		queue:     make(chan job, size),
		done:      make(chan struct{}),
	}
	go d.run()
	return d
}

// Send queues m and waits until it is delivered, ctx is done, or delivery
// fails. It returns ErrQueueFull without waiting when the queue is full and
// ErrClosed after Close. A message whose caller gave up before the worker
// reached it is not sent.
func (d *Dispatcher) Send(ctx context.Context, m Message) error {
	j := job{ctx: ctx, msg: m, result: make(chan error, 1)}
	if err := d.enqueue(j); err != nil {
		return err
	}
	select {
	case err := <-j.result:
		return err
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrDelivery, ctx.Err())
	}
}

func (d *Dispatcher) enqueue(j job) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrClosed
	}
	select {
	case d.queue <- j:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops accepting messages and waits for pending ones to finish.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()
	<-d.done
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for j := range d.queue {
		j.result <- d.deliver(j)
	}
}

func (d *Dispatcher) deliver(j job) error {
	if err := j.ctx.Err(); err != nil {
		d.log.Warn().Str("subject", j.msg.Subject).Msg("mail dropped, sender gave up")
		return fmt.Errorf("%w: %v", ErrDelivery, err)
	}
	ctx, cancel := context.WithTimeout(j.ctx, d.timeout)
	defer cancel()
	if err := d.transport.Send(ctx, j.msg); err != nil {
		d.log.Error().Err(err).Str("subject", j.msg.Subject).Msg("mail delivery failed")
		if !errors.Is(err, ErrDelivery) {
			err = fmt.Errorf("%w: %v", ErrDelivery, err)
		}
		return err
	}
	d.log.Info().Str("subject", j.msg.Subject).Msg("mail delivered")
	return nil
}
