package kafka

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

// Producer is a single-topic writer with a buffered inbox. Publish is
// fire-and-forget; write errors are logged, not surfaced to callers.
type Producer struct {
	w       *kafka.Writer
	inbox   chan kafka.Message
	quit    chan struct{}
	closeCh chan struct{}
	once    sync.Once
}

func NewProducer(brokers []string, topic string, buf int) *Producer {
	return &Producer{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
		},
		inbox:   make(chan kafka.Message, buf),
		quit:    make(chan struct{}),
		closeCh: make(chan struct{}),
	}
}

func (p *Producer) Start(ctx context.Context) {
	go func() {
		defer func() {
			_ = p.w.Close()
			close(p.closeCh)
		}()
		for {
			select {
			case <-ctx.Done():
				p.drain()
				return
			case <-p.quit:
				p.drain()
				return
			case m := <-p.inbox:
				p.write(m)
			}
		}
	}()
}

// drain flushes whatever is already buffered, then gives up. The inbox
// is never closed, so a straggling Publish cannot panic.
func (p *Producer) drain() {
	for {
		select {
		case m := <-p.inbox:
			p.write(m)
		default:
			return
		}
	}
}

func (p *Producer) write(m kafka.Message) {
	if err := p.w.WriteMessages(context.Background(), m); err != nil {
		log.Printf("[kafka] write topic=%s: %v", p.w.Topic, err)
	}
}

// Publish enqueues the message for the write loop. After Close it
// drops the message instead of blocking; request handlers abandoned by
// the server's shutdown deadline can still land here.
func (p *Producer) Publish(key, value []byte, headers ...kafka.Header) {
	m := kafka.Message{
		Key:     key,
		Value:   value,
		Time:    time.Now(),
		Headers: headers,
	}
	select {
	case <-p.quit:
		log.Printf("[kafka] drop message after close topic=%s", p.w.Topic)
	case p.inbox <- m:
	}
}

// Close stops accepting messages; the loop flushes the remainder.
// Safe to call more than once.
func (p *Producer) Close() {
	p.once.Do(func() { close(p.quit) })
}

func (p *Producer) WaitClosed() { <-p.closeCh }
