package services

import (
	"log"
	"sync"
	"time"
)

const enqueueTimeout = 5 * time.Second

// NotificationDispatcher delivers notifications through a worker pool so the
// request that produced them does not wait on SMTP. Queued deliveries are
// fire-and-forget: failures are logged and counted, never retried.
type NotificationDispatcher struct {
	sink     NotificationSink
	workers  int
	jobQueue chan Message

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewNotificationDispatcher(sink NotificationSink, workers, queueSize int) *NotificationDispatcher {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}

	dispatcher := &NotificationDispatcher{
		sink:     sink,
		workers:  workers,
		jobQueue: make(chan Message, queueSize),
	}

	dispatcher.startWorkers()

	return dispatcher
}

func (d *NotificationDispatcher) startWorkers() {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
}

func (d *NotificationDispatcher) worker() {
	defer d.wg.Done()
	for msg := range d.jobQueue {
		if err := d.sink.Send(msg); err != nil {
			notificationsTotal.WithLabelValues("async", "failed").Inc()
			log.Printf("Notification to %s failed: %v", msg.To, err)
			continue
		}
		notificationsTotal.WithLabelValues("async", "sent").Inc()
	}
}

// Dispatch queues msg for background delivery.
func (d *NotificationDispatcher) Dispatch(msg Message) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		notificationsTotal.WithLabelValues("async", "dropped").Inc()
		log.Printf("Notification to %s dropped: dispatcher stopped", msg.To)
		return
	}

	select {
	case d.jobQueue <- msg:
	case <-time.After(enqueueTimeout):
		notificationsTotal.WithLabelValues("async", "dropped").Inc()
		log.Printf("Notification to %s dropped: queue full", msg.To)
	}
}

// Deliver sends msg synchronously and returns the sink's error.
func (d *NotificationDispatcher) Deliver(msg Message) error {
	if err := d.sink.Send(msg); err != nil {
		notificationsTotal.WithLabelValues("sync", "failed").Inc()
		return err
	}
	notificationsTotal.WithLabelValues("sync", "sent").Inc()
	return nil
}

// Stop drains the queue and waits for the workers to finish.
func (d *NotificationDispatcher) Stop() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.jobQueue)
	d.mu.Unlock()

	d.wg.Wait()
}
