// Package scheduler turns due todos into timed reminder events.
package scheduler

import (
	"container/heap"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

var (
	ErrInvalidTriggerTime = errors.New("scheduler: invalid trigger time")
	ErrEngineStopped      = errors.New("scheduler: engine stopped")
)

// DueEvent says a todo is due on Date and should be surfaced at TriggerAt.
type DueEvent struct {
	TodoID    int64     `json:"todo_id"`
	Title     string    `json:"title"`
	Date      string    `json:"date"`
	TriggerAt time.Time `json:"trigger_at"`
}

type eventQueue []DueEvent

func (q eventQueue) Len() int { return len(q) }

func (q eventQueue) Less(i, j int) bool {
	if q[i].TriggerAt.Equal(q[j].TriggerAt) {
		return q[i].TodoID < q[j].TodoID
	}
	return q[i].TriggerAt.Before(q[j].TriggerAt)
}

func (q eventQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *eventQueue) Push(x any) { *q = append(*q, x.(DueEvent)) }

func (q *eventQueue) Pop() any {
	old := *q
	n := len(old)
	ev := old[n-1]
	*q = old[:n-1]
	return ev
}

// Engine holds pending events in trigger order and emits each on C once its
// time arrives. A full output buffer drops the event and counts it.
type Engine struct {
	mu      sync.Mutex
	queue   eventQueue
	out     chan DueEvent
	wakeup  chan struct{}
	stopCh  chan struct{}
	doneCh  chan struct{}
	started bool
	stopped bool
	dropped atomic.Uint64
	now     func() time.Time
}

func NewEngine(bufferSize int) *Engine {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &Engine{
		queue:  make(eventQueue, 0),
		out:    make(chan DueEvent, bufferSize),
		wakeup: make(chan struct{}, 1),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
		now:    time.Now,
	}
}

// C is closed after Stop returns.
func (e *Engine) C() <-chan DueEvent {
	return e.out
}

func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		return
	}
	e.started = true
	heap.Init(&e.queue)
	go e.run()
}

// Stop ends the loop and waits for it. Pending events are discarded.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.started || e.stopped {
		e.mu.Unlock()
		return
	}
	e.stopped = true
	close(e.stopCh)
	e.mu.Unlock()
	<-e.doneCh
}

func (e *Engine) Schedule(ev DueEvent) error {
	if ev.TriggerAt.IsZero() {
		return ErrInvalidTriggerTime
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return ErrEngineStopped
	}
	heap.Push(&e.queue, ev)
	e.poke()
	return nil
}

// Cancel drops every pending event for todoID and reports how many were
// removed.
func (e *Engine) Cancel(todoID int64) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	kept := e.queue[:0]
	removed := 0
	for _, ev := range e.queue {
		if ev.TodoID == todoID {
			removed++
			continue
		}
		kept = append(kept, ev)
	}
	e.queue = kept
	if removed > 0 {
		heap.Init(&e.queue)
		e.poke()
	}
	return removed
}

func (e *Engine) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.queue)
}

func (e *Engine) Dropped() uint64 {
	return e.dropped.Load()
}

func (e *Engine) run() {
	defer close(e.doneCh)
	defer close(e.out)

	timer := time.NewTimer(time.Hour)
	stopTimer(timer)
	defer timer.Stop()

	for {
		next, ok := e.peek()
		if !ok {
			select {
			case <-e.wakeup:
				continue
			case <-e.stopCh:
				return
			}
		}

		wait := next.TriggerAt.Sub(e.now())
		if wait < 0 {
			wait = 0
		}
		stopTimer(timer)
		timer.Reset(wait)

		select {
		case <-timer.C:
			for _, ev := range e.popDue(e.now()) {
				select {
				case e.out <- ev:
				default:
					e.dropped.Add(1)
				}
			}
		case <-e.wakeup:
		case <-e.stopCh:
			return
		}
	}
}

func (e *Engine) poke() {
	select {
	case e.wakeup <- struct{}{}:
	default:
	}
}

func (e *Engine) peek() (DueEvent, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.queue) == 0 {
		return DueEvent{}, false
	}
	return e.queue[0], true
}

func (e *Engine) popDue(now time.Time) []DueEvent {
	e.mu.Lock()
	defer e.mu.Unlock()

	var out []DueEvent
	for len(e.queue) > 0 && !e.queue[0].TriggerAt.After(now) {
		out = append(out, heap.Pop(&e.queue).(DueEvent))
	}
	return out
}

func stopTimer(timer *time.Timer) {
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
}
