package store

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/sandeepkv93/reminderd/internal/model"
)

// Snapshot is an immutable view of every stored todo, ordered by id.
// Receivers must not modify Todos.
type Snapshot struct {
	Version uint64
	Todos   []model.Todo
}

// Len returns the number of todos in the snapshot.
func (s Snapshot) Len() int { return len(s.Todos) }

// Find returns the todo with id, if present.
func (s Snapshot) Find(id int64) (model.Todo, bool) {
	for _, t := range s.Todos {
		if t.ID == id {
			return t, true
		}
	}
	return model.Todo{}, false
}

// publisher fans snapshots out to subscribers. Each subscriber channel holds
// at most one pending snapshot; a newer snapshot replaces an unread one.
type publisher struct {
	current atomic.Pointer[Snapshot]

	mu     sync.Mutex
	subs   map[int]chan Snapshot
	nextID int
	closed bool
}

func newPublisher() *publisher {
	p := &publisher{subs: make(map[int]chan Snapshot)}
	p.current.Store(&Snapshot{Todos: []model.Todo{}})
	return p
}

func (p *publisher) load() Snapshot {
	return *p.current.Load()
}

func (p *publisher) publish(s Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current.Store(&s)
	for _, ch := range p.subs {
		offer(ch, s)
	}
}

func offer(ch chan Snapshot, s Snapshot) {
	select {
	case ch <- s:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	ch <- s
}

func (p *publisher) subscribe(ctx context.Context) (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := p.nextID
	p.nextID++
	p.subs[id] = ch
	ch <- *p.current.Load()
	p.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			p.mu.Lock()
			defer p.mu.Unlock()
			if _, ok := p.subs[id]; ok {
				delete(p.subs, id)
				close(ch)
			}
		})
	}
	stop := context.AfterFunc(ctx, cancel)
	return ch, func() {
		stop()
		cancel()
	}
}

func (p *publisher) close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	for id, ch := range p.subs {
		delete(p.subs, id)
		close(ch)
	}
}
