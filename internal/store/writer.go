package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
)

const snapshotWriteTimeout = 10 * time.Second

// SnapshotUpdater is the persistence call a SnapshotWriter drives.
type SnapshotUpdater interface {
	UpdateSnapshot(ctx context.Context, id string, snap Snapshot) error
}

type pendingSnapshot struct {
	snap  Snapshot
	timer *time.Timer
}

// SnapshotWriter debounces snapshot writes per job. A burst of edits to one
// job results in a single write of the latest snapshot once the job has been
// quiet for the configured delay. Writes for one job run in the order they
// were released, so an older snapshot never lands after a newer one.
type SnapshotWriter struct {
	updater SnapshotUpdater
	delay   time.Duration

	mu      sync.Mutex
	pending map[string]*pendingSnapshot
	// writing holds, per job, the done channel of the last released write.
	writing  map[string]chan struct{}
	inflight sync.WaitGroup
}

// NewSnapshotWriter returns a writer that persists through updater once a job
// has been quiet for delay.
func NewSnapshotWriter(updater SnapshotUpdater, delay time.Duration) *SnapshotWriter {
	return &SnapshotWriter{
		updater: updater,
		delay:   delay,
		pending: make(map[string]*pendingSnapshot),
		writing: make(map[string]chan struct{}),
	}
}

// Schedule queues snap as the next snapshot of job id, replacing any
// snapshot still waiting for that job.
func (w *SnapshotWriter) Schedule(id string, snap Snapshot) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if p, ok := w.pending[id]; ok {
		p.snap = snap
		p.timer.Reset(w.delay)
		return
	}

	p := &pendingSnapshot{snap: snap}
	p.timer = time.AfterFunc(w.delay, func() { w.fire(id, p) })
	w.pending[id] = p
}

// Pending reports how many jobs have a snapshot waiting to be written.
func (w *SnapshotWriter) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending)
}

func (w *SnapshotWriter) fire(id string, p *pendingSnapshot) {
	w.mu.Lock()
	if w.pending[id] != p {
		w.mu.Unlock()
		return
	}
	delete(w.pending, id)
	snap := p.snap
	prev, done := w.release(id)
	w.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), snapshotWriteTimeout)
	defer cancel()
	if err := w.write(ctx, id, snap, prev, done); err != nil {
		log.Printf("write snapshot for job %s: %v", id, err)
	}
}

// release queues a write for job id behind the write released before it.
// The caller must hold w.mu.
func (w *SnapshotWriter) release(id string) (prev, done chan struct{}) {
	prev = w.writing[id]
	done = make(chan struct{})
	w.writing[id] = done
	w.inflight.Add(1)
	return prev, done
}

func (w *SnapshotWriter) write(ctx context.Context, id string, snap Snapshot, prev, done chan struct{}) error {
	defer w.inflight.Done()
	defer func() {
		close(done)
		w.mu.Lock()
		if w.writing[id] == done {
			delete(w.writing, id)
		}
		w.mu.Unlock()
	}()

	if prev != nil {
		<-prev
	}
	return w.updater.UpdateSnapshot(ctx, id, snap)
}

// Flush writes every waiting snapshot now and waits for writes already in
// progress. It is meant for shutdown.
func (w *SnapshotWriter) Flush(ctx context.Context) error {
	type drainedWrite struct {
		id         string
		snap       Snapshot
		prev, done chan struct{}
	}

	w.mu.Lock()
	drained := make([]drainedWrite, 0, len(w.pending))
	for id, p := range w.pending {
		p.timer.Stop()
		prev, done := w.release(id)
		drained = append(drained, drainedWrite{id: id, snap: p.snap, prev: prev, done: done})
	}
	w.pending = make(map[string]*pendingSnapshot)
	w.mu.Unlock()

	var errs []error
	for _, d := range drained {
		if err := w.write(ctx, d.id, d.snap, d.prev, d.done); err != nil {
			errs = append(errs, fmt.Errorf("flush snapshot for job %s: %w", d.id, err))
		}
	}

	w.inflight.Wait()
	return errors.Join(errs...)
}
