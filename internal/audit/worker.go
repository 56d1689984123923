package audit

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/skuldata/skuldata-api/internal/observability"
)

const (
	defaultWorkers   = 2
	defaultQueueSize = 256
)

// workerPool executes detached recording tasks. It replaces the naive
// one-goroutine-per-event pattern with a bounded queue: when the queue is
// full the task is dropped and counted, because losing an audit entry is
// preferable to blocking the primary operation.
type workerPool struct {
	tasks    chan func()
	wg       sync.WaitGroup
	stopOnce sync.Once
	logger   zerolog.Logger
}

func newWorkerPool(workers, queueSize int, logger zerolog.Logger) *workerPool {
	if workers <= 0 {
		workers = defaultWorkers
	}
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}

	pool := &workerPool{
		tasks:  make(chan func(), queueSize),
		logger: logger.With().Str("component", "audit_worker_pool").Logger(),
	}

	pool.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go pool.run()
	}
	return pool
}

func (p *workerPool) run() {
	defer p.wg.Done()
	for task := range p.tasks {
		observability.AuditQueueDepth().Dec()
		task()
	}
}

// submit enqueues a task without blocking; false means it was dropped.
func (p *workerPool) submit(task func()) bool {
	select {
	case p.tasks <- task:
		observability.AuditQueueDepth().Inc()
		return true
	default:
		observability.AuditDropped().Inc()
		p.logger.Warn().Msg("audit queue full, entry dropped")
		return false
	}
}

// stop drains the queue and waits for in-flight tasks to finish.
func (p *workerPool) stop() {
	p.stopOnce.Do(func() {
		close(p.tasks)
	})
	p.wg.Wait()
}
