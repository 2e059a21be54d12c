package engine

import (
	"log"
	"sync"

	"github.com/TanaroSch/powerkey/internal/keys"
)

// Actions is everything the engine asks of the outside world.
type Actions interface {
	// OpenFolder opens the directory for trigger, creating it if absent.
	OpenFolder(trigger keys.TriggerKey) bool
	// LaunchShortcut launches the file named after sym in trigger's directory.
	LaunchShortcut(trigger keys.TriggerKey, sym keys.SecondaryTrigger) bool
	// OnModeChanged is a fire-and-forget notification.
	OnModeChanged(passThrough bool)
}

// worker runs collaborator calls off the hook thread, one at a time, in
// submission order.
type worker struct {
	jobs chan job
	done chan struct{}

	mu     sync.Mutex
	closed bool
}

type job struct {
	name string
	run  func()
}

func newWorker(size int) *worker {
	if size <= 0 {
		size = 1
	}
	w := &worker{
		jobs: make(chan job, size),
		done: make(chan struct{}),
	}
	go w.loop()
	return w
}

func (w *worker) loop() {
	defer close(w.done)
	for j := range w.jobs {
		w.run(j)
	}
}

func (w *worker) run(j job) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Action worker: recovered from panic in '%s': %v", j.name, r)
		}
	}()
	j.run()
}

// submit never blocks. It reports false when the job was dropped.
func (w *worker) submit(name string, fn func()) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		log.Printf("Action worker: dropping '%s', worker is stopped", name)
		return false
	}
	select {
	case w.jobs <- job{name: name, run: fn}:
		return true
	default:
		log.Printf("Warning: Action worker queue full, dropping '%s'", name)
		return false
	}
}

// close stops accepting jobs. Queued jobs still run; Done is closed after the
// last one.
func (w *worker) close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.closed = true
	close(w.jobs)
}

func (w *worker) Done() <-chan struct{} { return w.done }
