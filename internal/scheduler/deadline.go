package scheduler

import (
	"container/heap"
	"time"
)

// Task is a handle to an action registered with Deadlines.
type Task struct {
	at    time.Time
	seq   uint64
	fn    func()
	index int
}

// At returns the task's deadline
func (t *Task) At() time.Time {
	return t.at
}

// Pending reports whether the task is still waiting to run
func (t *Task) Pending() bool {
	return t != nil && t.index >= 0
}

// Deadlines is a min-heap of (deadline, action) pairs.
// It is not safe for concurrent use: the owning goroutine schedules,
// cancels and calls RunDue from its own loop.
type Deadlines struct {
	tasks taskHeap
	seq   uint64
}

// NewDeadlines creates an empty deadline queue
func NewDeadlines() *Deadlines {
	return &Deadlines{}
}

// Schedule registers fn to run on the first RunDue at or after at
func (d *Deadlines) Schedule(at time.Time, fn func()) *Task {
	d.seq++
	t := &Task{at: at, seq: d.seq, fn: fn}
	heap.Push(&d.tasks, t)
	return t
}

// Cancel removes a pending task. It returns false if the task already ran
// or was cancelled.
func (d *Deadlines) Cancel(t *Task) bool {
	if !t.Pending() || t.index >= len(d.tasks) || d.tasks[t.index] != t {
		return false
	}
	heap.Remove(&d.tasks, t.index)
	return true
}

// RunDue runs every task whose deadline is not after now, earliest first,
// and returns how many ran. Tasks scheduled by a running action are only
// run in this call if they are already due.
func (d *Deadlines) RunDue(now time.Time) int {
	ran := 0
	for len(d.tasks) > 0 && !d.tasks[0].at.After(now) {
		t := heap.Pop(&d.tasks).(*Task)
		t.fn()
		ran++
	}
	return ran
}

// Len returns the number of pending tasks
func (d *Deadlines) Len() int {
	return len(d.tasks)
}

// Next returns the earliest pending deadline
func (d *Deadlines) Next() (time.Time, bool) {
	if len(d.tasks) == 0 {
		return time.Time{}, false
	}
	return d.tasks[0].at, true
}

type taskHeap []*Task

func (h taskHeap) Len() int { return len(h) }

func (h taskHeap) Less(i, j int) bool {
	if h[i].at.Equal(h[j].at) {
		return h[i].seq < h[j].seq
	}
	return h[i].at.Before(h[j].at)
}

func (h taskHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *taskHeap) Push(x any) {
	t := x.(*Task)
	t.index = len(*h)
	*h = append(*h, t)
}

func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*h = old[:n-1]
	return t
}
