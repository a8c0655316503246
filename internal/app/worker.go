package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/evanschultz/kanban/internal/domain"
)

// RequestKind names one IO operation.
type RequestKind int

// RequestSaveLocal and related constants enumerate IO requests.
const (
	RequestSaveLocal RequestKind = iota
	RequestAutoSave
	RequestLoadLocal
	RequestDeleteLocal
	RequestListLocalSaves
	RequestLoadPreview
	RequestCloudLogin
	RequestCloudSignUp
	RequestCloudSendResetLink
	RequestCloudResetPassword
	RequestCloudSync
	RequestCloudListSaves
	RequestCloudFetchSave
	RequestCloudLogout
)

var requestKindNames = map[RequestKind]string{
	RequestSaveLocal:          "save_local",
	RequestAutoSave:           "auto_save",
	RequestLoadLocal:          "load_local",
	RequestDeleteLocal:        "delete_local",
	RequestListLocalSaves:     "list_local_saves",
	RequestLoadPreview:        "load_preview",
	RequestCloudLogin:         "cloud_login",
	RequestCloudSignUp:        "cloud_sign_up",
	RequestCloudSendResetLink: "cloud_send_reset_link",
	RequestCloudResetPassword: "cloud_reset_password",
	RequestCloudSync:          "cloud_sync",
	RequestCloudListSaves:     "cloud_list_saves",
	RequestCloudFetchSave:     "cloud_fetch_save",
	RequestCloudLogout:        "cloud_logout",
}

// String returns the log name of k.
func (k RequestKind) String() string {
	if name, ok := requestKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("request(%d)", int(k))
}

// refresh reports kinds where only the newest pending request matters.
func (k RequestKind) refresh() bool {
	switch k {
	case RequestAutoSave, RequestListLocalSaves, RequestLoadPreview, RequestCloudListSaves:
		return true
	}
	return false
}

// Credentials carries account form values.
type Credentials struct {
	Email    string
	Password string
	Token    string
}

// Request is one IO job. Workspace is a snapshot owned by the request.
type Request struct {
	Kind        RequestKind
	Target      string
	Workspace   domain.Workspace
	Format      domain.DateTimeFormat
	Credentials Credentials
	Session     Session
}

func (r Request) key() string {
	if r.Kind.refresh() {
		return r.Kind.String()
	}
	return r.Kind.String() + "\x00" + r.Target
}

// Result is one completed IO job.
type Result struct {
	Request    Request
	Save       SaveInfo
	Saves      []SaveInfo
	Loaded     *Save
	CloudSave  CloudSave
	CloudSaves []CloudSave
	Session    Session
	Elapsed    time.Duration
	Err        error
}

// Handler performs one request.
type Handler func(context.Context, Request) Result

// Worker runs IO requests one at a time off the UI goroutine. Pending
// requests with the same key coalesce: the newest payload replaces the queued
// one in place.
type Worker struct {
	handler Handler

	mu      sync.Mutex
	pending []Request
	closed  bool

	wake    chan struct{}
	results chan Result
	done    chan struct{}
	once    sync.Once
}

// NewWorker returns a worker queueing up to buffer requests for handler.
func NewWorker(handler Handler, buffer int) *Worker {
	if buffer <= 0 {
		buffer = 16
	}
	return &Worker{
		handler: handler,
		wake:    make(chan struct{}, 1),
		results: make(chan Result, buffer),
		done:    make(chan struct{}),
	}
}

// Start launches the worker goroutine. It returns when ctx ends or Close is called.
func (w *Worker) Start(ctx context.Context) {
	go w.run(ctx)
}

// Submit queues req. It reports false once the worker is closed.
func (w *Worker) Submit(req Request) bool {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return false
	}
	key := req.key()
	replaced := false
	for i := range w.pending {
		if w.pending[i].key() == key {
			w.pending[i] = req
			replaced = true
			break
		}
	}
	if !replaced {
		w.pending = append(w.pending, req)
	}
	w.mu.Unlock()
	if replaced {
		log.Debug("io request coalesced", "kind", req.Kind, "target", req.Target)
	}
	select {
	case w.wake <- struct{}{}:
	default:
	}
	return true
}

// Results delivers completions in the order requests ran.
func (w *Worker) Results() <-chan Result {
	return w.results
}

// Pending returns the number of queued requests not yet started.
func (w *Worker) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending)
}

// Close sets the closed flag and stops the goroutine after the running job.
func (w *Worker) Close() {
	w.once.Do(func() {
		w.mu.Lock()
		w.closed = true
		w.pending = nil
		w.mu.Unlock()
		close(w.done)
	})
}

func (w *Worker) isClosed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
}

func (w *Worker) next() (Request, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed || len(w.pending) == 0 {
		return Request{}, false
	}
	req := w.pending[0]
	w.pending = w.pending[1:]
	return req, true
}

func (w *Worker) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.Close()
			return
		case <-w.done:
			return
		case <-w.wake:
		}
		for {
			req, ok := w.next()
			if !ok {
				break
			}
			started := time.Now()
			result := w.handler(ctx, req)
			result.Request = req
			result.Elapsed = time.Since(started)
			if w.isClosed() {
				return
			}
			select {
			case w.results <- result:
			case <-ctx.Done():
				w.Close()
				return
			case <-w.done:
				return
			}
		}
	}
}
