package views

import "sync"

// scanRequest tracks the pending scan request, which may be waiting
// on capability prompts. Only one request is pending at a time.
type scanRequest struct {
	abort func()
	id    uint64
	mu    sync.Mutex

	root *Views
}

// newScanRequest returns a new scan request tracker.
func newScanRequest(root *Views) *scanRequest {
	return &scanRequest{root: root}
}

// begin runs request in the background, unless another request is pending.
// abort is called if the request is canceled before it finishes.
func (r *scanRequest) begin(request, abort func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.abort != nil {
		r.root.status.InfoMessage("A scan request is still pending", false)
		return
	}

	r.id++
	id := r.id
	r.abort = abort

	go func() {
		request()

		r.mu.Lock()
		if r.id == id {
			r.abort = nil
		}
		r.mu.Unlock()
	}()
}

// cancel aborts the pending request, if any.
func (r *scanRequest) cancel() {
	r.mu.Lock()
	abort := r.abort
	r.abort = nil
	r.mu.Unlock()

	if abort != nil {
		go abort()
	}
}
