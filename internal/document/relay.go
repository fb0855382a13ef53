package document

import "sync"

// Relay owns the latest known full-document text for one session. The
// protocol has last-writer-wins semantics: local edits and remote sync
// messages both overwrite the snapshot whole, there is no merging. Roster
// traffic never touches the snapshot.
type Relay struct {
	mu        sync.RWMutex
	code      string
	has       bool
	onReplace func(string)
	publish   func(string)
}

// NewRelay returns a relay with no snapshot yet.
func NewRelay() *Relay {
	return &Relay{}
}

// SetOnReplace registers the editing-surface callback invoked when a
// remote sync replaces the document. May be left unset; remote syncs
// then only update the held snapshot.
func (r *Relay) SetOnReplace(fn func(code string)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onReplace = fn
}

// SetPublisher registers the outbound hook invoked with every local
// edit, wired by the session controller to the room broadcast.
func (r *Relay) SetPublisher(fn func(code string)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.publish = fn
}

// OnLocalEdit overwrites the snapshot with the full current text and
// forwards it outward. It is called on every local change; debouncing,
// if any, belongs to the editing surface.
func (r *Relay) OnLocalEdit(code string) {
	r.mu.Lock()
	r.code = code
	r.has = true
	fn := r.publish
	r.mu.Unlock()

	if fn != nil {
		fn(code)
	}
}

// Snapshot returns the current document text for a late-joiner catch-up.
// The second return is false while no edit has occurred and no prior
// sync has been received.
func (r *Relay) Snapshot() (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.code, r.has
}

// OnRemoteSync overwrites the snapshot with text received from an
// existing peer and forwards it to the editing surface for display.
func (r *Relay) OnRemoteSync(code string) {
	r.mu.Lock()
	r.code = code
	r.has = true
	fn := r.onReplace
	r.mu.Unlock()

	if fn != nil {
		fn(code)
	}
}
