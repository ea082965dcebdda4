package observable

import "sync"

// upstream is the subscription a derived observable holds on its sources.
// It is populated on the 0->1 observer transition and cleared on 1->0, so a
// derived observable without observers keeps no reference from its sources.
type upstream struct {
	mu     sync.Mutex
	unsubs []Unsubscribe
	active bool
}

// open marks the handle as attached before the sources are subscribed, so
// that replays delivered during subscription see an attached handle.
func (u *upstream) open() {
	u.mu.Lock()
	u.active = true
	u.mu.Unlock()
}

func (u *upstream) add(unsub Unsubscribe) {
	u.mu.Lock()
	u.unsubs = append(u.unsubs, unsub)
	u.mu.Unlock()
}

func (u *upstream) attached() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.active
}

// close releases every source subscription.
func (u *upstream) close() {
	u.mu.Lock()
	unsubs := u.unsubs
	u.unsubs = nil
	u.active = false
	u.mu.Unlock()

	for _, unsub := range unsubs {
		unsub()
	}
}
