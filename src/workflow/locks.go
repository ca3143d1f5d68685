package workflow

import "sync"

// contractLocks serializes workflow actions per contract id. A second
// action on a contract that already has one in flight fails fast instead
// of interleaving sub-calls.
type contractLocks struct {
	mtx  sync.Mutex
	held map[string]struct{}
}

func newContractLocks() *contractLocks {
	return &contractLocks{
		held: make(map[string]struct{}),
	}
}

func (self *contractLocks) tryAcquire(id string) bool {
	self.mtx.Lock()
	defer self.mtx.Unlock()

	if _, ok := self.held[id]; ok {
		return false
	}
	self.held[id] = struct{}{}
	return true
}

func (self *contractLocks) release(id string) {
	self.mtx.Lock()
	defer self.mtx.Unlock()
	delete(self.held, id)
}
