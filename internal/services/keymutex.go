package services

import "sync"

// keyedMutex serializes operations per string key. Reconcile uses it per
// transaction id, the tax lot engine per (asset, account) pair; operations
// on different keys run in parallel.
type keyedMutex struct {
	mus sync.Map
}

// lock acquires the mutex for key and returns the unlock function.
func (k *keyedMutex) lock(key string) func() {
	v, _ := k.mus.LoadOrStore(key, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
