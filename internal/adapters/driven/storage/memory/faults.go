package memory

import (
	"sync"

	"github.com/custodia-labs/rulebook/internal/core/domain"
)

// faults holds injected failures keyed by operation name.
type faults struct {
	mu   sync.RWMutex
	errs map[string]error
}

// FailOn makes every later call of op fail with a storage error wrapping err.
// A nil err clears the failure.
func (f *faults) FailOn(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.errs == nil {
		f.errs = make(map[string]error)
	}
	if err == nil {
		delete(f.errs, op)
		return
	}
	f.errs[op] = err
}

func (f *faults) check(op string) error {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return domain.NewStorageError(op, f.errs[op])
}
