package staging

import (
	"context"
	"fmt"
	"sync"

	domain "github.com/BruksfildServices01/field-service/internal/domain/appointment"
)

// MemoryBuffer keeps staged photos in process. Suitable for a single
// instance or tests; staged photos are lost on restart.
type MemoryBuffer struct {
	mu    sync.Mutex
	items map[string][]string
}

func NewMemoryBuffer() *MemoryBuffer {
	return &MemoryBuffer{items: make(map[string][]string)}
}

func key(appointmentID, workerID uint) string {
	return fmt.Sprintf("staging:%d:%d", appointmentID, workerID)
}

func (b *MemoryBuffer) Stage(_ context.Context, appointmentID, workerID uint, ref string) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	k := key(appointmentID, workerID)
	b.items[k] = append(b.items[k], ref)
	return len(b.items[k]) - 1, nil
}

func (b *MemoryBuffer) Unstage(_ context.Context, appointmentID, workerID uint, index int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	k := key(appointmentID, workerID)
	list := b.items[k]
	if index < 0 || index >= len(list) {
		return domain.ErrStagedPhotoNotFound
	}
	b.items[k] = append(list[:index:index], list[index+1:]...)
	return nil
}

func (b *MemoryBuffer) Staged(_ context.Context, appointmentID, workerID uint) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return append([]string(nil), b.items[key(appointmentID, workerID)]...), nil
}

func (b *MemoryBuffer) Drop(_ context.Context, appointmentID, workerID uint, refs []string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	k := key(appointmentID, workerID)
	list := b.items[k]
	for _, ref := range refs {
		for i, v := range list {
			if v == ref {
				list = append(list[:i:i], list[i+1:]...)
				break
			}
		}
	}

	if len(list) == 0 {
		delete(b.items, k)
		return nil
	}
	b.items[k] = list
	return nil
}

var _ domain.StagingBuffer = (*MemoryBuffer)(nil)
