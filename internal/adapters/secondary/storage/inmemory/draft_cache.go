package inmemory

import (
	"sync"

	"github.com/admin/tg-bots/shop-bot/internal/ports/cache"
	"github.com/google/uuid"
)

// DraftCache in-memory хранилище черновиков оформления заказа.
// Черновик живёт только между шагами чек-аута, терять его при рестарте не страшно
type DraftCache struct {
	mu     sync.RWMutex
	drafts map[uuid.UUID]*cache.CheckoutDraft // user_id -> draft
}

// NewDraftCache создаёт новый in-memory кэш черновиков
func NewDraftCache() cache.IDraftCache {
	return &DraftCache{
		drafts: make(map[uuid.UUID]*cache.CheckoutDraft),
	}
}

// Get возвращает черновик пользователя
func (c *DraftCache) Get(userID uuid.UUID) (*cache.CheckoutDraft, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	draft, exists := c.drafts[userID]
	return draft, exists
}

// Set сохраняет черновик пользователя
func (c *DraftCache) Set(userID uuid.UUID, draft *cache.CheckoutDraft) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.drafts[userID] = draft
}

// Delete удаляет черновик после оформления или отмены
func (c *DraftCache) Delete(userID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.drafts, userID)
}
