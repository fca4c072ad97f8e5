package repository

import (
	"context"
	"sort"

	"telegram_casino/internal/domain"
	"telegram_casino/internal/store"
)

// AuditRepository хранит журнал в коллекции audit, по записи на ключ
type AuditRepository struct {
	store store.Store
}

func NewAuditRepository(s store.Store) *AuditRepository {
	return &AuditRepository{store: s}
}

// создает новую запись в логе аудита; ID должен быть заполнен
func (r *AuditRepository) Create(ctx context.Context, log *domain.AuditLog) error {
	key := store.Key{Collection: store.CollectionAudit, ID: log.ID}
	if log.Details == nil {
		log.Details = map[string]interface{}{}
	}
	return r.store.Update(ctx, []store.Key{key}, func(tx store.Tx) error {
		return putJSONTx(tx, key, log)
	})
}

// Find возвращает записи по фильтру, новые первыми.
// Идентификаторы - ULID, поэтому обратный порядок id совпадает с порядком по времени.
func (r *AuditRepository) Find(ctx context.Context, f domain.AuditFilter) ([]*domain.AuditLog, error) {
	all, err := listJSON[domain.AuditLog](ctx, r.store, store.CollectionAudit)
	if err != nil {
		return nil, err
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })

	logs := make([]*domain.AuditLog, 0, len(all))
	for _, l := range all {
		if f.Limit > 0 && len(logs) >= f.Limit {
			break
		}
		if f.Match(l) {
			logs = append(logs, l)
		}
	}
	return logs, nil
}
