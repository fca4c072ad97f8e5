package domain

import "time"

const DefaultItemGlyph = "🎁"

// ShopItem - позиция каталога магазина
type ShopItem struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Price       int64     `json:"price"`
	Quantity    int       `json:"quantity"`
	Sold        int       `json:"sold"`
	Description string    `json:"description"`
	Glyph       string    `json:"glyph"`
	CreatedAt   time.Time `json:"created_at"`
}

func (i *ShopItem) InStock() bool {
	return i.Quantity > 0
}

// InventoryEntry - экземпляр купленного предмета.
// В каждый момент принадлежит ровно одной коллекции; при передаче переносится, а не копируется.
type InventoryEntry struct {
	UniqueID    string    `json:"unique_id"`
	ItemID      string    `json:"item_id"`
	Name        string    `json:"name"`
	Glyph       string    `json:"glyph"`
	Description string    `json:"description"`
	PurchasedAt time.Time `json:"purchased_at"`
}

// Inventory - упорядоченная коллекция предметов игрока
type Inventory struct {
	UserID int64            `json:"user_id"`
	Items  []InventoryEntry `json:"items"`
	// Seq растет с каждой покупкой и не уменьшается при передачах
	Seq int `json:"seq"`
}

// IndexOf возвращает позицию записи по уникальному идентификатору или -1
func (inv *Inventory) IndexOf(uniqueID string) int {
	for i, e := range inv.Items {
		if e.UniqueID == uniqueID {
			return i
		}
	}
	return -1
}

// RemoveAt извлекает запись по позиции, сохраняя порядок остальных
func (inv *Inventory) RemoveAt(index int) (InventoryEntry, bool) {
	if index < 0 || index >= len(inv.Items) {
		return InventoryEntry{}, false
	}
	e := inv.Items[index]
	inv.Items = append(inv.Items[:index:index], inv.Items[index+1:]...)
	return e, true
}

func (inv *Inventory) Append(e InventoryEntry) {
	inv.Items = append(inv.Items, e)
}
