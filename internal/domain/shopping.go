package domain

import (
	"bytes"
	"fmt"
	"sort"
)

// CartLine - строка рецепта из корзины пользователя до агрегации
type CartLine struct {
	Name   string `db:"name"`
	Unit   string `db:"measurement_unit"`
	Amount int    `db:"amount"`
}

// ShoppingItem - итоговая позиция списка покупок
type ShoppingItem struct {
	Name   string `json:"name"`
	Amount int    `json:"amount"`
	Unit   string `json:"measurement_unit"`
}

type shoppingKey struct {
	name string
	unit string
}

// AggregateShoppingList группирует строки по (название, единица), суммирует количество
// и сортирует по названию. Пустой вход дает пустой, но не nil, список.
func AggregateShoppingList(lines []CartLine) []ShoppingItem {
	totals := make(map[shoppingKey]int, len(lines))
	for _, l := range lines {
		totals[shoppingKey{name: l.Name, unit: l.Unit}] += l.Amount
	}

	items := make([]ShoppingItem, 0, len(totals))
	for k, amount := range totals {
		items = append(items, ShoppingItem{Name: k.name, Amount: amount, Unit: k.unit})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Name != items[j].Name {
			return items[i].Name < items[j].Name
		}
		return items[i].Unit < items[j].Unit
	})
	return items
}

// RenderShoppingList формирует текстовый файл списка покупок:
// по строке "{name} — {amount} {unit}\n" на позицию.
func RenderShoppingList(items []ShoppingItem) []byte {
	var buf bytes.Buffer
	for _, item := range items {
		fmt.Fprintf(&buf, "%s — %d %s\n", item.Name, item.Amount, item.Unit)
	}
	return buf.Bytes()
}
