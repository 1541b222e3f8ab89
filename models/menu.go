package models

type MenuItem struct {
	ID        string `json:"id"`
	Category  string `json:"category"` // "starter", "food", "drink", "dessert"
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Available bool   `json:"available"`
}

// MenuModifier is a selectable add-on for one menu item.
type MenuModifier struct {
	ID         int64  `json:"id"`
	MenuItemID string `json:"menu_item_id"`
	Name       string `json:"name"`
	PriceDelta int64  `json:"price_delta"`
}

const (
	CategoryStarter = "starter"
	CategoryFood    = "food"
	CategoryDrink   = "drink"
	CategoryDessert = "dessert"
)

var Categories = []string{CategoryStarter, CategoryFood, CategoryDrink, CategoryDessert}

func ValidCategory(c string) bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}
