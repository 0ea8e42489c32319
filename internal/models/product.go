package models

// Product is a catalog entry, stored in the KV store under "product:<id>".
type Product struct {
	ID       string  `json:"id"`
	Name     string  `json:"name" validate:"required"`
	Price    float64 `json:"price" validate:"required,gt=0"`
	Currency string  `json:"currency" validate:"required,len=3"`
	Category string  `json:"category" validate:"required"`
	InStock  bool    `json:"in_stock"`
	Rating   float64 `json:"rating" validate:"gte=0,lte=5"`
	Image    string  `json:"image,omitempty"`
}

// Categories is the fixed set of catalog category labels. Bulk delete by
// category only accepts these.
var Categories = []string{
	"electronics",
	"audio",
	"wearables",
	"gaming",
	"accessories",
}

func ValidCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}
