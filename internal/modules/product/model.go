package product

import (
	"time"

	"github.com/georgemunganga/shelf-api/internal/platform/document"
)

// productFields are the JSON names of the typed product fields.
var productFields = []string{"id", "name", "description", "category", "price", "stock", "created_at", "updated_at"}

// Product is a catalogue item. Category is optional and drives list filtering.
// Attributes holds every other top-level field of the document.
type Product struct {
	ID          string                 `json:"id" bson:"_id"`
	Name        string                 `json:"name" bson:"name"`
	Description string                 `json:"description,omitempty" bson:"description,omitempty"`
	Category    string                 `json:"category,omitempty" bson:"category,omitempty"`
	Price       float64                `json:"price" bson:"price"`
	Stock       int                    `json:"stock" bson:"stock"`
	Attributes  map[string]interface{} `json:"-" bson:"attributes,omitempty"`
	CreatedAt   time.Time              `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at" bson:"updated_at"`
}

func (p Product) MarshalJSON() ([]byte, error) {
	type typed Product
	return document.Encode(typed(p), p.Attributes, productFields...)
}

func (p *Product) UnmarshalJSON(data []byte) error {
	type typed Product
	var t typed
	extra, err := document.Decode(data, &t, productFields...)
	if err != nil {
		return err
	}
	t.Attributes = extra
	*p = Product(t)
	return nil
}
