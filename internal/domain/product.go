package domain

// ProductKind is the closed set of product variants carried by the catalog.
type ProductKind string

const (
	KindLaptop    ProductKind = "laptop"
	KindMouse     ProductKind = "mouse"
	KindAccessory ProductKind = "accessory"
)

type Product struct {
	ID       int64       `json:"id" bson:"_id"`
	Name     string      `json:"name" bson:"name"`
	Kind     ProductKind `json:"kind" bson:"kind"`
	UnitCost float64     `json:"unit_cost" bson:"unit_cost"`
	Price    float64     `json:"price" bson:"price"`
	Stock    int32       `json:"stock" bson:"stock"`
}
