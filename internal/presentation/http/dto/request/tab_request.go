package request

// CreateTabRequest represents the create tab request body
type CreateTabRequest struct {
	Number       int    `json:"number" binding:"required,min=1"`
	CustomerName string `json:"customer_name" binding:"max=120"`
}

// AddItemRequest represents the add item request body. UnitPrice is the
// catalog price in decimal currency units at add time; it becomes the
// line's permanent snapshot.
type AddItemRequest struct {
	ProductID   string  `json:"product_id" binding:"required,uuid"`
	ProductName string  `json:"product_name" binding:"required,max=120"`
	UnitPrice   float64 `json:"unit_price" binding:"required,gt=0"`
}

// CloseTabRequest represents the close tab request body
type CloseTabRequest struct {
	PaymentMethod string `json:"payment_method"`
}
