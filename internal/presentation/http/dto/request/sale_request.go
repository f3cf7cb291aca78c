package request

// SaleItemRequest is one line of a checkout
type SaleItemRequest struct {
	ProductID   string  `json:"product_id" binding:"required,uuid"`
	ProductName string  `json:"product_name" binding:"required,max=120"`
	UnitPrice   float64 `json:"unit_price" binding:"gte=0"`
	Quantity    int     `json:"quantity" binding:"required,min=1"`
}

// Tab actions accepted after a checkout that originated from a tab.
const (
	TabActionClose  = "close"
	TabActionDelete = "delete"
)

// RegisterSaleRequest represents the checkout request body. When TabID is
// set the originating tab is closed (or deleted, per TabAction) after the
// sale is recorded.
type RegisterSaleRequest struct {
	Items         []SaleItemRequest `json:"items" binding:"required,min=1,dive"`
	PaymentMethod string            `json:"payment_method" binding:"required"`
	DirectSale    bool              `json:"direct_sale"`
	Courtesy      bool              `json:"courtesy"`
	TabNumber     *int              `json:"tab_number"`
	CustomerName  string            `json:"customer_name" binding:"max=120"`
	TabID         string            `json:"tab_id" binding:"omitempty,uuid"`
	TabAction     string            `json:"tab_action" binding:"omitempty,oneof=close delete"`
}
