package handler

import (
	"math"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/josemcv/tabsync/internal/application/store"
	"github.com/josemcv/tabsync/internal/domain/entity"
	"github.com/josemcv/tabsync/internal/domain/enum"
	"github.com/josemcv/tabsync/internal/presentation/http/dto/request"
	"github.com/josemcv/tabsync/internal/presentation/http/dto/response"
)

// SaleHandler handles checkout HTTP requests
type SaleHandler struct {
	registrar *store.SaleRegistrar
	tabs      *store.TabStore
}

// NewSaleHandler creates a new sale handler
func NewSaleHandler(registrar *store.SaleRegistrar, tabs *store.TabStore) *SaleHandler {
	return &SaleHandler{registrar: registrar, tabs: tabs}
}

// Register handles checkout: it records the sale (and its ledger entry)
// and then closes or deletes the originating tab, when there is one. A
// degraded (locally stored) sale is still a success; only the
// remote-and-local double failure reaches the client as an error.
func (h *SaleHandler) Register(c *gin.Context) {
	var req request.RegisterSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	method := enum.PaymentMethod(req.PaymentMethod)
	if !method.IsValid() {
		response.BadRequest(c, "Unknown payment method")
		return
	}

	items := make([]entity.SaleItem, 0, len(req.Items))
	for _, it := range req.Items {
		productID, err := uuid.Parse(it.ProductID)
		if err != nil {
			response.BadRequest(c, "Invalid product id")
			return
		}
		items = append(items, entity.SaleItem{
			ProductID:   productID,
			ProductName: it.ProductName,
			UnitPrice:   int64(math.Round(it.UnitPrice * 100)),
			Quantity:    it.Quantity,
		})
	}

	input := store.RegisterSaleInput{
		Items:         items,
		Total:         entity.SaleTotal(items),
		PaymentMethod: method,
		DirectSale:    req.DirectSale,
		Courtesy:      req.Courtesy || method == enum.PaymentCourtesy,
		TabNumber:     req.TabNumber,
		CustomerName:  req.CustomerName,
	}

	result, err := h.registrar.RegisterSale(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	if req.TabID != "" {
		tabID, err := uuid.Parse(req.TabID)
		if err == nil {
			if req.TabAction == request.TabActionDelete {
				h.tabs.DeleteTab(c.Request.Context(), tabID)
			} else {
				h.tabs.CloseTab(c.Request.Context(), tabID, method)
			}
		}
	}

	response.Created(c, "Sale registered successfully", result)
}
