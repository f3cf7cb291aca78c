package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/josemcv/tabsync/internal/application/store"
	"github.com/josemcv/tabsync/internal/presentation/http/dto/response"
)

// SyncHandler handles sync-related HTTP requests
type SyncHandler struct {
	notifier *store.SyncNotifier
}

// NewSyncHandler creates a new sync handler
func NewSyncHandler(notifier *store.SyncNotifier) *SyncHandler {
	return &SyncHandler{notifier: notifier}
}

// Wake forces an immediate reload, bypassing the debounce window. Clients
// call it when they return to the foreground.
func (h *SyncHandler) Wake(c *gin.Context) {
	h.notifier.WakeImmediate("client wake")
	response.OK(c, "Reload triggered", nil)
}
