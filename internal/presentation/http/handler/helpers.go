package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/josemcv/tabsync/internal/presentation/http/dto/response"
)

// pathUUID parses a UUID path parameter, responding 400 on failure.
func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.BadRequest(c, "Invalid "+name+" parameter")
		return uuid.Nil, false
	}
	return id, true
}
