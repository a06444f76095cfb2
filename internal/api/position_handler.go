package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"fitreport/internal/api/middleware"
	"fitreport/internal/database"
	"fitreport/internal/datastore"
)

// PositionHandler lists positions.
type PositionHandler struct {
	positions datastore.Table[database.Position]
}

func NewPositionHandler(store *datastore.Client) *PositionHandler {
	return &PositionHandler{positions: datastore.From[database.Position](store)}
}

// List returns positions ordered by level, representative first.
func (h *PositionHandler) List(c *gin.Context) {
	positions, err := h.positions.Select(c.Request.Context(), datastore.Query{
		Columns: positionColumns,
		Orders:  []datastore.Order{datastore.Asc("level")},
	})
	if err != nil {
		middleware.LoggerFromContext(c).Error("list positions failed", slog.Any("error", err))
		Internal(c, msgPositionListFailed)
		return
	}
	c.JSON(http.StatusOK, positions)
}
