package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"maqayees/internal/server/resp"
	"maqayees/internal/shifts"
)

// GET /v1/shifts/:id
func (h *ShiftHandler) Get(c *gin.Context) {
	id := shifts.SanitizeID(c.Param("id"))
	if id == "" {
		resp.Error(c, http.StatusBadRequest, "invalid shift id")
		return
	}

	rec, err := h.store.Load(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, shifts.ErrNotFound) {
			resp.Error(c, http.StatusNotFound, "shift not found")
			return
		}
		h.logger.Error("load shift failed", zap.String("shift_id", id), zap.Error(err))
		resp.Error(c, http.StatusInternalServerError, "internal error")
		return
	}
	resp.OK(c, gin.H{"shift": rec})
}

// GET /v1/shifts/open?driver_id=
// The dashboard lookup for a driver's current shift: cache first, then the
// is_closed column. No open shift is a normal answer, not an error.
func (h *ShiftHandler) GetOpen(c *gin.Context) {
	driverID := strings.TrimSpace(c.Query("driver_id"))
	if driverID == "" {
		resp.Error(c, http.StatusBadRequest, "driver_id is required")
		return
	}
	ctx := c.Request.Context()

	if h.active != nil {
		if shiftID, err := h.active.Get(ctx, driverID); err == nil {
			if rec, err := h.store.Load(ctx, shiftID); err == nil && !rec.IsClosed {
				resp.OK(c, gin.H{"shift": rec})
				return
			}
		}
	}

	rec, err := h.store.FindOpenByDriver(ctx, driverID)
	if err != nil {
		if errors.Is(err, shifts.ErrNotFound) {
			resp.OK(c, gin.H{"shift": nil})
			return
		}
		h.logger.Error("find open shift failed", zap.String("driver_id", driverID), zap.Error(err))
		resp.Error(c, http.StatusInternalServerError, "internal error")
		return
	}
	resp.OK(c, gin.H{"shift": rec})
}

// GET /v1/shifts?driver_id=&limit=
func (h *ShiftHandler) List(c *gin.Context) {
	driverID := strings.TrimSpace(c.Query("driver_id"))
	limit, _ := strconv.Atoi(c.Query("limit"))

	recs, err := h.store.ListRecent(c.Request.Context(), driverID, limit)
	if err != nil {
		h.logger.Error("list shifts failed", zap.Error(err))
		resp.Error(c, http.StatusInternalServerError, "internal error")
		return
	}
	if recs == nil {
		recs = []*shifts.ShiftRecord{}
	}
	resp.OK(c, gin.H{"shifts": recs})
}
