// internal/handlers/admin.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/armanrma7/agronetixbeck-sub000/internal/services"
	"github.com/armanrma7/agronetixbeck-sub000/internal/utils"
)

type AdminHandler struct {
	sweeper *services.ExpirySweeper
}

func NewAdminHandler(sweeper *services.ExpirySweeper) *AdminHandler {
	return &AdminHandler{sweeper: sweeper}
}

// POST /admin/sweep
// Runs the expiry sweep on demand; the scheduler invokes the same pass.
func (h *AdminHandler) RunExpirySweep(c *gin.Context) {
	closed, err := h.sweeper.Run()
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"closed": closed})
}
