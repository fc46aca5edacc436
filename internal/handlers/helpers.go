// internal/handlers/helpers.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/armanrma7/agronetixbeck-sub000/internal/apperrors"
	"github.com/armanrma7/agronetixbeck-sub000/internal/models"
	"github.com/armanrma7/agronetixbeck-sub000/internal/utils"
)

// currentUserID extracts the authenticated user's id from the context.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	userIDStr, exists := utils.GetUserIDFromContext(c)
	if !exists {
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return uuid.Nil, false
	}
	return userID, true
}

func isAdmin(c *gin.Context) bool {
	userType, exists := utils.GetUserTypeFromContext(c)
	return exists && userType == string(models.UserTypeAdmin)
}

// respondServiceError maps business errors onto the HTTP taxonomy.
func respondServiceError(c *gin.Context, err error) {
	var transitionErr *apperrors.InvalidTransitionError

	switch {
	case errors.As(err, &transitionErr):
		utils.ErrorResponse(c, 409, "INVALID_TRANSITION", transitionErr.Error(), gin.H{
			"current": transitionErr.Current,
			"allowed": transitionErr.Allowed,
		})
	case errors.Is(err, apperrors.ErrValidation):
		utils.BadRequestResponse(c, err.Error(), nil)
	case errors.Is(err, apperrors.ErrForbidden):
		utils.ForbiddenResponse(c, err.Error())
	case errors.Is(err, apperrors.ErrNotFound):
		utils.NotFoundResponse(c, err.Error())
	case errors.Is(err, apperrors.ErrConflict):
		utils.ConflictResponse(c, err.Error())
	default:
		utils.InternalErrorResponse(c, err.Error())
	}
}
