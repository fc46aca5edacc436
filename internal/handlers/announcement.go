// internal/handlers/announcement.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/armanrma7/agronetixbeck-sub000/internal/models"
	"github.com/armanrma7/agronetixbeck-sub000/internal/services"
	"github.com/armanrma7/agronetixbeck-sub000/internal/utils"
)

type AnnouncementHandler struct {
	announcementService *services.AnnouncementService
	applicationService  *services.ApplicationService
	storageService      *services.StorageService
}

func NewAnnouncementHandler(announcementService *services.AnnouncementService,
	applicationService *services.ApplicationService, storageService *services.StorageService) *AnnouncementHandler {
	return &AnnouncementHandler{
		announcementService: announcementService,
		applicationService:  applicationService,
		storageService:      storageService,
	}
}

// POST /announcements
func (h *AnnouncementHandler) CreateAnnouncement(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.CreateAnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	announcement, err := h.announcementService.Create(ownerID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{"announcement": announcement})
}

// PUT /announcements/:id
func (h *AnnouncementHandler) UpdateAnnouncement(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid announcement ID", nil)
		return
	}

	var req services.UpdateAnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	announcement, err := h.announcementService.Update(actorID, isAdmin(c), id, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"announcement": announcement})
}

// POST /announcements/:id/images
func (h *AnnouncementHandler) UploadImages(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid announcement ID", nil)
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		utils.BadRequestResponse(c, "Invalid multipart form", err.Error())
		return
	}
	files := form.File["images"]
	if len(files) == 0 {
		utils.BadRequestResponse(c, "No files supplied", nil)
		return
	}

	keys, err := h.storageService.Upload(files)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	announcement, err := h.announcementService.Update(actorID, isAdmin(c), id,
		&services.UpdateAnnouncementRequest{UploadedKeys: keys})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"announcement": announcement,
		"uploaded":     keys,
	})
}

// PUT /announcements/:id/publish
func (h *AnnouncementHandler) PublishAnnouncement(c *gin.Context) {
	adminID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid announcement ID", nil)
		return
	}

	announcement, err := h.announcementService.Publish(adminID, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"announcement": announcement})
}

// PUT /announcements/:id/block
func (h *AnnouncementHandler) BlockAnnouncement(c *gin.Context) {
	adminID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid announcement ID", nil)
		return
	}

	announcement, err := h.announcementService.Block(adminID, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"announcement": announcement})
}

// PUT /announcements/:id/close
func (h *AnnouncementHandler) CloseAnnouncement(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid announcement ID", nil)
		return
	}

	announcement, err := h.announcementService.Close(&actorID, isAdmin(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"announcement": announcement})
}

// PUT /announcements/:id/cancel
func (h *AnnouncementHandler) CancelAnnouncement(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid announcement ID", nil)
		return
	}

	announcement, err := h.announcementService.Cancel(ownerID, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"announcement": announcement})
}

// DELETE /announcements/:id
func (h *AnnouncementHandler) DeleteAnnouncement(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid announcement ID", nil)
		return
	}

	if _, err := h.announcementService.Delete(actorID, isAdmin(c), id); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"deleted": true})
}

// POST /announcements/:id/view
func (h *AnnouncementHandler) RecordView(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid announcement ID", nil)
		return
	}

	if err := h.announcementService.RecordView(userID, id); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"recorded": true})
}

// GET /announcements/:id
func (h *AnnouncementHandler) GetAnnouncement(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid announcement ID", nil)
		return
	}

	announcement, err := h.announcementService.Get(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"announcement": announcement,
		"image_urls":   h.storageService.Resolve(announcement.Images),
	})
}

// GET /announcements
func (h *AnnouncementHandler) GetAnnouncements(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	search := services.AnnouncementSearchParams{PaginationParams: params}

	if t := c.Query("type"); t != "" {
		announcementType := models.AnnouncementType(t)
		search.Type = &announcementType
	}
	if cat := c.Query("category"); cat != "" {
		category := models.AnnouncementCategory(cat)
		search.Category = &category
	}

	announcements, total, err := h.announcementService.Search(search, true)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(announcements, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /announcements/mine
func (h *AnnouncementHandler) GetMyAnnouncements(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	params := utils.GetPaginationParams(c)
	announcements, total, err := h.announcementService.ListMine(ownerID, params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(announcements, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /announcements/:id/applications
func (h *AnnouncementHandler) GetAnnouncementApplications(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid announcement ID", nil)
		return
	}

	params := utils.GetPaginationParams(c)
	applications, total, err := h.applicationService.ListForAnnouncement(ownerID, id, params)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	result := utils.CreatePaginationResult(applications, total, params)
	utils.PaginatedResponse(c, result)
}
