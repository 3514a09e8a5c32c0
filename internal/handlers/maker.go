// internal/handlers/maker.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/tandatangan/katalog-backend/internal/services"
	"github.com/tandatangan/katalog-backend/internal/utils"
)

type MakerHandler struct {
	makerService   *services.MakerService
	storageService *services.StorageService
}

func NewMakerHandler(makerService *services.MakerService, storageService *services.StorageService) *MakerHandler {
	return &MakerHandler{
		makerService:   makerService,
		storageService: storageService,
	}
}

// GET /v1/makers
func (h *MakerHandler) ListMakers(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	makers, total, err := h.makerService.ListMakers(params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(makers, total, params)
	utils.PaginatedResponse(c, result)
}

// POST /v1/makers
func (h *MakerHandler) CreateMaker(c *gin.Context) {
	var req services.CreateMakerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	maker, err := h.makerService.CreateMaker(&req)
	if err != nil {
		respondServiceError(c, err, "Maker")
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": "Maker created successfully",
		"maker":   maker,
	})
}

// GET /v1/makers/:id
func (h *MakerHandler) GetMaker(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	maker, err := h.makerService.GetMaker(id)
	if err != nil {
		respondServiceError(c, err, "Maker")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"maker": maker,
	})
}

// PUT /v1/makers/:id
func (h *MakerHandler) UpdateMaker(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateMakerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	maker, err := h.makerService.UpdateMaker(id, &req)
	if err != nil {
		respondServiceError(c, err, "Maker")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": "Maker updated successfully",
		"maker":   maker,
	})
}

// DELETE /v1/makers/:id
func (h *MakerHandler) DeleteMaker(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.makerService.DeleteMaker(id); err != nil {
		respondServiceError(c, err, "Maker")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": "Maker deleted successfully",
	})
}

// POST /v1/uploads
// Generic artifact upload used for maker logos and product videos; the
// returned key is then supplied on create/update.
func (h *MakerHandler) Upload(c *gin.Context) {
	category := c.DefaultPostForm("category", "general")

	header, err := c.FormFile("file")
	if err != nil {
		utils.BadRequestResponse(c, "No file supplied", err.Error())
		return
	}

	file, err := header.Open()
	if err != nil {
		utils.BadRequestResponse(c, "Failed to open upload", err.Error())
		return
	}
	defer file.Close()

	options := h.storageService.GetDefaultUploadOptions(category)

	result, err := h.storageService.UploadFile(file, header, options)
	if err != nil {
		respondServiceError(c, err, "File")
		return
	}

	utils.CreatedResponse(c, gin.H{
		"upload": result,
	})
}
