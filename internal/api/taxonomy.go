package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/chefbook/backend/internal/service"
	"github.com/pageza/chefbook/backend/internal/types"
)

type TaxonomyHandler struct {
	taxonomyService service.ITaxonomyService
}

func NewTaxonomyHandler(taxonomyService service.ITaxonomyService) *TaxonomyHandler {
	return &TaxonomyHandler{taxonomyService: taxonomyService}
}

func (h *TaxonomyHandler) RegisterRoutes(router *gin.RouterGroup) {
	categories := router.Group("/categories")
	{
		categories.GET("", h.ListCategories)
		categories.POST("", h.CreateCategory)
		categories.GET("/:id", h.GetCategory)
		categories.PUT("/:id", h.RenameCategory)
		categories.DELETE("/:id", h.DeleteCategory)
	}

	measurements := router.Group("/measurements")
	{
		measurements.GET("", h.ListMeasurementUnits)
		measurements.POST("", h.CreateMeasurementUnit)
		measurements.GET("/:id", h.GetMeasurementUnit)
		measurements.PUT("/:id", h.RenameMeasurementUnit)
		measurements.DELETE("/:id", h.DeleteMeasurementUnit)
	}
}

func (h *TaxonomyHandler) ListCategories(c *gin.Context) {
	categories, err := h.taxonomyService.ListCategories(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (h *TaxonomyHandler) CreateCategory(c *gin.Context) {
	var req types.NameRequest
	if !bindJSON(c, &req) {
		return
	}
	category, err := h.taxonomyService.CreateCategory(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

func (h *TaxonomyHandler) GetCategory(c *gin.Context) {
	id, ok := idParam(c, "id", "category")
	if !ok {
		return
	}
	category, err := h.taxonomyService.GetCategory(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

func (h *TaxonomyHandler) RenameCategory(c *gin.Context) {
	id, ok := idParam(c, "id", "category")
	if !ok {
		return
	}
	var req types.NameRequest
	if !bindJSON(c, &req) {
		return
	}
	category, err := h.taxonomyService.RenameCategory(c.Request.Context(), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

func (h *TaxonomyHandler) DeleteCategory(c *gin.Context) {
	id, ok := idParam(c, "id", "category")
	if !ok {
		return
	}
	if err := h.taxonomyService.DeleteCategory(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *TaxonomyHandler) ListMeasurementUnits(c *gin.Context) {
	units, err := h.taxonomyService.ListMeasurementUnits(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"measurements": units})
}

func (h *TaxonomyHandler) CreateMeasurementUnit(c *gin.Context) {
	var req types.MeasureRequest
	if !bindJSON(c, &req) {
		return
	}
	unit, err := h.taxonomyService.CreateMeasurementUnit(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, unit)
}

func (h *TaxonomyHandler) GetMeasurementUnit(c *gin.Context) {
	id, ok := idParam(c, "id", "measurement unit")
	if !ok {
		return
	}
	unit, err := h.taxonomyService.GetMeasurementUnit(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, unit)
}

func (h *TaxonomyHandler) RenameMeasurementUnit(c *gin.Context) {
	id, ok := idParam(c, "id", "measurement unit")
	if !ok {
		return
	}
	var req types.MeasureRequest
	if !bindJSON(c, &req) {
		return
	}
	unit, err := h.taxonomyService.RenameMeasurementUnit(c.Request.Context(), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, unit)
}

func (h *TaxonomyHandler) DeleteMeasurementUnit(c *gin.Context) {
	id, ok := idParam(c, "id", "measurement unit")
	if !ok {
		return
	}
	if err := h.taxonomyService.DeleteMeasurementUnit(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
