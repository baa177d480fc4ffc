package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mwarren02/storefront-api/internal/models"
)

func (h *Handlers) CreateProduct(c *gin.Context) {
	var input models.ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.respondBindingError(c, err)
		return
	}

	product, err := h.Catalog.CreateProduct(c.Request.Context(), input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

// GetAllProducts lists products with pagination, optional category filter
// and sorting: ?page=0&size=20&sort=price&dir=desc&categoryId=3
func (h *Handlers) GetAllProducts(c *gin.Context) {
	params := models.ListProductsParams{
		Page:      queryInt(c, "page", 0),
		Size:      queryInt(c, "size", 20),
		SortField: c.DefaultQuery("sort", "created_at"),
		SortDesc:  c.Query("dir") == "desc",
	}
	if params.Page < 0 {
		params.Page = 0
	}
	if params.Size < 1 || params.Size > 100 {
		params.Size = 20
	}
	if v := c.Query("categoryId"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid categoryId parameter"})
			return
		}
		params.CategoryID = id
	}

	page, err := h.Catalog.ListProducts(c.Request.Context(), params)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *Handlers) GetProduct(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	product, err := h.Catalog.GetProduct(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *Handlers) DeleteProduct(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.Catalog.DeleteProduct(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}
