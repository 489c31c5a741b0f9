package handlers

import (
	"net/http"

	"socialshop/internal/services"
	"socialshop/internal/utils"

	"github.com/gin-gonic/gin"
)

type ProductHandler struct {
	products *services.ProductService
}

func NewProductHandler(products *services.ProductService) *ProductHandler {
	return &ProductHandler{products: products}
}

// List - GET /api/products?page=&category=&featured=
func (h *ProductHandler) List(c *gin.Context) {
	result, err := h.products.List(c.Request.Context(), services.ProductQuery{
		Page:     utils.ParsePage(c.Query("page")),
		Category: c.Query("category"),
		Featured: utils.ParseOptionalBool(c.Query("featured")),
	})
	if err != nil {
		fail(c, "GET_PRODUCTS", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Fetched all products successfully!",
		"size":     result.Size,
		"products": result.Products,
	})
}

// Get - GET /api/products/:id
func (h *ProductHandler) Get(c *gin.Context) {
	product, err := h.products.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, "GET_PRODUCT", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Fetched product successfully!", "data": product})
}
