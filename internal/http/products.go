package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ProductsController exposes read access to the imported catalog.
type ProductsController struct {
	reader ProductReader
}

func NewProductsController(reader ProductReader) *ProductsController {
	return &ProductsController{reader: reader}
}

// GetAll lists products, newest first, with limit/offset pagination.
func (controller *ProductsController) GetAll(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if offset < 0 {
		offset = 0
	}

	products, total, err := controller.reader.GetAll(limit, offset)
	if err != nil {
		respondInternalError(c, err, "list products")
		return
	}

	c.IndentedJSON(http.StatusOK, PaginatedResponse{
		Data:    products,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: int64(offset+len(products)) < total,
	})
}

// GetByID returns one product with its category.
func (controller *ProductsController) GetByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	product, err := controller.reader.GetByID(id)
	if err != nil {
		respondNotFound(c, "product")
		return
	}

	c.IndentedJSON(http.StatusOK, product)
}
