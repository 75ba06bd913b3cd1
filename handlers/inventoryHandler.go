package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kiranakhata/retail_backend/models"
	"github.com/kiranakhata/retail_backend/workflow"
	"github.com/shopspring/decimal"
)

func CreateProduct(c *gin.Context) {
	var input workflow.NewProductWithStock
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}
	product, purchase, err := workflow.CreateProductWithStock(c.Request.Context(), &input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"product": product, "purchase": purchase})
}

func UpdateProduct(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}
	var input models.NewProduct
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}
	product, err := models.UpdateProduct(c.Request.Context(), id, &input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func GetProducts(c *gin.Context) {
	var name, category *string
	if v := c.Query("name"); v != "" {
		name = &v
	}
	if v := c.Query("category"); v != "" {
		category = &v
	}
	products, err := models.GetProducts(c.Request.Context(), name, category)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func GetProduct(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}
	product, err := models.GetProduct(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func AddBatch(c *gin.Context) {
	var input models.NewBatch
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}
	batch, err := models.AddBatch(c.Request.Context(), &input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, batch)
}

func GetBatches(c *gin.Context) {
	productId, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}
	batches, err := models.GetBatches(c.Request.Context(), productId)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, batches)
}

type quickAdjustInput struct {
	Delta decimal.Decimal `json:"delta" binding:"required"`
}

func QuickAdjustStock(c *gin.Context) {
	productId, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}
	var input quickAdjustInput
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}
	batch, err := workflow.QuickAdjust(c.Request.Context(), productId, input.Delta)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, batch)
}

type adjustStockInput struct {
	Delta   decimal.Decimal     `json:"delta" binding:"required"`
	Channel models.StockChannel `json:"channel"`
}

func AdjustBatchStock(c *gin.Context) {
	batchId, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid batch id"})
		return
	}
	var input adjustStockInput
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}
	if input.Channel == "" {
		input.Channel = models.StockChannelOffline
	}
	batch, err := workflow.AdjustStock(c.Request.Context(), batchId, input.Delta, input.Channel)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, batch)
}

func GetAlerts(c *gin.Context) {
	alerts, err := workflow.GetAlerts(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, alerts)
}
