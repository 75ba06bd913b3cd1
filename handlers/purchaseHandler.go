package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kiranakhata/retail_backend/models"
	"github.com/kiranakhata/retail_backend/workflow"
)

func RecordPurchase(c *gin.Context) {
	var input workflow.NewPurchase
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}
	purchase, err := workflow.RecordPurchase(c.Request.Context(), &input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, purchase)
}

func GetPurchases(c *gin.Context) {
	filter := models.PurchaseFilter{}
	if v := c.Query("start_date"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.StartDate = &t
		}
	}
	if v := c.Query("end_date"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.EndDate = &t
		}
	}
	if v := c.Query("supplier_id"); v != "" {
		if id, err := strconv.Atoi(v); err == nil {
			filter.SupplierId = &id
		}
	}
	if v := c.Query("limit"); v != "" {
		filter.Limit, _ = strconv.Atoi(v)
	}
	purchases, err := models.GetPurchases(c.Request.Context(), filter)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, purchases)
}

func GetPurchase(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid purchase id"})
		return
	}
	purchase, err := models.GetPurchase(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, purchase)
}
