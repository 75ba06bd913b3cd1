package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kiranakhata/retail_backend/models"
	"github.com/kiranakhata/retail_backend/workflow"
)

func RecordSale(c *gin.Context) {
	var input workflow.NewSale
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}
	sale, err := workflow.RecordSale(c.Request.Context(), &input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sale)
}

func GetSales(c *gin.Context) {
	filter := models.SaleFilter{}
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
	if v := c.Query("status"); v != "" {
		status := models.SaleStatus(v)
		filter.Status = &status
	}
	if v := c.Query("limit"); v != "" {
		filter.Limit, _ = strconv.Atoi(v)
	}
	sales, err := models.GetSales(c.Request.Context(), filter)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, sales)
}

func GetSale(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid sale id"})
		return
	}
	sale, err := models.GetSale(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, sale)
}
