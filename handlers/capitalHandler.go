package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kiranakhata/retail_backend/models"
)

func AddCapitalTransaction(c *gin.Context) {
	var input models.NewCapitalTransaction
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}
	record, err := models.AddCapitalTransaction(c.Request.Context(), &input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

func GetCapitalTransactions(c *gin.Context) {
	filter := models.CapitalFilter{}
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
	if v := c.Query("type"); v != "" {
		entryType := models.CapitalTransactionType(v)
		filter.Type = &entryType
	}
	if v := c.Query("category"); v != "" {
		category := models.CapitalCategory(v)
		filter.Category = &category
	}
	if v := c.Query("limit"); v != "" {
		filter.Limit, _ = strconv.Atoi(v)
	}
	records, err := models.GetCapitalTransactions(c.Request.Context(), filter)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

func GetCapitalSummary(c *gin.Context) {
	summary, err := models.GetCapitalSummary(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
