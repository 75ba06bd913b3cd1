package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kiranakhata/retail_backend/models"
	"github.com/kiranakhata/retail_backend/workflow"
)

func RecordCashEntry(c *gin.Context) {
	var input workflow.NewCashEntry
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}
	entry, err := workflow.RecordManualCashEntry(c.Request.Context(), &input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func GetCashFlow(c *gin.Context) {
	filter := models.CashFlowFilter{}
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
		entryType := models.TransactionType(v)
		filter.Type = &entryType
	}
	if v := c.Query("limit"); v != "" {
		filter.Limit, _ = strconv.Atoi(v)
	}
	flow, err := models.GetCashFlow(c.Request.Context(), filter)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, flow)
}

func GetAccountOverview(c *gin.Context) {
	overview, err := workflow.GetAccountOverview(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}

func RunReconciliation(c *gin.Context) {
	report, err := workflow.RunReconciliationChecks(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
