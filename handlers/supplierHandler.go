package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kiranakhata/retail_backend/models"
	"github.com/kiranakhata/retail_backend/workflow"
)

func CreateSupplier(c *gin.Context) {
	var input models.NewSupplier
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}
	supplier, err := models.CreateSupplier(c.Request.Context(), &input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, supplier)
}

func UpdateSupplier(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid supplier id"})
		return
	}
	var input models.NewSupplier
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}
	supplier, err := models.UpdateSupplier(c.Request.Context(), id, &input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, supplier)
}

func GetSuppliers(c *gin.Context) {
	var name *string
	if v := c.Query("name"); v != "" {
		name = &v
	}
	suppliers, err := models.GetSuppliers(c.Request.Context(), name)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, suppliers)
}

func GetSupplier(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid supplier id"})
		return
	}
	supplier, err := models.GetSupplier(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, supplier)
}

func GetSupplierBalances(c *gin.Context) {
	suppliers, err := models.GetSupplierBalances(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, suppliers)
}

func GetSupplierLedger(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid supplier id"})
		return
	}
	filter := models.SupplierLedgerFilter{}
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
		entryType := models.SupplierTransactionType(v)
		filter.Type = &entryType
	}
	if v := c.Query("limit"); v != "" {
		filter.Limit, _ = strconv.Atoi(v)
	}
	ledger, err := models.GetSupplierLedger(c.Request.Context(), id, filter)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, ledger)
}

func RecordSupplierPayment(c *gin.Context) {
	var input workflow.NewSupplierPayment
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}
	entry, err := workflow.RecordSupplierPayment(c.Request.Context(), &input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}
