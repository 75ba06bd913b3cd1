package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/kiranakhata/retail_backend/utils"
)

// bindError reports a request-body binding failure. Validator failures
// come back as a field to tag map so clients can point at the offending
// inputs instead of parsing a joined message.
func bindError(c *gin.Context, err error) {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "validation failed",
			"fields": utils.ProcessValidationErrors(fieldErrs),
		})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// abortWithError maps an error's kind onto an HTTP status. Persistence
// failures surface as a generic 500 so storage details never leak.
func abortWithError(c *gin.Context, err error) {
	switch utils.KindOf(err) {
	case utils.ErrorKindValidation:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case utils.ErrorKindNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case utils.ErrorKindInsufficientStock:
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "kind": "INSUFFICIENT_STOCK"})
	case utils.ErrorKindStateConflict:
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "kind": "STATE_CONFLICT"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
