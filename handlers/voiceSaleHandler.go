package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kiranakhata/retail_backend/models"
	"github.com/kiranakhata/retail_backend/voice"
	"github.com/kiranakhata/retail_backend/workflow"
)

// VoiceSaleHandler carries the matcher so the parse endpoint can swap in
// a different implementation without touching routing.
type VoiceSaleHandler struct {
	Matcher voice.Matcher
}

func NewVoiceSaleHandler(matcher voice.Matcher) *VoiceSaleHandler {
	return &VoiceSaleHandler{Matcher: matcher}
}

type parseVoiceSaleInput struct {
	VoiceText string `json:"voice_text" binding:"required"`
}

func (h *VoiceSaleHandler) ParseVoiceSale(c *gin.Context) {
	var input parseVoiceSaleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}
	voiceSale, err := workflow.ParseAndQueueVoiceSale(c.Request.Context(), h.Matcher, input.VoiceText)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, voiceSale)
}

func (h *VoiceSaleHandler) GetPendingVoiceSales(c *gin.Context) {
	voiceSales, err := models.GetPendingVoiceSales(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, voiceSales)
}

func (h *VoiceSaleHandler) GetVoiceSales(c *gin.Context) {
	filter := models.VoiceSaleFilter{}
	if v := c.Query("status"); v != "" {
		status := models.VoiceSaleStatus(v)
		filter.Status = &status
	}
	if v := c.Query("limit"); v != "" {
		filter.Limit, _ = strconv.Atoi(v)
	}
	voiceSales, err := models.GetVoiceSales(c.Request.Context(), filter)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, voiceSales)
}

type confirmVoiceSaleInput struct {
	ConfirmedItems []workflow.ConfirmedItem `json:"confirmed_items"`
}

func (h *VoiceSaleHandler) ConfirmVoiceSale(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid voice sale id"})
		return
	}
	var input confirmVoiceSaleInput
	if err := c.ShouldBindJSON(&input); err != nil && err.Error() != "EOF" {
		bindError(c, err)
		return
	}
	result, err := workflow.ConfirmVoiceSale(c.Request.Context(), id, input.ConfirmedItems)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *VoiceSaleHandler) RejectVoiceSale(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid voice sale id"})
		return
	}
	voiceSale, err := workflow.RejectVoiceSale(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, voiceSale)
}

type updateVoiceSaleItemsInput struct {
	Items []models.VoiceSaleItem `json:"items" binding:"required"`
}

func (h *VoiceSaleHandler) UpdateVoiceSaleItems(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid voice sale id"})
		return
	}
	var input updateVoiceSaleItemsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}
	voiceSale, err := workflow.UpdateVoiceSaleItems(c.Request.Context(), id, input.Items)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, voiceSale)
}
