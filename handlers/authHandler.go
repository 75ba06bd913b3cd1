package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kiranakhata/retail_backend/models"
)

func Register(c *gin.Context) {
	var input models.NewUser
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}
	user, err := models.CreateUser(c.Request.Context(), &input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

type loginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func Login(c *gin.Context) {
	var input loginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}
	info, err := models.Login(c.Request.Context(), input.Username, input.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, info)
}

func Logout(c *gin.Context) {
	ok, err := models.Logout(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": ok})
}

func Me(c *gin.Context) {
	user, err := models.GetCurrentUser(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
