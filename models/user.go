package models

import (
	"context"
	"errors"
	"html"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kiranakhata/retail_backend/config"
	"github.com/kiranakhata/retail_backend/utils"
	"golang.org/x/crypto/bcrypt"
)

type User struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Username  string    `gorm:"size:100;not null;unique" json:"username" binding:"required"`
	Name      string    `gorm:"size:100;not null" json:"name" binding:"required"`
	Phone     string    `gorm:"size:20" json:"phone"`
	Password  string    `gorm:"size:255;not null" json:"password"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewUser struct {
	Username string `json:"username" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Phone    string `json:"phone"`
	Password string `json:"password" binding:"required"`
}

type LoginInfo struct {
	Token string `json:"token"`
	Name  string `json:"name"`
}

func (result *User) PrepareGive() {
	result.Password = ""
}

func CreateUser(ctx context.Context, input *NewUser) (*User, error) {

	db := config.GetDB()
	var count int64

	err := db.WithContext(ctx).Model(&User{}).Where("username = ?", input.Username).Count(&count).Error
	if err != nil {
		return &User{}, err
	}
	if count > 0 {
		return &User{}, errors.New("duplicate username")
	}

	if input.Phone != "" {
		if err := utils.ValidatePhoneNumber(input.Phone, utils.CountryCode); err != nil {
			return &User{}, errors.New("invalid phone number")
		}
	}

	hashedPassword, err := utils.HashPassword(input.Password)
	if err != nil {
		return &User{}, err
	}

	user := User{
		Username: html.EscapeString(strings.TrimSpace(input.Username)),
		Name:     input.Name,
		Phone:    input.Phone,
		Password: string(hashedPassword),
	}

	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		return &User{}, err
	}
	user.PrepareGive()
	return &user, nil
}

func Login(ctx context.Context, username string, password string) (*LoginInfo, error) {

	db := config.GetDB()
	var result LoginInfo

	user := User{}
	err := db.WithContext(ctx).Model(&User{}).Where("username = ?", username).Take(&user).Error
	if err != nil {
		return &result, errors.New("invalid username or password")
	}

	// check login credentials
	err = utils.ComparePassword(user.Password, password)
	if err != nil && err == bcrypt.ErrMismatchedHashAndPassword {
		return &result, errors.New("invalid username or password")
	}

	token, err := utils.JwtGenerate(user.ID, user.Username)
	if err != nil {
		return &result, err
	}
	result.Token = token
	result.Name = user.Name

	// store token in redis so logout can revoke it before expiry
	tokenLifespan, err := strconv.Atoi(os.Getenv("TOKEN_HOUR_LIFESPAN"))
	if err != nil {
		tokenLifespan = 24
	}
	if err := config.SetRedisValue("Token:"+token, strconv.Itoa(user.ID), time.Duration(tokenLifespan)*time.Hour); err != nil {
		return &result, err
	}

	return &result, nil
}

// destroy current session
func Logout(ctx context.Context) (bool, error) {
	token, ok := utils.GetTokenFromContext(ctx)
	if !ok || token == "" {
		return false, errors.New("token is required")
	}
	if err := config.RemoveRedisKey("Token:" + token); err != nil {
		return false, err
	}
	return true, nil
}

func GetCurrentUser(ctx context.Context) (*User, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, utils.NewValidationError("user id is required")
	}

	var user User
	db := config.GetDB()
	if err := db.WithContext(ctx).Where("id = ?", userId).Take(&user).Error; err != nil {
		return nil, utils.NewNotFoundError("user not found")
	}
	user.PrepareGive()
	return &user, nil
}
