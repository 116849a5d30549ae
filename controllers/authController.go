package controllers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"rhombick-backend/middlewares"
	"rhombick-backend/models"
	"rhombick-backend/utils"
)

type RegisterInput struct {
	FirstName       string `json:"firstName" validate:"required"`
	LastName        string `json:"lastName" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthController issues bearer tokens. Routes are only registered when auth is enabled.
type AuthController struct {
	db     *gorm.DB
	secret []byte
	ttl    time.Duration
}

func NewAuthController(db *gorm.DB, secret []byte, ttl time.Duration) *AuthController {
	return &AuthController{db: db, secret: secret, ttl: ttl}
}

func (h *AuthController) Register(c *fiber.Ctx) error {
	var in RegisterInput
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	db := h.db.WithContext(c.UserContext())

	var count int64
	if err := db.Model(&models.User{}).Where("LOWER(email) = ?", strings.ToLower(in.Email)).Count(&count).Error; err != nil {
		return models.ErrStorageUnavailable
	}
	if count > 0 {
		return fiber.NewError(fiber.StatusConflict, "email already exists")
	}

	user := models.User{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     strings.ToLower(in.Email),
	}
	if err := user.SetPassword(in.Password); err != nil {
		return err
	}
	if err := db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fiber.NewError(fiber.StatusConflict, "email already exists")
		}
		return models.ErrStorageUnavailable
	}
	return utils.Respond(c, fiber.StatusCreated, user, "user registered")
}

func (h *AuthController) Login(c *fiber.Ctx) error {
	var in LoginInput
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}

	var user models.User
	err := h.db.WithContext(c.UserContext()).Where("email = ?", strings.ToLower(in.Email)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
		}
		return models.ErrStorageUnavailable
	}
	if err := user.ComparePassword(in.Password); err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
	}

	token, err := middlewares.GenerateJWT(h.secret, user.Id, h.ttl)
	if err != nil {
		return err
	}
	return utils.Respond(c, fiber.StatusOK, fiber.Map{
		"token": token,
		"user": fiber.Map{
			"id":    user.Id,
			"name":  user.FirstName + " " + user.LastName,
			"email": user.Email,
		},
	}, "")
}

// Logout clears the legacy cookie; bearer tokens simply expire.
func (h *AuthController) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     "jwt",
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
	})
	return utils.Respond(c, fiber.StatusOK, nil, "success")
}
