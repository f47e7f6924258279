package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/talentfolio/server/internal/apperror"
	"github.com/talentfolio/server/internal/config"
	"github.com/talentfolio/server/internal/models"
	"github.com/talentfolio/server/internal/services"
)

// writeError maps a service error onto its HTTP status.
func writeError(c *gin.Context, err error) {
	appErr := apperror.From(err)
	if appErr.Kind == apperror.Storage || appErr.Kind == apperror.Unknown {
		// surface details through the logging middleware, not the client
		_ = c.Error(err)
	}
	c.JSON(appErr.StatusCode(), models.ErrorResponse(appErr.Message))
}

func Register(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Username string `json:"username" binding:"required"`
			Email    string `json:"email" binding:"required,email"`
			Password string `json:"password" binding:"required,min=8"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		profile, err := u.Register(c.Request.Context(), req.Username, req.Email, req.Password)
		if err != nil {
			writeError(c, err)
			return
		}

		c.JSON(http.StatusCreated, models.SuccessResponse(profile, "User registered successfully"))
	}
}

func Login(u *services.UserService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Username string `json:"username" binding:"required"`
			Password string `json:"password" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		token, profile, err := u.Login(c.Request.Context(), req.Username, req.Password)
		if err != nil {
			writeError(c, err)
			return
		}

		// cookie lifetime tracks the token so neither outlives the other
		c.SetCookie(
			"access_token",
			token,
			int(cfg.TokenTTL.Seconds()),
			"/",
			"", // let Gin pick current domain
			cfg.IsProduction(),
			true,
		)

		c.JSON(http.StatusOK, gin.H{
			"message": "Login successful",
			"token":   token,
			"user":    profile,
		})
	}
}
