package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/talentfolio/server/internal/helpers"
	"github.com/talentfolio/server/internal/models"
	"github.com/talentfolio/server/internal/services"
)

// requireOwner aborts unless the authenticated user is editing their own
// profile. Reads are open to any authenticated user.
func requireOwner(c *gin.Context) bool {
	claimsVal, exists := c.Get("user")
	if !exists {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse("unauthorized"))
		return false
	}
	claims, ok := claimsVal.(*helpers.Claims)
	if !ok {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse("invalid user claims"))
		return false
	}
	if !claims.IsOwner(c.Param("id")) {
		c.JSON(http.StatusForbidden, models.ErrorResponse("access denied"))
		return false
	}
	return true
}

func UpdateProfile(p *services.ProfileService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireOwner(c) {
			return
		}

		var body map[string]any
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		profile, err := p.UpdateScalars(c.Request.Context(), c.Param("id"), body)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(profile, "Profile updated"))
	}
}

func UpdateProfileArrays(p *services.ProfileService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireOwner(c) {
			return
		}

		var req services.ArrayUpdate
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		profile, err := p.UpdateArrays(c.Request.Context(), c.Param("id"), req)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(profile, "Profile updated"))
	}
}

type itemAdder func(p *services.ProfileService, c *gin.Context, body map[string]any) (*models.PublicProfile, error)

func addItemHandler(p *services.ProfileService, add itemAdder) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireOwner(c) {
			return
		}

		var body map[string]any
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		profile, err := add(p, c, body)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(profile, ""))
	}
}

func AddExperience(p *services.ProfileService) gin.HandlerFunc {
	return addItemHandler(p, func(p *services.ProfileService, c *gin.Context, body map[string]any) (*models.PublicProfile, error) {
		return p.AddExperience(c.Request.Context(), c.Param("id"), body)
	})
}

func AddEducation(p *services.ProfileService) gin.HandlerFunc {
	return addItemHandler(p, func(p *services.ProfileService, c *gin.Context, body map[string]any) (*models.PublicProfile, error) {
		return p.AddEducation(c.Request.Context(), c.Param("id"), body)
	})
}

func UpdateExperience(p *services.ProfileService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireOwner(c) {
			return
		}

		var body map[string]any
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		profile, err := p.UpdateExperience(c.Request.Context(), c.Param("id"), c.Param("itemId"), body)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(profile, ""))
	}
}

func UpdateEducation(p *services.ProfileService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireOwner(c) {
			return
		}

		var body map[string]any
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		profile, err := p.UpdateEducation(c.Request.Context(), c.Param("id"), c.Param("itemId"), body)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(profile, ""))
	}
}

func DeleteExperience(p *services.ProfileService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireOwner(c) {
			return
		}
		profile, err := p.DeleteExperience(c.Request.Context(), c.Param("id"), c.Param("itemId"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(profile, ""))
	}
}

func DeleteEducation(p *services.ProfileService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireOwner(c) {
			return
		}
		profile, err := p.DeleteEducation(c.Request.Context(), c.Param("id"), c.Param("itemId"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(profile, ""))
	}
}

func UploadProfilePhoto(p *services.ProfileService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireOwner(c) {
			return
		}

		fileHeader, err := c.FormFile("image")
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("no file uploaded"))
			return
		}
		if fileHeader.Size > helpers.MaxAvatarBytes {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("file exceeds the 5MB limit"))
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("failed to read file"))
			return
		}
		defer file.Close()

		buf, err := io.ReadAll(io.LimitReader(file, helpers.MaxAvatarBytes+1))
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("failed to read file"))
			return
		}

		profile, err := p.UploadAvatar(c.Request.Context(), c.Param("id"), buf, fileHeader.Header.Get("Content-Type"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(profile, "Avatar updated"))
	}
}

func ProfileOptions(p *services.ProfileService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, p.Options())
	}
}
