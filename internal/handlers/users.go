package handlers

import (
	"github.com/courease/courease-backend/internal/models"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UpdateProfile updates the user's profile information and, when requested,
// their password after re-verifying the current one.
func UpdateProfile(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.Param("id")

		var input struct {
			Name            *string `json:"name"`
			Username        *string `json:"username"`
			Phone           *string `json:"phone"`
			CurrentPassword string  `json:"currentPassword"`
			NewPassword     string  `json:"newPassword"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		var user models.User
		if err := db.First(&user, userId).Error; err != nil {
			c.JSON(404, gin.H{"error": "User not found"})
			return
		}

		// Update fields individually to handle empty strings properly
		if input.Name != nil {
			user.Name = *input.Name
		}
		if input.Username != nil {
			user.Username = *input.Username
		}
		if input.Phone != nil {
			user.Phone = *input.Phone
		}

		if input.NewPassword != "" {
			if input.CurrentPassword == "" {
				c.JSON(400, gin.H{"error": "Current password required"})
				return
			}
			if err := user.CheckPassword(input.CurrentPassword); err != nil {
				c.JSON(401, gin.H{"error": "Current password is incorrect"})
				return
			}

			hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
			if err != nil {
				c.JSON(500, gin.H{"error": "Failed to hash password"})
				return
			}
			user.Password = string(hashedPassword)
		}

		if err := db.Save(&user).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to update profile"})
			return
		}

		c.JSON(200, gin.H{
			"message": "Profile updated successfully",
			"user": gin.H{
				"id":       user.ID,
				"name":     user.Name,
				"username": user.Username,
				"email":    user.Email,
				"phone":    user.Phone,
				"role":     user.Role,
			},
		})
	}
}
