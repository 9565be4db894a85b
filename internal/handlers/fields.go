package handlers

import (
	"log"

	"github.com/courease/courease-backend/internal/models"
	"github.com/courease/courease-backend/internal/services"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GetFields lists all bookable fields, served from the Redis cache when warm
func GetFields(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		if cached, err := services.CachedFields(ctx); err == nil && cached != nil {
			c.JSON(200, cached)
			return
		}

		var fields []models.Field
		if err := db.Find(&fields).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch fields"})
			return
		}

		if err := services.CacheFields(ctx, fields); err != nil {
			log.Printf("Failed to cache fields: %v", err)
		}

		c.JSON(200, fields)
	}
}

type FieldInput struct {
	Name         string  `json:"name" binding:"required"`
	Type         string  `json:"type"`
	PricePerHour float64 `json:"price_per_hour" binding:"required,gt=0"`
	Description  string  `json:"description"`
}

// CreateField adds a new bookable field (admin only)
func CreateField(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input FieldInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		field := models.Field{
			Name:         input.Name,
			Type:         input.Type,
			PricePerHour: input.PricePerHour,
			Description:  input.Description,
		}

		if err := db.Create(&field).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to create field"})
			return
		}

		if err := services.InvalidateFieldCache(c.Request.Context()); err != nil {
			log.Printf("Failed to invalidate field cache: %v", err)
		}

		c.JSON(201, field)
	}
}

// UpdateField updates a field's catalog data (admin only)
func UpdateField(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input FieldInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		var field models.Field
		if err := db.First(&field, c.Param("id")).Error; err != nil {
			c.JSON(404, gin.H{"error": "Field not found"})
			return
		}

		field.Name = input.Name
		field.Type = input.Type
		field.PricePerHour = input.PricePerHour
		field.Description = input.Description

		if err := db.Save(&field).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to update field"})
			return
		}

		if err := services.InvalidateFieldCache(c.Request.Context()); err != nil {
			log.Printf("Failed to invalidate field cache: %v", err)
		}

		c.JSON(200, field)
	}
}

// UploadFieldImage stores a field photo and saves its public URL (admin only)
func UploadFieldImage(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var field models.Field
		if err := db.First(&field, c.Param("id")).Error; err != nil {
			c.JSON(404, gin.H{"error": "Field not found"})
			return
		}

		file, err := c.FormFile("image")
		if err != nil {
			c.JSON(400, gin.H{"error": "Image file required"})
			return
		}

		path, err := services.UploadImage(file, "fields")
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to upload image: " + err.Error()})
			return
		}

		imageURL := services.GetImageURL(path)
		if err := db.Model(&field).Update("image_url", imageURL).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to save image URL"})
			return
		}

		if err := services.InvalidateFieldCache(c.Request.Context()); err != nil {
			log.Printf("Failed to invalidate field cache: %v", err)
		}

		c.JSON(200, gin.H{"image_url": imageURL})
	}
}
