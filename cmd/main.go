package main

import (
	"log"
	"os"
	"time"

	"github.com/maintech/api/internal/auth"
	"github.com/maintech/api/internal/config"
	"github.com/maintech/api/internal/database"
	"github.com/maintech/api/internal/mailer"
	"github.com/maintech/api/internal/models"
	"github.com/maintech/api/internal/role"
	"github.com/maintech/api/internal/server"
	"github.com/maintech/api/internal/utils"
)

func main() {
	cfg := config.Load()

	if err := utils.ValidateJWTSecret(); err != nil {
		log.Fatal("❌ JWT Configuration Error: ", err)
	}
	log.Println("✅ JWT secret validated")

	requiredEnvVars := map[string]string{
		"DB_HOST":     os.Getenv("DB_HOST"),
		"DB_NAME":     os.Getenv("DB_NAME"),
		"DB_USER":     os.Getenv("DB_USER"),
		"DB_PASSWORD": os.Getenv("DB_PASSWORD"),
	}
	for key, value := range requiredEnvVars {
		if value == "" {
			log.Fatalf("❌ Required environment variable %s is not set", key)
		}
	}

	// ========== DATABASE SETUP ==========
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal("❌ Database connection failed:", err)
	}
	database.DB = db

	if err := database.Migrate(db); err != nil {
		log.Fatal("❌ Migration failed: ", err)
	}
	log.Println("✅ Database migrated successfully")

	if err := role.SeedDefaultRoles(); err != nil {
		log.Fatal("❌ Failed to seed roles: ", err)
	}
	log.Println("✅ Default roles seeded")

	// ========== STORAGE SETUP ==========
	if err := utils.InitLocalStorage(); err != nil {
		log.Fatal("❌ Failed to initialize local storage:", err)
	}

	if os.Getenv("USE_S3") == "true" {
		s3Bucket := os.Getenv("S3_BUCKET")
		s3Region := os.Getenv("S3_REGION")

		if s3Bucket != "" && s3Region != "" {
			if err := utils.InitS3(s3Bucket, s3Region); err != nil {
				log.Println("⚠️  S3 initialization failed, falling back to local storage:", err)
				utils.SetStorageMode(true)
			} else {
				log.Printf("☁️  Using S3: %s (region: %s)", s3Bucket, s3Region)
			}
		} else {
			log.Println("⚠️  USE_S3=true but S3_BUCKET or S3_REGION not configured")
		}
	}
	log.Printf("💾 Storage mode: %s", utils.GetStorageMode())

	// ========== MAIL ==========
	auth.Mail = mailer.New(cfg)
	if cfg.SMTPHost == "" {
		log.Println("⚠️  SMTP not configured, approval and reset emails will be skipped")
	}

	// ========== BACKGROUND SWEEP ==========
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		for range ticker.C {
			result := database.DB.Where("expires_at < ?", time.Now()).Delete(&models.ResetToken{})
			if result.RowsAffected > 0 {
				log.Printf("🧹 Cleaned up %d expired reset tokens", result.RowsAffected)
			}

			result = database.DB.Where("expires_at < ?", time.Now()).Delete(&models.RefreshSession{})
			if result.RowsAffected > 0 {
				log.Printf("🧹 Cleaned up %d expired refresh sessions", result.RowsAffected)
			}
		}
	}()

	// ========== START SERVER ==========
	app := server.New(db)

	log.Printf("🚀 MainTech API starting on %s", cfg.ServerAddr)
	if err := app.Listen(cfg.ServerAddr); err != nil {
		log.Fatal("❌ Failed to start server:", err)
	}
}
