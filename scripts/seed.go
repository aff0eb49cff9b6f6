//go:build ignore

package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/ntumia/mediahub/internal/auth"
	"github.com/ntumia/mediahub/internal/database"
	"github.com/ntumia/mediahub/internal/database/models"
	"github.com/ntumia/mediahub/pkg/config"
	"github.com/ntumia/mediahub/pkg/util"
)

// Seeds the platform admin account plus a sample active organization with
// published content, so a fresh install has something to browse.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.NewLogger(cfg.Server.Env)

	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	name := os.Getenv("ADMIN_NAME")

	if email == "" {
		email = "admin@mediahub.local"
	}
	if password == "" {
		password = "admin123!"
	}
	if name == "" {
		name = "Platform Admin"
	}

	var existing models.User
	if err := db.Where("email = ?", email).First(&existing).Error; err == nil {
		fmt.Printf("Admin user already exists: %s\n", email)
		return
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	// Platform admins carry no organization.
	admin := models.User{
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Role:         "admin",
		Status:       models.UserStatusActive,
	}
	if err := db.Create(&admin).Error; err != nil {
		log.Fatalf("failed to create admin user: %v", err)
	}

	org := models.MediaOrganization{
		Name:         "Radio Horizon",
		Type:         models.OrgTypeRadio,
		Description:  "Sample outlet seeded for development",
		Status:       models.OrgStatusActive,
		ContactName:  "Ama Mensah",
		ContactEmail: "contact@radiohorizon.example",
		Subscription: models.SubscriptionFree,
		Version:      1,
	}
	if err := db.Create(&org).Error; err != nil {
		log.Fatalf("failed to create sample organization: %v", err)
	}

	editorHash, err := auth.HashPassword("editor123!")
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}
	editor := models.User{
		Email:          "editor@radiohorizon.example",
		PasswordHash:   editorHash,
		Name:           "Sample Editor",
		OrganizationID: &org.ID,
		Role:           "editor",
		Status:         models.UserStatusActive,
	}
	if err := db.Create(&editor).Error; err != nil {
		log.Fatalf("failed to create sample editor: %v", err)
	}

	sample := models.Content{
		OrganizationID: org.ID,
		UploaderID:     editor.ID,
		Title:          "Morning News Bulletin",
		Description:    "Daily news roundup",
		Type:           models.ContentTypeAudio,
		Format:         "mp3",
		FileSize:       24 << 20,
		Duration:       900,
		Language:       "fr",
		License:        models.LicenseFree,
		Status:         models.ContentStatusPublished,
		Tags:           []string{"news", "morning"},
		ObjectKey:      "radio-horizon/morning-news.mp3",
		Version:        1,
	}
	if err := db.Create(&sample).Error; err != nil {
		log.Fatalf("failed to create sample content: %v", err)
	}

	fmt.Printf("Seed complete!\n")
	fmt.Printf("Admin: %s / %s\n", email, password)
	fmt.Printf("Editor: %s / editor123!\n", editor.Email)
}
