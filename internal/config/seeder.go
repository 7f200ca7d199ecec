package config

import (
	"log"
	"time"

	"libralend/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// SeedDevData seeds a small catalog and member set for development.
// Idempotent: does nothing when the authors table already has rows.
func SeedDevData(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Author{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	authors := []models.Author{
		{Name: "Ursula K. Le Guin", Email: "ursula@example.com", Biography: "American author of speculative fiction"},
		{Name: "Jorge Luis Borges", Email: "borges@example.com", Biography: "Argentine short-story writer and essayist"},
		{Name: "Octavia E. Butler", Email: "octavia@example.com", Biography: "American science fiction author"},
	}
	if err := db.Create(&authors).Error; err != nil {
		return err
	}

	books := []models.Book{
		{
			Title:           "The Dispossessed",
			Category:        "Science Fiction",
			PublishingYear:  1974,
			ISBN:            "9780061054884",
			TotalCopies:     3,
			AvailableCopies: 3,
			AuthorID:        authors[0].ID,
		},
		{
			Title:           "Ficciones",
			Category:        "Short Stories",
			PublishingYear:  1944,
			ISBN:            "9780802130303",
			TotalCopies:     2,
			AvailableCopies: 2,
			AuthorID:        authors[1].ID,
		},
		{
			Title:           "Kindred",
			Category:        "Science Fiction",
			PublishingYear:  1979,
			ISBN:            "9780807083697",
			TotalCopies:     1,
			AvailableCopies: 1,
			AuthorID:        authors[2].ID,
		},
	}
	if err := db.Create(&books).Error; err != nil {
		return err
	}

	members := []models.Member{
		{
			Name:             "Alice Tan",
			Email:            "alice@example.com",
			MembershipDate:   time.Now().AddDate(-1, 0, 0),
			MembershipStatus: models.MemberStatusActive,
		},
		{
			Name:             "Bo Nilsson",
			Email:            "bo@example.com",
			MembershipDate:   time.Now().AddDate(0, -6, 0),
			MembershipStatus: models.MemberStatusActive,
		},
		{
			Name:             "Chidi Okafor",
			Email:            "chidi@example.com",
			MembershipDate:   time.Now().AddDate(-2, 0, 0),
			MembershipStatus: models.MemberStatusSuspended,
		},
	}
	if err := db.Create(&members).Error; err != nil {
		return err
	}

	log.Println("✅ Development data seeded successfully")
	return nil
}
