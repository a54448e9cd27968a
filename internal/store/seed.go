package store

import (
	"github.com/jubairbh/storefront/internal/hash"
	"github.com/jubairbh/storefront/internal/models"
)

// The canonical seed set. Inserted at most once per fresh storage
// location; the counts here are what EnsureReady guarantees afterwards.

const (
	SeedAdminEmail    = "admin@jubairboothouse.com"
	SeedAdminPassword = "admin123"
)

func SeedProducts() []models.Product {
	return []models.Product{
		{Name: "Oxford Classic", Description: "Full-grain leather oxford for formal wear", Price: 2499, Stock: 25, Category: "formal"},
		{Name: "Derby Brogue", Description: "Perforated derby with stitched toe cap", Price: 2199, Stock: 30, Category: "formal"},
		{Name: "Canvas Low-Top", Description: "Everyday canvas sneaker", Price: 899, Stock: 60, Category: "casual"},
		{Name: "Suede Loafer", Description: "Slip-on suede loafer with cushioned sole", Price: 1599, Stock: 40, Category: "casual"},
		{Name: "Trail Runner", Description: "Grippy outsole for mixed terrain", Price: 1899, Stock: 35, Category: "sports"},
		{Name: "Court Trainer", Description: "Lightweight trainer for indoor courts", Price: 1699, Stock: 45, Category: "sports"},
		{Name: "Chelsea Boot", Description: "Elastic-panel ankle boot in brown leather", Price: 2799, Stock: 20, Category: "boots"},
		{Name: "Leather Sandal", Description: "Open-toe sandal with adjustable straps", Price: 699, Stock: 50, Category: "sandals"},
	}
}

func SeedAdmin() (*models.User, error) {
	passwordHash, err := hash.HashPassword(SeedAdminPassword)
	if err != nil {
		return nil, err
	}
	return &models.User{
		Email:        SeedAdminEmail,
		PasswordHash: passwordHash,
		Role:         models.RoleAdmin,
	}, nil
}

// SeedProductCount is exported for health reporting and tests.
func SeedProductCount() int {
	return len(SeedProducts())
}
