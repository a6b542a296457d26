package catalog

import (
	"time"

	"github.com/google/uuid"
)

// Pharmacy is a seller in the marketplace. Every medicine belongs to exactly
// one pharmacy and every order is routed to exactly one pharmacy.
type Pharmacy struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	Address       string    `json:"address,omitempty"`
	LicenseNumber string    `json:"license_number,omitempty"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Medicine is a catalog entry sold by one pharmacy. Prices are integer cents.
type Medicine struct {
	ID              uuid.UUID `json:"id"`
	PharmacyID      uuid.UUID `json:"pharmacy_id"`
	PharmacyName    string    `json:"pharmacy_name,omitempty"` // resolved via join, not stored
	Name            string    `json:"name"`
	GenericName     string    `json:"generic_name,omitempty"`
	Category        string    `json:"category,omitempty"`
	UnitPriceCents  int64     `json:"unit_price_cents"`
	Stock           int       `json:"stock"`
	RequiresLicense bool      `json:"requires_license"`
	Description     string    `json:"description,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
