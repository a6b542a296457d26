package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/rxcart/rxcart/internal/domain/cart"
	"github.com/rxcart/rxcart/internal/platform/cache"
)

// ErrNotFound is returned when a pharmacy or medicine does not exist.
var ErrNotFound = errors.New("not found")

const lookupTTL = 5 * time.Minute

type Service struct {
	pharmacies PharmacyRepository
	medicines  MedicineRepository
	cache      cache.Cache // nil when caching is disabled
	logger     zerolog.Logger
}

func NewService(pharmacies PharmacyRepository, medicines MedicineRepository, c cache.Cache, logger zerolog.Logger) *Service {
	return &Service{
		pharmacies: pharmacies,
		medicines:  medicines,
		cache:      c,
		logger:     logger,
	}
}

// -- Pharmacy --

var validPharmacyStatuses = map[string]bool{
	"active": true, "suspended": true,
}

func (s *Service) CreatePharmacy(ctx context.Context, p *Pharmacy) error {
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}
	if p.Status == "" {
		p.Status = "active"
	}
	if !validPharmacyStatuses[p.Status] {
		return fmt.Errorf("invalid status: %s", p.Status)
	}
	return s.pharmacies.Create(ctx, p)
}

func (s *Service) GetPharmacy(ctx context.Context, id uuid.UUID) (*Pharmacy, error) {
	p, err := s.pharmacies.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

func (s *Service) UpdatePharmacy(ctx context.Context, p *Pharmacy) error {
	if p.Status != "" && !validPharmacyStatuses[p.Status] {
		return fmt.Errorf("invalid status: %s", p.Status)
	}
	return s.pharmacies.Update(ctx, p)
}

func (s *Service) DeletePharmacy(ctx context.Context, id uuid.UUID) error {
	return s.pharmacies.Delete(ctx, id)
}

func (s *Service) ListPharmacies(ctx context.Context, limit, offset int) ([]*Pharmacy, int, error) {
	return s.pharmacies.List(ctx, limit, offset)
}

// -- Medicine --

func (s *Service) CreateMedicine(ctx context.Context, m *Medicine) error {
	if m.Name == "" {
		return fmt.Errorf("name is required")
	}
	if m.PharmacyID == uuid.Nil {
		return fmt.Errorf("pharmacy_id is required")
	}
	if m.UnitPriceCents < 0 {
		return fmt.Errorf("unit_price_cents must not be negative")
	}
	if _, err := s.GetPharmacy(ctx, m.PharmacyID); err != nil {
		return fmt.Errorf("pharmacy %s: %w", m.PharmacyID, err)
	}
	return s.medicines.Create(ctx, m)
}

func (s *Service) GetMedicine(ctx context.Context, id uuid.UUID) (*Medicine, error) {
	m, err := s.medicines.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return m, err
}

func (s *Service) UpdateMedicine(ctx context.Context, m *Medicine) error {
	if m.UnitPriceCents < 0 {
		return fmt.Errorf("unit_price_cents must not be negative")
	}
	if err := s.medicines.Update(ctx, m); err != nil {
		return err
	}
	s.invalidateLookup(ctx, m.ID)
	return nil
}

func (s *Service) DeleteMedicine(ctx context.Context, id uuid.UUID) error {
	if err := s.medicines.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateLookup(ctx, id)
	return nil
}

func (s *Service) SearchMedicines(ctx context.Context, params map[string]string, limit, offset int) ([]*Medicine, int, error) {
	return s.medicines.Search(ctx, params, limit, offset)
}

// -- Lookup --

// Lookup resolves the cart snapshot for a medicine, reading through the cache
// when one is configured. Cache failures degrade to a direct read.
func (s *Service) Lookup(ctx context.Context, medicineID uuid.UUID) (*cart.CatalogItem, error) {
	var key string
	if s.cache != nil {
		key = s.cache.GenerateKey("lookup", medicineID.String())
		if cached, err := s.cache.Get(ctx, key); err == nil && cached != "" {
			var item cart.CatalogItem
			if err := json.Unmarshal([]byte(cached), &item); err == nil {
				return &item, nil
			}
		}
	}

	m, err := s.GetMedicine(ctx, medicineID)
	if err != nil {
		return nil, err
	}

	item := &cart.CatalogItem{
		MedicineID:      m.ID,
		Name:            m.Name,
		UnitPriceCents:  m.UnitPriceCents,
		PharmacyID:      m.PharmacyID,
		PharmacyName:    m.PharmacyName,
		RequiresLicense: m.RequiresLicense,
	}

	if s.cache != nil {
		if data, err := json.Marshal(item); err == nil {
			if err := s.cache.Set(ctx, key, string(data), lookupTTL); err != nil {
				s.logger.Warn().Err(err).Str("medicine_id", medicineID.String()).Msg("lookup cache write failed")
			}
		}
	}

	return item, nil
}

func (s *Service) invalidateLookup(ctx context.Context, medicineID uuid.UUID) {
	if s.cache == nil {
		return
	}
	key := s.cache.GenerateKey("lookup", medicineID.String())
	if err := s.cache.Delete(ctx, key); err != nil {
		s.logger.Warn().Err(err).Str("medicine_id", medicineID.String()).Msg("lookup cache invalidation failed")
	}
}
