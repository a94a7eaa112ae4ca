package services

import (
	"context"

	"icarus-bknd/internal/apperrors"
	"icarus-bknd/internal/models"

	"github.com/uptrace/bun"
)

// CatalogService lists the reference data profiles point at.
type CatalogService struct {
	db *bun.DB
}

func NewCatalogService(db *bun.DB) *CatalogService {
	return &CatalogService{db: db}
}

func (s *CatalogService) Specialties(ctx context.Context) ([]models.Specialty, error) {
	out := []models.Specialty{}
	if err := s.db.NewSelect().Model(&out).OrderExpr("sp.name ASC").Scan(ctx); err != nil {
		return nil, apperrors.StoreUnavailable("could not load specialties", err)
	}
	return out, nil
}

func (s *CatalogService) Languages(ctx context.Context) ([]models.Language, error) {
	out := []models.Language{}
	if err := s.db.NewSelect().Model(&out).OrderExpr("lang.name ASC").Scan(ctx); err != nil {
		return nil, apperrors.StoreUnavailable("could not load languages", err)
	}
	return out, nil
}

func (s *CatalogService) Designations(ctx context.Context) ([]models.Designation, error) {
	out := []models.Designation{}
	if err := s.db.NewSelect().Model(&out).OrderExpr("des.name ASC").Scan(ctx); err != nil {
		return nil, apperrors.StoreUnavailable("could not load designations", err)
	}
	return out, nil
}
