package menu

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/pizzaro/pizzaro-backend/pkg/db"
	"github.com/pizzaro/pizzaro-backend/pkg/db/models"
	pkgerrors "github.com/pizzaro/pizzaro-backend/pkg/errors"
	"github.com/pizzaro/pizzaro-backend/pkg/types"
)

const defaultPosition = 999

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes menu catalog operations for the storefront and admin panel.
type Service interface {
	ListSections(ctx context.Context) ([]models.MenuSection, error)
	GetSection(ctx context.Context, id int64) (*models.MenuSection, error)
	CreateSection(ctx context.Context, input SectionInput) (*models.MenuSection, error)
	UpdateSection(ctx context.Context, id int64, input SectionInput) (*models.MenuSection, error)
	DeleteSection(ctx context.Context, id int64) error

	ListProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
	CreateProduct(ctx context.Context, input ProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, id int64, input ProductInput) (*models.Product, error)
	DeleteProduct(ctx context.Context, id int64) error

	BatchSave(ctx context.Context, input BatchInput) (*BatchResult, error)
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService builds a menu service backed by the provided repository.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("menu repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

// SectionInput carries the editable fields of a menu section.
type SectionInput struct {
	Name     string
	Slug     string
	Schema   types.SectionSchema
	Position *int
}

// VariantInput is one size/price variant with its price as a decimal string.
type VariantInput struct {
	Name   string
	Weight string
	Kcal   string
	Price  string
}

// ProductInput carries the editable fields of a product. Inside a batch save,
// SectionTempID may reference a section created earlier in the same batch.
type ProductInput struct {
	SectionID     int64
	SectionTempID string
	Name          string
	Description   string
	ImageURL      string
	Position      *int
	Variants      []VariantInput
}

func (s *service) ListSections(ctx context.Context) ([]models.MenuSection, error) {
	sections, err := s.repo.ListSections(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list menu sections")
	}
	return sections, nil
}

func (s *service) GetSection(ctx context.Context, id int64) (*models.MenuSection, error) {
	section, err := s.repo.FindSectionByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "menu section not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load menu section")
	}
	return section, nil
}

func (s *service) CreateSection(ctx context.Context, input SectionInput) (*models.MenuSection, error) {
	section, err := buildSection(input)
	if err != nil {
		return nil, err
	}
	created, err := s.repo.CreateSection(ctx, section)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "section slug already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create menu section")
	}
	return created, nil
}

func (s *service) UpdateSection(ctx context.Context, id int64, input SectionInput) (*models.MenuSection, error) {
	section, err := buildSection(input)
	if err != nil {
		return nil, err
	}

	existing, err := s.GetSection(ctx, id)
	if err != nil {
		return nil, err
	}
	section.ID = existing.ID
	if input.Position == nil {
		section.Position = existing.Position
	}

	updated, err := s.repo.UpdateSection(ctx, section)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "section slug already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update menu section")
	}
	return updated, nil
}

func (s *service) DeleteSection(ctx context.Context, id int64) error {
	if err := s.repo.DeleteSection(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "menu section not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete menu section")
	}
	return nil
}

func (s *service) ListProducts(ctx context.Context) ([]models.Product, error) {
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return products, nil
}

func (s *service) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	product, err := s.repo.FindProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

func (s *service) CreateProduct(ctx context.Context, input ProductInput) (*models.Product, error) {
	if input.SectionID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "section id is required")
	}
	product, err := buildProduct(input, input.SectionID)
	if err != nil {
		return nil, err
	}
	created, err := s.repo.CreateProduct(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return created, nil
}

func (s *service) UpdateProduct(ctx context.Context, id int64, input ProductInput) (*models.Product, error) {
	existing, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	sectionID := input.SectionID
	if sectionID <= 0 {
		sectionID = existing.SectionID
	}
	product, err := buildProduct(input, sectionID)
	if err != nil {
		return nil, err
	}
	product.ID = existing.ID
	if input.Position == nil {
		product.Position = existing.Position
	}

	updated, err := s.repo.UpdateProduct(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	return updated, nil
}

func (s *service) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	return nil
}

func buildSection(input SectionInput) (*models.MenuSection, error) {
	name := strings.TrimSpace(input.Name)
	slug := strings.TrimSpace(input.Slug)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "section name is required")
	}
	if slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "section slug is required")
	}

	position := defaultPosition
	if input.Position != nil {
		position = *input.Position
	}

	schema := input.Schema
	if schema.Options == nil {
		schema.Options = []types.SectionOption{}
	}

	return &models.MenuSection{
		Name:     name,
		Slug:     slug,
		Schema:   schema,
		Position: position,
	}, nil
}

func buildProduct(input ProductInput, sectionID int64) (*models.Product, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}

	variants := make(types.ProductVariants, 0, len(input.Variants))
	for _, v := range input.Variants {
		if strings.TrimSpace(v.Name) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "variant name is required")
		}
		priceCents, err := ParsePriceCents(v.Price)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid variant price")
		}
		variants = append(variants, types.ProductVariant{
			Name:       strings.TrimSpace(v.Name),
			Weight:     strings.TrimSpace(v.Weight),
			Kcal:       strings.TrimSpace(v.Kcal),
			PriceCents: priceCents,
		})
	}
	if len(variants) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product needs at least one variant")
	}

	position := defaultPosition
	if input.Position != nil {
		position = *input.Position
	}

	return &models.Product{
		SectionID:   sectionID,
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		ImageURL:    strings.TrimSpace(input.ImageURL),
		Position:    position,
		Variants:    variants,
	}, nil
}
