package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrProductNotFound = errors.New("product not found")

// Filter acota el listado de productos. Campos vacíos no filtran.
type Filter struct {
	Category     string
	Name         string
	MinRating    float64
	SellersEmail string
}

// Repository define el contrato de persistencia del catálogo.
type Repository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f Filter) ([]Product, error)
}

// GormRepository implementa Repository sobre gorm.
type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) Create(ctx context.Context, p *Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

func (r *GormRepository) GetByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	var p Product
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &p, nil
}

func (r *GormRepository) Update(ctx context.Context, p *Product) error {
	tx := r.db.WithContext(ctx).Model(&Product{}).Where("id = ?", p.ID).Updates(p)
	if tx.Error != nil {
		return fmt.Errorf("failed to update product: %w", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *GormRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx := r.db.WithContext(ctx).Where("id = ?", id).Delete(&Product{})
	if tx.Error != nil {
		return fmt.Errorf("failed to delete product: %w", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *GormRepository) List(ctx context.Context, f Filter) ([]Product, error) {
	q := r.db.WithContext(ctx).Model(&Product{})
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Name != "" {
		q = q.Where("name ILIKE ?", "%"+f.Name+"%")
	}
	if f.MinRating > 0 {
		q = q.Where("rating >= ?", f.MinRating)
	}
	if f.SellersEmail != "" {
		q = q.Where("sellers_email = ?", f.SellersEmail)
	}

	var products []Product
	if err := q.Order("created_at DESC").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}
