package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/go-gin-order-api/internal/domains/catalog/domain"
	"github.com/Apurer/go-gin-order-api/internal/domains/catalog/ports"
	"github.com/Apurer/go-gin-order-api/internal/platform/unitofwork"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists products in PostgreSQL using GORM.
// Calls join the transaction carried by ctx, if any.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Schema is owned by the migrations package.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ProductRecord maps the product aggregate to the products table.
type ProductRecord struct {
	ID        int64           `gorm:"primaryKey;column:id"`
	Name      string          `gorm:"column:name;size:255"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(14,2)"`
	Stock     int64           `gorm:"column:stock"`
	CreatedAt time.Time       `gorm:"column:created_at"`
	UpdatedAt time.Time       `gorm:"column:updated_at"`
}

func (ProductRecord) TableName() string { return "products" }

// Save inserts a new product or overwrites an existing one.
func (r *Repository) Save(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if product == nil {
		return nil, errors.New("product is nil")
	}
	record := toRecord(product)
	db := unitofwork.DB(ctx, r.db)
	if record.ID == 0 {
		if err := db.Omit("id").Create(&record).Error; err != nil {
			return nil, err
		}
		return record.toDomain(), nil
	}
	if err := db.
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"name":       record.Name,
				"unit_price": record.UnitPrice,
				"stock":      record.Stock,
				"updated_at": gorm.Expr("NOW()"),
			}),
		}).Create(&record).Error; err != nil {
		return nil, err
	}
	return r.GetByID(ctx, record.ID)
}

// GetByID fetches a product by identifier.
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	return r.first(unitofwork.DB(ctx, r.db), id)
}

// GetForUpdate fetches a product with a row lock held until the surrounding transaction ends.
func (r *Repository) GetForUpdate(ctx context.Context, id int64) (*domain.Product, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	return r.first(unitofwork.DB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *Repository) first(db *gorm.DB, id int64) (*domain.Product, error) {
	var record ProductRecord
	if err := db.First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// FindByIDs loads the subset of ids that exist.
func (r *Repository) FindByIDs(ctx context.Context, ids []int64) (map[int64]*domain.Product, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	found := make(map[int64]*domain.Product, len(ids))
	if len(ids) == 0 {
		return found, nil
	}
	var records []ProductRecord
	if err := unitofwork.DB(ctx, r.db).Where("id IN ?", ids).Find(&records).Error; err != nil {
		return nil, err
	}
	for i := range records {
		found[records[i].ID] = records[i].toDomain()
	}
	return found, nil
}

// Delete removes a product. Referencing order details block the delete at the FK.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	result := unitofwork.DB(ctx, r.db).Delete(&ProductRecord{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

// List returns all products ordered by id.
func (r *Repository) List(ctx context.Context) ([]*domain.Product, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []ProductRecord
	if err := unitofwork.DB(ctx, r.db).Order("id").Find(&records).Error; err != nil {
		return nil, err
	}
	products := make([]*domain.Product, 0, len(records))
	for i := range records {
		products = append(products, records[i].toDomain())
	}
	return products, nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres product repository not configured")
	}
	return nil
}

func toRecord(product *domain.Product) ProductRecord {
	return ProductRecord{
		ID:        product.ID,
		Name:      product.Name,
		UnitPrice: product.UnitPrice,
		Stock:     product.Stock,
	}
}

func (r ProductRecord) toDomain() *domain.Product {
	return domain.NewProduct(r.ID, r.Name, r.UnitPrice, r.Stock)
}
