package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/go-gin-order-api/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-order-api/internal/domains/orders/ports"
	"github.com/Apurer/go-gin-order-api/internal/platform/unitofwork"
)

var (
	_ ports.OrderRepository       = (*OrderRepository)(nil)
	_ ports.OrderDetailRepository = (*OrderDetailRepository)(nil)
)

// orderRecord maps the order header to the orders table.
type orderRecord struct {
	ID          int64               `gorm:"primaryKey;column:id"`
	OrderDate   time.Time           `gorm:"column:order_date;type:date"`
	Status      string              `gorm:"column:status;type:varchar(32);index"`
	OrderNumber string              `gorm:"column:order_number;size:255"`
	Details     []orderDetailRecord `gorm:"foreignKey:OrderID"`
	CreatedAt   time.Time           `gorm:"column:created_at"`
	UpdatedAt   time.Time           `gorm:"column:updated_at"`
}

func (orderRecord) TableName() string { return "orders" }

// orderDetailRecord maps a line item to the order_details table.
type orderDetailRecord struct {
	ID        int64     `gorm:"primaryKey;column:id"`
	OrderID   int64     `gorm:"column:order_id;index"`
	ProductID int64     `gorm:"column:product_id;index"`
	Quantity  int64     `gorm:"column:quantity"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (orderDetailRecord) TableName() string { return "order_details" }

// OrderRepository persists order headers in PostgreSQL using GORM.
type OrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle.
func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Save inserts or updates the order header. Line items are left untouched.
func (r *OrderRepository) Save(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if err := ensureDB(r.db); err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errors.New("order is nil")
	}
	record := toOrderRecord(order)
	db := unitofwork.DB(ctx, r.db).Omit(clause.Associations)
	if record.ID == 0 {
		if err := db.Create(&record).Error; err != nil {
			return nil, err
		}
	} else if err := db.
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"status":       record.Status,
				"order_number": record.OrderNumber,
				"updated_at":   gorm.Expr("NOW()"),
			}),
		}).Create(&record).Error; err != nil {
		return nil, err
	}
	return r.GetByID(ctx, record.ID)
}

// GetByID fetches an order with its line items.
func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	if err := ensureDB(r.db); err != nil {
		return nil, err
	}
	var record orderRecord
	if err := unitofwork.DB(ctx, r.db).Preload("Details", orderByID).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrOrderNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// List returns all orders with their line items.
func (r *OrderRepository) List(ctx context.Context) ([]*domain.Order, error) {
	if err := ensureDB(r.db); err != nil {
		return nil, err
	}
	var records []orderRecord
	if err := unitofwork.DB(ctx, r.db).Preload("Details", orderByID).Order("id").Find(&records).Error; err != nil {
		return nil, err
	}
	orders := make([]*domain.Order, 0, len(records))
	for i := range records {
		orders = append(orders, records[i].toDomain())
	}
	return orders, nil
}

// Delete removes the order and its line items.
func (r *OrderRepository) Delete(ctx context.Context, id int64) error {
	if err := ensureDB(r.db); err != nil {
		return err
	}
	db := unitofwork.DB(ctx, r.db)
	if err := db.Where("order_id = ?", id).Delete(&orderDetailRecord{}).Error; err != nil {
		return err
	}
	result := db.Delete(&orderRecord{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrOrderNotFound
	}
	return nil
}

// OrderDetailRepository persists line items in PostgreSQL using GORM.
type OrderDetailRepository struct {
	db *gorm.DB
}

func NewOrderDetailRepository(db *gorm.DB) *OrderDetailRepository {
	return &OrderDetailRepository{db: db}
}

// Save inserts or re-points a line item.
func (r *OrderDetailRepository) Save(ctx context.Context, detail *domain.OrderDetail) (*domain.OrderDetail, error) {
	if err := ensureDB(r.db); err != nil {
		return nil, err
	}
	if detail == nil {
		return nil, errors.New("order detail is nil")
	}
	record := toDetailRecord(detail)
	db := unitofwork.DB(ctx, r.db)
	if record.ID == 0 {
		if err := db.Create(&record).Error; err != nil {
			return nil, err
		}
		return record.toDomain(), nil
	}
	if err := db.
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"order_id":   record.OrderID,
				"product_id": record.ProductID,
				"quantity":   record.Quantity,
				"updated_at": gorm.Expr("NOW()"),
			}),
		}).Create(&record).Error; err != nil {
		return nil, err
	}
	return r.GetByID(ctx, record.ID)
}

func (r *OrderDetailRepository) GetByID(ctx context.Context, id int64) (*domain.OrderDetail, error) {
	if err := ensureDB(r.db); err != nil {
		return nil, err
	}
	var record orderDetailRecord
	if err := unitofwork.DB(ctx, r.db).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrOrderDetailNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *OrderDetailRepository) List(ctx context.Context) ([]*domain.OrderDetail, error) {
	if err := ensureDB(r.db); err != nil {
		return nil, err
	}
	var records []orderDetailRecord
	if err := unitofwork.DB(ctx, r.db).Order("id").Find(&records).Error; err != nil {
		return nil, err
	}
	details := make([]*domain.OrderDetail, 0, len(records))
	for i := range records {
		details = append(details, records[i].toDomain())
	}
	return details, nil
}

func (r *OrderDetailRepository) Delete(ctx context.Context, id int64) error {
	if err := ensureDB(r.db); err != nil {
		return err
	}
	result := unitofwork.DB(ctx, r.db).Delete(&orderDetailRecord{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrOrderDetailNotFound
	}
	return nil
}

func orderByID(db *gorm.DB) *gorm.DB {
	return db.Order("id")
}

func ensureDB(db *gorm.DB) error {
	if db == nil {
		return errors.New("postgres order repository not configured")
	}
	return nil
}

func toOrderRecord(order *domain.Order) orderRecord {
	return orderRecord{
		ID:          order.ID,
		OrderDate:   order.Date,
		Status:      string(order.Status),
		OrderNumber: order.OrderNumber,
	}
}

func (r orderRecord) toDomain() *domain.Order {
	order := &domain.Order{
		ID:          r.ID,
		Date:        domain.CalendarDate(r.OrderDate),
		Status:      domain.Status(r.Status),
		OrderNumber: r.OrderNumber,
		Details:     make([]*domain.OrderDetail, 0, len(r.Details)),
	}
	for i := range r.Details {
		order.Details = append(order.Details, r.Details[i].toDomain())
	}
	return order
}

func toDetailRecord(detail *domain.OrderDetail) orderDetailRecord {
	return orderDetailRecord{
		ID:        detail.ID,
		OrderID:   detail.OrderID,
		ProductID: detail.ProductID,
		Quantity:  detail.Quantity,
	}
}

func (r orderDetailRecord) toDomain() *domain.OrderDetail {
	return &domain.OrderDetail{
		ID:        r.ID,
		OrderID:   r.OrderID,
		ProductID: r.ProductID,
		Quantity:  r.Quantity,
	}
}
