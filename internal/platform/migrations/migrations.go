package migrations

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Run applies the schema for the catalog and orders contexts.
// Order details cascade with their order and block deletion of referenced products.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(
		&productRecord{},
		&orderRecord{},
		&orderDetailRecord{},
		&idempotencyRecord{},
	)
}

// Product schema mirrors the catalog Postgres adapter.
type productRecord struct {
	ID        int64           `gorm:"primaryKey;column:id"`
	Name      string          `gorm:"column:name;size:255"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(14,2);not null;default:0"`
	Stock     int64           `gorm:"column:stock;not null;default:0"`
	CreatedAt time.Time       `gorm:"column:created_at"`
	UpdatedAt time.Time       `gorm:"column:updated_at"`
}

func (productRecord) TableName() string { return "products" }

// Order schema mirrors the orders Postgres adapter.
type orderRecord struct {
	ID          int64               `gorm:"primaryKey;column:id"`
	OrderDate   time.Time           `gorm:"column:order_date;type:date;not null"`
	Status      string              `gorm:"column:status;type:varchar(32);not null;index"`
	OrderNumber string              `gorm:"column:order_number;size:255"`
	Details     []orderDetailRecord `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time           `gorm:"column:created_at;index"`
	UpdatedAt   time.Time           `gorm:"column:updated_at"`
}

func (orderRecord) TableName() string { return "orders" }

// Order detail schema mirrors the orders Postgres adapter.
type orderDetailRecord struct {
	ID        int64          `gorm:"primaryKey;column:id"`
	OrderID   int64          `gorm:"column:order_id;not null;index"`
	ProductID int64          `gorm:"column:product_id;not null;index"`
	Product   *productRecord `gorm:"foreignKey:ProductID;constraint:OnDelete:RESTRICT"`
	Quantity  int64          `gorm:"column:quantity;not null"`
	CreatedAt time.Time      `gorm:"column:created_at"`
	UpdatedAt time.Time      `gorm:"column:updated_at"`
}

func (orderDetailRecord) TableName() string { return "order_details" }

// Idempotency schema mirrors the orders idempotency store.
type idempotencyRecord struct {
	Key         string    `gorm:"primaryKey;column:key;size:255"`
	RequestHash string    `gorm:"column:request_hash;size:128;not null"`
	OrderID     int64     `gorm:"column:order_id;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;index"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (idempotencyRecord) TableName() string { return "order_idempotency_keys" }
