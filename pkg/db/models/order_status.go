package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus is the status vocabulary orders move through. RetailCode maps
// the status to its counterpart in the CRM so status pulls can resolve it.
type OrderStatus struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code       string    `gorm:"column:code;not null;uniqueIndex"`
	Title      string    `gorm:"column:title;not null"`
	RetailCode *string   `gorm:"column:retail_code;uniqueIndex"`
	IsDefault  bool      `gorm:"column:is_default;not null;default:false"`
	IsStop     bool      `gorm:"column:is_stop;not null;default:false"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}

// OrderStatusLog is the append-only audit trail of status changes. A log row
// is written for every change including the initial status; rows are never
// updated or deleted.
type OrderStatusLog struct {
	ID          uuid.UUID    `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID     uuid.UUID    `gorm:"column:order_id;type:uuid;not null;index"`
	StatusID    uuid.UUID    `gorm:"column:status_id;type:uuid;not null"`
	Status      *OrderStatus `gorm:"foreignKey:StatusID"`
	Comment     *string      `gorm:"column:comment"`
	SendEmail   bool         `gorm:"column:send_email;not null;default:true"`
	IsEmailSent bool         `gorm:"column:is_email_sent;not null;default:false"`
	CreatedAt   time.Time    `gorm:"column:created_at;autoCreateTime"`
}
