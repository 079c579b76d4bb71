package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User is the storefront customer. RetailCRMID is set once the customer has
// been mirrored into the CRM.
type User struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	FirstName   string     `gorm:"column:first_name"`
	LastName    *string    `gorm:"column:last_name"`
	Phone       *string    `gorm:"column:phone"`
	Email       *string    `gorm:"column:email;uniqueIndex"`
	BirthDate   *time.Time `gorm:"column:birth_date;type:date"`
	RetailCRMID *int64     `gorm:"column:retailcrm_id"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// FullName joins the non-empty name parts.
func (u *User) FullName() string {
	parts := make([]string, 0, 2)
	if u.FirstName != "" {
		parts = append(parts, u.FirstName)
	}
	if u.LastName != nil && *u.LastName != "" {
		parts = append(parts, *u.LastName)
	}
	return strings.Join(parts, " ")
}
