package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Company is the payroll-owning legal entity. Statutory registration numbers
// travel with the company for report rendering collaborators.
type Company struct {
	ID snowflake.ID `json:"id" gorm:"primaryKey"`

	Name        string  `json:"name" gorm:"type:text;not null"`
	LegalName   string  `json:"legal_name" gorm:"column:legal_name;type:text;not null"`
	Description *string `json:"description,omitempty" gorm:"type:text"`

	PINNumber  *string `json:"pin_number,omitempty" gorm:"column:pin_number;type:text"`
	NSSFNumber *string `json:"nssf_number,omitempty" gorm:"column:nssf_number;type:text"`
	SHIFNumber *string `json:"shif_number,omitempty" gorm:"column:shif_number;type:text"`
	NITANumber *string `json:"nita_number,omitempty" gorm:"column:nita_number;type:text"`

	ContactEmail *string `json:"contact_email,omitempty" gorm:"column:contact_email;type:text"`
	ContactPhone *string `json:"contact_phone,omitempty" gorm:"column:contact_phone;type:text"`
	Address      *string `json:"address,omitempty" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Company) TableName() string { return "companies" }
