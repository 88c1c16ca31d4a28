package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Staff is one employee on a company's roster. StaffNumber is the business
// key bulk uploads match on; DepartedOn marks staff excluded from aggregate
// reports by rendering collaborators.
type Staff struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	CompanyID snowflake.ID `json:"company_id" gorm:"column:company_id;not null;index;uniqueIndex:uq_staff_company_number"`

	FirstName   string  `json:"first_name" gorm:"column:first_name;type:text;not null"`
	LastName    string  `json:"last_name" gorm:"column:last_name;type:text;not null"`
	StaffNumber string  `json:"staff_number" gorm:"column:staff_number;type:text;not null;uniqueIndex:uq_staff_company_number"`
	JobTitle    *string `json:"job_title,omitempty" gorm:"column:job_title;type:text"`
	Department  *string `json:"department,omitempty" gorm:"type:text"`

	ContactEmail string  `json:"contact_email" gorm:"column:contact_email;type:text;not null"`
	ContactPhone *string `json:"contact_phone,omitempty" gorm:"column:contact_phone;type:text"`

	PINNumber        *string `json:"pin_number,omitempty" gorm:"column:pin_number;type:text"`
	NSSFNumber       *string `json:"nssf_number,omitempty" gorm:"column:nssf_number;type:text"`
	SHIFNumber       *string `json:"shif_number,omitempty" gorm:"column:shif_number;type:text"`
	NITANumber       *string `json:"nita_number,omitempty" gorm:"column:nita_number;type:text"`
	NationalIDNumber *string `json:"national_id_number,omitempty" gorm:"column:national_id_number;type:text"`

	DateOfBirth *time.Time `json:"date_of_birth,omitempty" gorm:"column:date_of_birth"`
	IsActive    bool       `json:"is_active" gorm:"column:is_active;not null;default:true"`
	JoinedOn    *time.Time `json:"joined_on,omitempty" gorm:"column:joined_on"`
	DepartedOn  *time.Time `json:"departed_on,omitempty" gorm:"column:departed_on"`

	BankAccountNumber *string `json:"bank_account_number,omitempty" gorm:"column:bank_account_number;type:text"`
	BankName          *string `json:"bank_name,omitempty" gorm:"column:bank_name;type:text"`
	BankSwiftCode     *string `json:"bank_swift_code,omitempty" gorm:"column:bank_swift_code;type:text"`
	BankBranch        *string `json:"bank_branch,omitempty" gorm:"column:bank_branch;type:text"`

	CreatedAt time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Staff) TableName() string { return "staff" }

func (s Staff) FullName() string {
	return s.FirstName + " " + s.LastName
}
