package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExpenseMode is how an expense was paid. Card is deliberately absent:
// school expenses go out as cash or UPI only.
type ExpenseMode string

const (
	ExpenseModeCash ExpenseMode = "Cash"
	ExpenseModeUPI  ExpenseMode = "UPI"
)

func (m ExpenseMode) Valid() bool {
	return m == ExpenseModeCash || m == ExpenseModeUPI
}

// Predefined expense subjects. Subject stays free text in the schema so
// operators can extend the list without a migration.
const (
	SubjectStaffSalary       = "Staff Salary"
	SubjectLandRent          = "Land Rent"
	SubjectHouseLoan         = "House Loan"
	SubjectCarLoan           = "Car Loan"
	SubjectSchoolMaintenance = "School Maintenance"
	SubjectHouseExpense      = "House Expense"
)

type Expense struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Amount      decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"amount"`
	Mode        ExpenseMode     `gorm:"size:10;not null" json:"mode"`
	Date        time.Time       `gorm:"index;not null" json:"date"`
	Description string          `gorm:"size:255" json:"description"`
	Subject     string          `gorm:"size:100;not null;index" json:"subject"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
