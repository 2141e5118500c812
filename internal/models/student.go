package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ClassLevel is the fixed set of grade levels the school enrolls.
type ClassLevel string

const (
	ClassNursery ClassLevel = "Nursery"
	ClassKG      ClassLevel = "KG"
	ClassPP3     ClassLevel = "PP3"
	Class1st     ClassLevel = "1st"
	Class2nd     ClassLevel = "2nd"
	Class3rd     ClassLevel = "3rd"
	Class4th     ClassLevel = "4th"
	Class5th     ClassLevel = "5th"
	Class6th     ClassLevel = "6th"
	Class7th     ClassLevel = "7th"
	Class8th     ClassLevel = "8th"
)

// ClassLevels in canonical promotion order. Report rows follow this order.
var ClassLevels = []ClassLevel{
	ClassNursery, ClassKG, ClassPP3,
	Class1st, Class2nd, Class3rd, Class4th,
	Class5th, Class6th, Class7th, Class8th,
}

func (c ClassLevel) Valid() bool {
	for _, cl := range ClassLevels {
		if c == cl {
			return true
		}
	}
	return false
}

// PaymentMode is how a fee payment was made.
type PaymentMode string

const (
	PaymentModeCash PaymentMode = "Cash"
	PaymentModeUPI  PaymentMode = "UPI"
	PaymentModeCard PaymentMode = "Card"
)

func (m PaymentMode) Valid() bool {
	switch m {
	case PaymentModeCash, PaymentModeUPI, PaymentModeCard:
		return true
	}
	return false
}

type Student struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	FullName     string          `gorm:"size:100;not null;index" json:"full_name"`
	Class        ClassLevel      `gorm:"size:20;not null;index" json:"class"`
	ExpectedFee  decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"expected_fee"`
	TotalFeePaid decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"total_fee_paid"`

	Transactions []FeeTransaction `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FeeBalance is always derived from its inputs, never stored on its own.
func (s *Student) FeeBalance() decimal.Decimal {
	return s.ExpectedFee.Sub(s.TotalFeePaid)
}

// FeeTransaction is one recorded fee payment of a student.
//
// FeeRemaining is the student's balance immediately after this transaction
// was applied. It is an audit snapshot: later edits or deletions of other
// transactions do not rewrite it.
type FeeTransaction struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	StudentID uint            `gorm:"index;not null" json:"student_id"`
	ReceiptNo string          `gorm:"size:36;uniqueIndex" json:"receipt_no"`
	Amount    decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"amount"`
	Mode      PaymentMode     `gorm:"size:10;not null" json:"mode"`
	PaidOn    time.Time       `gorm:"index;not null" json:"timestamp"`

	FeeRemaining decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"fee_remaining"`

	// Synthetic marks a correction transaction appended by a direct revision
	// of the student's totals. Its amount may be negative.
	Synthetic bool `gorm:"default:false" json:"synthetic"`

	CreatedAt time.Time `json:"created_at"`
}
