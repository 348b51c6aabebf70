package models

import "time"

// TransactionKind - İşlem türü
type TransactionKind string

const (
	TransactionKindSale     TransactionKind = "sale"     // Satış (müşteri)
	TransactionKindPurchase TransactionKind = "purchase" // Alım (tedarikçi)
)

// PaymentMethod - Ödeme yöntemi etiketi
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodCard         PaymentMethod = "card"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodCheck        PaymentMethod = "check"
	PaymentMethodCredit       PaymentMethod = "credit" // Veresiye
)

// Transaction - Satış veya alım işlemi
type Transaction struct {
	ID            uint              `gorm:"primaryKey"`
	PartyID       uint              `gorm:"index;not null"`
	Party         Party             `gorm:"foreignKey:PartyID"`
	Kind          TransactionKind   `gorm:"type:varchar(20);not null;index"` // "sale" veya "purchase"
	GrandTotal    float64           `gorm:"not null"` // Toplam tutar (negatif olamaz)
	PaidAmount    float64           `gorm:"default:0"` // Ödenen tutar
	Date          time.Time         `gorm:"index;not null"` // İşlem tarihi
	PaymentMethod PaymentMethod     `gorm:"size:20"` // cash / card / bank_transfer / check / credit
	Notes         string            `gorm:"size:500"`
	Items         []TransactionItem `gorm:"foreignKey:TransactionID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TransactionItem - İşlem kalemi (detay; iş mantığı yok)
type TransactionItem struct {
	ID            uint    `gorm:"primaryKey"`
	TransactionID uint    `gorm:"index;not null"`
	Name          string  `gorm:"size:200;not null"`
	Quantity      float64 `gorm:"not null"`
	UnitPrice     float64 `gorm:"not null"`
	LineTotal     float64 `gorm:"not null"` // quantity * unit_price
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
