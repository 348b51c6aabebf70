package models

import "time"

// PartyKind - Cari türü. Şekilden (alan var/yok) çıkarım YAPMA, her zaman bu alan kullanılır.
type PartyKind string

const (
	PartyKindCustomer PartyKind = "customer" // Müşteri
	PartyKindSupplier PartyKind = "supplier" // Tedarikçi
)

// Party - Cari hesap (müşteri veya tedarikçi)
type Party struct {
	ID               uint      `gorm:"primaryKey"`
	Kind             PartyKind `gorm:"type:varchar(20);not null;index"` // "customer" veya "supplier"
	Name             string    `gorm:"size:200;not null"`
	Phone            string    `gorm:"size:50"`  // Opsiyonel telefon
	Email            string    `gorm:"size:100"` // Opsiyonel e-posta
	Address          string    `gorm:"size:255"` // Opsiyonel adres
	AdvanceAmount    float64   `gorm:"default:0"` // Avans bakiyesi (işaretli; pozitif = alacak, negatif = borç)
	DefaultAccountID *uint     `gorm:"index"`     // Varsayılan tahsilat/ödeme hesabı
	DefaultAccount   *Account  `gorm:"foreignKey:DefaultAccountID"`
	Transactions     []Transaction `gorm:"foreignKey:PartyID"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
