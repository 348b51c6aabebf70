package models

import "time"

type AccountType string

const (
	AccountTypeCash   AccountType = "cash"   // kasa
	AccountTypeBank   AccountType = "bank"   // banka hesabı
	AccountTypeMobile AccountType = "mobile" // mobil cüzdan
)

// Account: Tahsilat/ödeme hesabı (kasa, banka, mobil)
type Account struct {
	ID             uint        `gorm:"primaryKey"`
	Type           AccountType `gorm:"size:20;not null"` // cash / bank / mobile
	Name           string      `gorm:"size:100;not null"` // hesap adı (örn: "Ana Kasa", "Ziraat Bankası")
	AccountNumber  string      `gorm:"size:50"`   // hesap numarası (opsiyonel)
	CurrentBalance float64     `gorm:"default:0"` // bakiye (işaretli)
	Description    string      `gorm:"size:255"`  // açıklama
	IsActive       bool        `gorm:"default:true"` // aktif mi?
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type MovementType string

const (
	MovementTypeDeposit  MovementType = "deposit"  // para yatırma
	MovementTypeWithdraw MovementType = "withdraw" // para çekme
)

// AccountMovement: Hesaba yapılan manuel giriş/çıkış işlemleri
type AccountMovement struct {
	ID          uint         `gorm:"primaryKey"`
	AccountID   uint         `gorm:"index;not null"`
	Account     Account      `gorm:"foreignKey:AccountID"`
	Type        MovementType `gorm:"size:20;not null"` // deposit / withdraw
	Amount      float64      `gorm:"not null"`         // işlem tutarı
	Date        time.Time    `gorm:"index;not null"`   // işlem tarihi
	Description string       `gorm:"size:255"`         // açıklama
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
