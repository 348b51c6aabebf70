package models

import "time"

// PaymentType - Ödeme/tahsilat tipi
type PaymentType string

const (
	PaymentTypeAccountAdjustment PaymentType = "account_adjustment" // hesap üzerinden kapama
	PaymentTypeAdvanceAdjustment PaymentType = "advance_adjustment" // sadece avans bakiyesi
	PaymentTypeCash              PaymentType = "cash"
	PaymentTypeCard              PaymentType = "card"
	PaymentTypeBankTransfer      PaymentType = "bank_transfer"
	PaymentTypeCheck             PaymentType = "check"
	PaymentTypeCredit            PaymentType = "credit"
)

// PaymentEvent - Uygulanan bir ödeme/tahsilatın değişmez kaydı.
// Kaydedildikten sonra güncellenmez; düzeltme yeni bir kayıtla yapılır.
type PaymentEvent struct {
	ID          uint        `gorm:"primaryKey"`
	PartyID     uint        `gorm:"index;not null"`
	Party       Party       `gorm:"foreignKey:PartyID"`
	Amount      float64     `gorm:"not null"` // Ödeme tutarı (her zaman pozitif)
	PaymentType PaymentType `gorm:"type:varchar(30);not null;index"`
	AccountID   *uint       `gorm:"index"` // advance_adjustment ve credit için null
	Account     *Account    `gorm:"foreignKey:AccountID"`
	Reference   string      `gorm:"size:36;uniqueIndex;not null"` // uuid
	Notes       string      `gorm:"size:500"`
	// Parçalı ödemede kapatılan işlemler (seçim sırasıyla, JSON dizi)
	SettledTransactionIDs string `gorm:"type:jsonb"`
	CreatedAt             time.Time
}
