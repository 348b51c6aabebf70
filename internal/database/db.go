package database

import (
	"log"

	"defter-backend/internal/config"
	"defter-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error

	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("Veritabanına bağlanılamadı: %v", err)
	}

	err = DB.AutoMigrate(
		&models.Account{},
		&models.AccountMovement{},
		&models.Party{},
		&models.Transaction{},
		&models.TransactionItem{},
		&models.PaymentEvent{},
		&models.Employee{},
		&models.AttendanceRecord{},
		&models.AuditLog{},
	)
	if err != nil {
		log.Fatalf("AutoMigrate hatası: %v", err)
	}

	log.Println("Veritabanı bağlantısı başarılı. Migration tamamlandı.")
}
