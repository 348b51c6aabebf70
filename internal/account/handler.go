package account

import (
	"fmt"
	"strings"
	"time"

	"defter-backend/internal/audit"
	"defter-backend/internal/database"
	"defter-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CreateAccountRequest struct {
	Type          models.AccountType `json:"type"` // cash / bank / mobile
	Name          string             `json:"name"`
	AccountNumber string             `json:"account_number"`
	Balance       float64            `json:"balance"` // açılış bakiyesi
	Description   string             `json:"description"`
}

type UpdateAccountRequest struct {
	Name          *string `json:"name"`
	AccountNumber *string `json:"account_number"`
	Description   *string `json:"description"`
	IsActive      *bool   `json:"is_active"`
}

type AccountResponse struct {
	ID             uint               `json:"id"`
	Type           models.AccountType `json:"type"`
	Name           string             `json:"name"`
	AccountNumber  string             `json:"account_number"`
	CurrentBalance float64            `json:"current_balance"`
	Description    string             `json:"description"`
	IsActive       bool               `json:"is_active"`
	CreatedAt      string             `json:"created_at"`
	UpdatedAt      string             `json:"updated_at"`
}

type CreateMovementRequest struct {
	Type        models.MovementType `json:"type"` // deposit / withdraw
	Amount      float64             `json:"amount"`
	Date        string              `json:"date"` // "2025-12-09"
	Description string              `json:"description"`
}

type MovementResponse struct {
	ID          uint                `json:"id"`
	AccountID   uint                `json:"account_id"`
	Type        models.MovementType `json:"type"`
	Amount      float64             `json:"amount"`
	Date        string              `json:"date"`
	Description string              `json:"description"`
	CreatedAt   string              `json:"created_at"`
}

func toAccountResponse(a *models.Account) AccountResponse {
	return AccountResponse{
		ID:             a.ID,
		Type:           a.Type,
		Name:           a.Name,
		AccountNumber:  a.AccountNumber,
		CurrentBalance: a.CurrentBalance,
		Description:    a.Description,
		IsActive:       a.IsActive,
		CreatedAt:      a.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      a.UpdatedAt.Format(time.RFC3339),
	}
}

func validAccountType(t models.AccountType) bool {
	switch t {
	case models.AccountTypeCash, models.AccountTypeBank, models.AccountTypeMobile:
		return true
	}
	return false
}

// POST /api/accounts
func CreateAccountHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateAccountRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if !validAccountType(body.Type) {
			return fiber.NewError(fiber.StatusBadRequest, "type 'cash', 'bank' veya 'mobile' olmalı")
		}
		if strings.TrimSpace(body.Name) == "" {
			return fiber.NewError(fiber.StatusBadRequest, "name zorunlu")
		}

		account := models.Account{
			Type:           body.Type,
			Name:           strings.TrimSpace(body.Name),
			AccountNumber:  strings.TrimSpace(body.AccountNumber),
			CurrentBalance: body.Balance,
			Description:    strings.TrimSpace(body.Description),
			IsActive:       true,
		}

		if err := database.DB.Create(&account).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Hesap kaydedilemedi")
		}

		// Audit log
		if logErr := audit.WriteLog(audit.LogOptions{
			EntityType:  "account",
			EntityID:    account.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Hesap eklendi: %s", account.Name),
			Before:      nil,
			After:       toAccountResponse(&account),
		}); logErr != nil {
			fmt.Printf("Audit log yazılamadı: %v\n", logErr)
		}

		return c.Status(fiber.StatusCreated).JSON(toAccountResponse(&account))
	}
}

// GET /api/accounts?active=true
func ListAccountsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.Account{})
		if c.Query("active") == "true" {
			dbq = dbq.Where("is_active = true")
		}

		var accounts []models.Account
		if err := dbq.Order("name asc").Find(&accounts).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Hesaplar listelenemedi")
		}

		resp := make([]AccountResponse, 0, len(accounts))
		for i := range accounts {
			resp = append(resp, toAccountResponse(&accounts[i]))
		}

		return c.JSON(resp)
	}
}

// PUT /api/accounts/:id
func UpdateAccountHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		var account models.Account
		if err := database.DB.First(&account, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Hesap bulunamadı")
		}

		var body UpdateAccountRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		beforeData := toAccountResponse(&account)
		updated := false

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "name boş olamaz")
			}
			account.Name = name
			updated = true
		}
		if body.AccountNumber != nil {
			account.AccountNumber = strings.TrimSpace(*body.AccountNumber)
			updated = true
		}
		if body.Description != nil {
			account.Description = strings.TrimSpace(*body.Description)
			updated = true
		}
		if body.IsActive != nil {
			account.IsActive = *body.IsActive
			updated = true
		}

		if !updated {
			return c.JSON(toAccountResponse(&account))
		}

		if err := database.DB.Save(&account).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Hesap güncellenemedi")
		}

		// Audit log
		if logErr := audit.WriteLog(audit.LogOptions{
			EntityType:  "account",
			EntityID:    account.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Hesap güncellendi: %s", account.Name),
			Before:      beforeData,
			After:       toAccountResponse(&account),
		}); logErr != nil {
			fmt.Printf("Audit log yazılamadı: %v\n", logErr)
		}

		return c.JSON(toAccountResponse(&account))
	}
}

// DELETE /api/accounts/:id
// Ödeme kaydı veya cari referansı olan hesap silinmez, pasife çekilir.
func DeleteAccountHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		var account models.Account
		if err := database.DB.First(&account, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Hesap bulunamadı")
		}

		var refCount int64
		database.DB.Model(&models.PaymentEvent{}).Where("account_id = ?", account.ID).Count(&refCount)
		var partyRefCount int64
		database.DB.Model(&models.Party{}).Where("default_account_id = ?", account.ID).Count(&partyRefCount)

		beforeData := toAccountResponse(&account)

		if refCount > 0 || partyRefCount > 0 {
			account.IsActive = false
			if err := database.DB.Save(&account).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Hesap pasife çekilemedi")
			}

			if logErr := audit.WriteLog(audit.LogOptions{
				EntityType:  "account",
				EntityID:    account.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Hesap pasife çekildi: %s", account.Name),
				Before:      beforeData,
				After:       toAccountResponse(&account),
			}); logErr != nil {
				fmt.Printf("Audit log yazılamadı: %v\n", logErr)
			}

			return c.JSON(toAccountResponse(&account))
		}

		if err := database.DB.Delete(&account).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Hesap silinemedi")
		}

		if logErr := audit.WriteLog(audit.LogOptions{
			EntityType:  "account",
			EntityID:    account.ID,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("Hesap silindi: %s", account.Name),
			Before:      beforeData,
			After:       nil,
		}); logErr != nil {
			fmt.Printf("Audit log yazılamadı: %v\n", logErr)
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}

// -------------------------
// Hesap hareketleri
// -------------------------

// POST /api/accounts/:id/movements
func CreateMovementHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		var account models.Account
		if err := database.DB.First(&account, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Hesap bulunamadı")
		}
		if !account.IsActive {
			return fiber.NewError(fiber.StatusBadRequest, "Pasif hesaba hareket girilemez")
		}

		var body CreateMovementRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}

		if body.Type != models.MovementTypeDeposit && body.Type != models.MovementTypeWithdraw {
			return fiber.NewError(fiber.StatusBadRequest, "type 'deposit' veya 'withdraw' olmalı")
		}
		if body.Amount <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "amount 0'dan büyük olmalı")
		}

		d, err := time.Parse("2006-01-02", body.Date)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Tarih formatı 'YYYY-MM-DD' olmalı")
		}

		movement := models.AccountMovement{
			AccountID:   account.ID,
			Type:        body.Type,
			Amount:      body.Amount,
			Date:        d,
			Description: strings.TrimSpace(body.Description),
		}

		// Hareket ve bakiye tek transaction içinde yazılır
		err = database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&movement).Error; err != nil {
				return err
			}
			if body.Type == models.MovementTypeDeposit {
				account.CurrentBalance += body.Amount
			} else {
				account.CurrentBalance -= body.Amount
			}
			return tx.Save(&account).Error
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Hareket kaydedilemedi")
		}

		// Audit log
		if logErr := audit.WriteLog(audit.LogOptions{
			EntityType:  "account_movement",
			EntityID:    movement.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Hesap hareketi: %s %.2f TL - %s", movement.Type, movement.Amount, account.Name),
			Before:      nil,
			After:       movement,
		}); logErr != nil {
			fmt.Printf("Audit log yazılamadı: %v\n", logErr)
		}

		return c.Status(fiber.StatusCreated).JSON(MovementResponse{
			ID:          movement.ID,
			AccountID:   movement.AccountID,
			Type:        movement.Type,
			Amount:      movement.Amount,
			Date:        movement.Date.Format("2006-01-02"),
			Description: movement.Description,
			CreatedAt:   movement.CreatedAt.Format(time.RFC3339),
		})
	}
}

// GET /api/accounts/:id/movements
func ListMovementsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		var account models.Account
		if err := database.DB.First(&account, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Hesap bulunamadı")
		}

		var movements []models.AccountMovement
		if err := database.DB.Where("account_id = ?", account.ID).
			Order("date desc, id desc").
			Find(&movements).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Hareketler listelenemedi")
		}

		resp := make([]MovementResponse, 0, len(movements))
		for _, m := range movements {
			resp = append(resp, MovementResponse{
				ID:          m.ID,
				AccountID:   m.AccountID,
				Type:        m.Type,
				Amount:      m.Amount,
				Date:        m.Date.Format("2006-01-02"),
				Description: m.Description,
				CreatedAt:   m.CreatedAt.Format(time.RFC3339),
			})
		}

		return c.JSON(resp)
	}
}
