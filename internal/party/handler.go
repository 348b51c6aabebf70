package party

import (
	"fmt"
	"strings"
	"time"

	"defter-backend/internal/audit"
	"defter-backend/internal/database"
	"defter-backend/internal/ledger"
	"defter-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

// -------------------------
// Request/Response Types
// -------------------------

type CreatePartyRequest struct {
	Kind             string  `json:"kind"` // "customer" veya "supplier"
	Name             string  `json:"name"`
	Phone            string  `json:"phone"`
	Email            string  `json:"email"`
	Address          string  `json:"address"`
	DefaultAccountID *uint   `json:"default_account_id"`
	AdvanceAmount    float64 `json:"advance_amount"` // açılış avans bakiyesi (opsiyonel)
}

type UpdatePartyRequest struct {
	Name             *string `json:"name"`
	Phone            *string `json:"phone"`
	Email            *string `json:"email"`
	Address          *string `json:"address"`
	DefaultAccountID *uint   `json:"default_account_id"`
}

type PartyResponse struct {
	ID               uint    `json:"id"`
	Kind             string  `json:"kind"`
	Name             string  `json:"name"`
	Phone            string  `json:"phone"`
	Email            string  `json:"email"`
	Address          string  `json:"address"`
	AdvanceAmount    float64 `json:"advance_amount"`
	DefaultAccountID *uint   `json:"default_account_id"`
	CreatedAt        string  `json:"created_at"`
	UpdatedAt        string  `json:"updated_at"`
}

type LedgerTransactionItem struct {
	ID            uint    `json:"id"`
	Kind          string  `json:"kind"`
	GrandTotal    float64 `json:"grand_total"`
	PaidAmount    float64 `json:"paid_amount"`
	Due           float64 `json:"due"`
	Date          string  `json:"date"`
	PaymentMethod string  `json:"payment_method"`
	Notes         string  `json:"notes"`
}

type PartyLedgerResponse struct {
	Party         PartyResponse           `json:"party"`
	Transactions  []LedgerTransactionItem `json:"transactions"`
	TotalDue      float64                 `json:"total_due"`
	AdvanceAmount float64                 `json:"advance_amount"`
}

func toPartyResponse(p *models.Party) PartyResponse {
	return PartyResponse{
		ID:               p.ID,
		Kind:             string(p.Kind),
		Name:             p.Name,
		Phone:            p.Phone,
		Email:            p.Email,
		Address:          p.Address,
		AdvanceAmount:    p.AdvanceAmount,
		DefaultAccountID: p.DefaultAccountID,
		CreatedAt:        p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        p.UpdatedAt.Format(time.RFC3339),
	}
}

func parseKind(s string) (models.PartyKind, error) {
	switch models.PartyKind(s) {
	case models.PartyKindCustomer, models.PartyKindSupplier:
		return models.PartyKind(s), nil
	}
	return "", fiber.NewError(fiber.StatusBadRequest, "kind 'customer' veya 'supplier' olmalı")
}

// -------------------------
// Party CRUD
// -------------------------

// POST /api/parties
func CreatePartyHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreatePartyRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}

		// Validasyon
		kind, err := parseKind(body.Kind)
		if err != nil {
			return err
		}
		if strings.TrimSpace(body.Name) == "" {
			return fiber.NewError(fiber.StatusBadRequest, "isim boş olamaz")
		}

		if body.DefaultAccountID != nil {
			var account models.Account
			if err := database.DB.First(&account, "id = ? AND is_active = true", *body.DefaultAccountID).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "default_account_id geçersiz")
			}
		}

		party := models.Party{
			Kind:             kind,
			Name:             strings.TrimSpace(body.Name),
			Phone:            strings.TrimSpace(body.Phone),
			Email:            strings.TrimSpace(body.Email),
			Address:          strings.TrimSpace(body.Address),
			AdvanceAmount:    body.AdvanceAmount,
			DefaultAccountID: body.DefaultAccountID,
		}

		if err := database.DB.Create(&party).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Cari kaydedilemedi")
		}

		// Audit log yaz
		kindLabel := "Müşteri"
		if party.Kind == models.PartyKindSupplier {
			kindLabel = "Tedarikçi"
		}
		if logErr := audit.WriteLog(audit.LogOptions{
			EntityType:  "party",
			EntityID:    party.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("%s eklendi: %s", kindLabel, party.Name),
			Before:      nil,
			After:       toPartyResponse(&party),
		}); logErr != nil {
			fmt.Printf("Audit log yazılamadı: %v\n", logErr)
		}

		return c.Status(fiber.StatusCreated).JSON(toPartyResponse(&party))
	}
}

// GET /api/parties?kind=...&name=...&limit=...&offset=...
func ListPartiesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.Party{})

		if kindStr := c.Query("kind"); kindStr != "" {
			kind, err := parseKind(kindStr)
			if err != nil {
				return err
			}
			dbq = dbq.Where("kind = ?", kind)
		}
		if name := strings.TrimSpace(c.Query("name")); name != "" {
			dbq = dbq.Where("name ILIKE ?", "%"+name+"%")
		}

		limit := 50
		if limStr := c.Query("limit"); limStr != "" {
			if _, err := fmt.Sscan(limStr, &limit); err != nil || limit < 1 || limit > 500 {
				return fiber.NewError(fiber.StatusBadRequest, "limit 1-500 arası olmalı")
			}
		}
		offset := 0
		if offStr := c.Query("offset"); offStr != "" {
			if _, err := fmt.Sscan(offStr, &offset); err != nil || offset < 0 {
				return fiber.NewError(fiber.StatusBadRequest, "offset geçersiz")
			}
		}

		var parties []models.Party
		if err := dbq.Order("name asc").Limit(limit).Offset(offset).Find(&parties).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Cariler listelenemedi")
		}

		resp := make([]PartyResponse, 0, len(parties))
		for i := range parties {
			resp = append(resp, toPartyResponse(&parties[i]))
		}

		return c.JSON(resp)
	}
}

// GET /api/parties/:id
func GetPartyHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		var party models.Party
		if err := database.DB.First(&party, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Cari bulunamadı")
		}

		return c.JSON(toPartyResponse(&party))
	}
}

// PUT /api/parties/:id
func UpdatePartyHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		var party models.Party
		if err := database.DB.First(&party, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Cari bulunamadı")
		}

		var body UpdatePartyRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}

		beforeData := toPartyResponse(&party)
		updated := false

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "isim boş olamaz")
			}
			party.Name = name
			updated = true
		}
		if body.Phone != nil {
			party.Phone = strings.TrimSpace(*body.Phone)
			updated = true
		}
		if body.Email != nil {
			party.Email = strings.TrimSpace(*body.Email)
			updated = true
		}
		if body.Address != nil {
			party.Address = strings.TrimSpace(*body.Address)
			updated = true
		}
		if body.DefaultAccountID != nil {
			var account models.Account
			if err := database.DB.First(&account, "id = ? AND is_active = true", *body.DefaultAccountID).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "default_account_id geçersiz")
			}
			party.DefaultAccountID = body.DefaultAccountID
			updated = true
		}

		if !updated {
			return c.JSON(toPartyResponse(&party))
		}

		if err := database.DB.Save(&party).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Cari güncellenemedi")
		}

		// Audit log
		if logErr := audit.WriteLog(audit.LogOptions{
			EntityType:  "party",
			EntityID:    party.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Cari güncellendi: %s", party.Name),
			Before:      beforeData,
			After:       toPartyResponse(&party),
		}); logErr != nil {
			fmt.Printf("Audit log yazılamadı: %v\n", logErr)
		}

		return c.JSON(toPartyResponse(&party))
	}
}

// DELETE /api/parties/:id
func DeletePartyHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		var party models.Party
		if err := database.DB.First(&party, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Cari bulunamadı")
		}

		// İşlem kaydı olan cari silinemez
		var txCount int64
		database.DB.Model(&models.Transaction{}).Where("party_id = ?", party.ID).Count(&txCount)
		if txCount > 0 {
			return fiber.NewError(fiber.StatusConflict, "İşlem kaydı olan cari silinemez")
		}

		beforeData := toPartyResponse(&party)

		if err := database.DB.Delete(&party).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Cari silinemedi")
		}

		// Audit log
		if logErr := audit.WriteLog(audit.LogOptions{
			EntityType:  "party",
			EntityID:    party.ID,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("Cari silindi: %s", party.Name),
			Before:      beforeData,
			After:       nil,
		}); logErr != nil {
			fmt.Printf("Audit log yazılamadı: %v\n", logErr)
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}

// -------------------------
// Cari ekstre
// -------------------------

// GET /api/parties/:id/ledger
func GetPartyLedgerHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		var party models.Party
		if err := database.DB.First(&party, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Cari bulunamadı")
		}

		var transactions []models.Transaction
		if err := database.DB.Where("party_id = ?", party.ID).
			Order("date asc, id asc").
			Find(&transactions).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "İşlemler listelenemedi")
		}

		items := make([]LedgerTransactionItem, 0, len(transactions))
		for i := range transactions {
			tx := &transactions[i]
			items = append(items, LedgerTransactionItem{
				ID:            tx.ID,
				Kind:          string(tx.Kind),
				GrandTotal:    tx.GrandTotal,
				PaidAmount:    tx.PaidAmount,
				Due:           ledger.TransactionDue(tx),
				Date:          tx.Date.Format("2006-01-02"),
				PaymentMethod: string(tx.PaymentMethod),
				Notes:         tx.Notes,
			})
		}

		return c.JSON(PartyLedgerResponse{
			Party:         toPartyResponse(&party),
			Transactions:  items,
			TotalDue:      ledger.ComputeDue(transactions),
			AdvanceAmount: party.AdvanceAmount,
		})
	}
}
