package transaction

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

type CreateTransactionItemRequest struct {
	Name      string  `json:"name"`
	Quantity  float64 `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

type CreateTransactionRequest struct {
	PartyID       uint                           `json:"party_id"`
	Kind          string                         `json:"kind"` // "sale" veya "purchase"
	GrandTotal    *float64                       `json:"grand_total"` // kalem verilmezse zorunlu
	PaidAmount    float64                        `json:"paid_amount"` // peşin ödenen kısım (opsiyonel)
	Date          string                         `json:"date"`        // "2025-12-09"
	PaymentMethod string                         `json:"payment_method"`
	Notes         string                         `json:"notes"`
	Items         []CreateTransactionItemRequest `json:"items"`
}

type TransactionItemResponse struct {
	ID        uint    `json:"id"`
	Name      string  `json:"name"`
	Quantity  float64 `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	LineTotal float64 `json:"line_total"`
}

type TransactionResponse struct {
	ID            uint                      `json:"id"`
	PartyID       uint                      `json:"party_id"`
	Kind          string                    `json:"kind"`
	GrandTotal    float64                   `json:"grand_total"`
	PaidAmount    float64                   `json:"paid_amount"`
	Due           float64                   `json:"due"`
	Date          string                    `json:"date"`
	PaymentMethod string                    `json:"payment_method"`
	Notes         string                    `json:"notes"`
	Items         []TransactionItemResponse `json:"items,omitempty"`
	CreatedAt     string                    `json:"created_at"`
	UpdatedAt     string                    `json:"updated_at"`
}

func toTransactionResponse(tx *models.Transaction) TransactionResponse {
	items := make([]TransactionItemResponse, 0, len(tx.Items))
	for _, it := range tx.Items {
		items = append(items, TransactionItemResponse{
			ID:        it.ID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			LineTotal: it.LineTotal,
		})
	}
	return TransactionResponse{
		ID:            tx.ID,
		PartyID:       tx.PartyID,
		Kind:          string(tx.Kind),
		GrandTotal:    tx.GrandTotal,
		PaidAmount:    tx.PaidAmount,
		Due:           ledger.TransactionDue(tx),
		Date:          tx.Date.Format("2006-01-02"),
		PaymentMethod: string(tx.PaymentMethod),
		Notes:         tx.Notes,
		Items:         items,
		CreatedAt:     tx.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     tx.UpdatedAt.Format(time.RFC3339),
	}
}

func validPaymentMethod(s string) bool {
	switch models.PaymentMethod(s) {
	case models.PaymentMethodCash, models.PaymentMethodCard, models.PaymentMethodBankTransfer,
		models.PaymentMethodCheck, models.PaymentMethodCredit:
		return true
	}
	return s == ""
}

// -------------------------
// Transaction CRUD
// -------------------------

// POST /api/transactions
func CreateTransactionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateTransactionRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}

		// Validasyon
		if body.Kind != string(models.TransactionKindSale) && body.Kind != string(models.TransactionKindPurchase) {
			return fiber.NewError(fiber.StatusBadRequest, "kind 'sale' veya 'purchase' olmalı")
		}
		if !validPaymentMethod(body.PaymentMethod) {
			return fiber.NewError(fiber.StatusBadRequest, "payment_method geçersiz")
		}

		var party models.Party
		if err := database.DB.First(&party, "id = ?", body.PartyID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "party_id geçersiz")
		}

		// Satış müşteriye, alım tedarikçiye yapılır
		kind := models.TransactionKind(body.Kind)
		if kind == models.TransactionKindSale && party.Kind != models.PartyKindCustomer {
			return fiber.NewError(fiber.StatusBadRequest, "satış yalnızca müşteriye yapılabilir")
		}
		if kind == models.TransactionKindPurchase && party.Kind != models.PartyKindSupplier {
			return fiber.NewError(fiber.StatusBadRequest, "alım yalnızca tedarikçiden yapılabilir")
		}

		d, err := time.Parse("2006-01-02", body.Date)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Tarih formatı 'YYYY-MM-DD' olmalı")
		}

		// Kalemlerden toplam hesapla; kalem yoksa grand_total zorunlu
		var grandTotal float64
		items := make([]models.TransactionItem, 0, len(body.Items))
		if len(body.Items) > 0 {
			for _, it := range body.Items {
				if strings.TrimSpace(it.Name) == "" {
					return fiber.NewError(fiber.StatusBadRequest, "kalem adı boş olamaz")
				}
				if it.Quantity <= 0 || it.UnitPrice < 0 {
					return fiber.NewError(fiber.StatusBadRequest, "kalem miktarı ve birim fiyatı geçersiz")
				}
				lineTotal := it.Quantity * it.UnitPrice
				items = append(items, models.TransactionItem{
					Name:      strings.TrimSpace(it.Name),
					Quantity:  it.Quantity,
					UnitPrice: it.UnitPrice,
					LineTotal: lineTotal,
				})
				grandTotal += lineTotal
			}
		} else {
			if body.GrandTotal == nil {
				return fiber.NewError(fiber.StatusBadRequest, "grand_total veya items zorunlu")
			}
			grandTotal = *body.GrandTotal
		}

		if grandTotal < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "grand_total negatif olamaz")
		}
		if body.PaidAmount < 0 || body.PaidAmount > grandTotal {
			return fiber.NewError(fiber.StatusBadRequest, "paid_amount 0 ile grand_total arasında olmalı")
		}

		tx := models.Transaction{
			PartyID:       party.ID,
			Kind:          kind,
			GrandTotal:    grandTotal,
			PaidAmount:    body.PaidAmount,
			Date:          d,
			PaymentMethod: models.PaymentMethod(body.PaymentMethod),
			Notes:         strings.TrimSpace(body.Notes),
			Items:         items,
		}

		if err := database.DB.Create(&tx).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "İşlem kaydedilemedi")
		}

		// Audit log yaz
		kindLabel := "Satış"
		if tx.Kind == models.TransactionKindPurchase {
			kindLabel = "Alım"
		}
		if logErr := audit.WriteLog(audit.LogOptions{
			EntityType:  "transaction",
			EntityID:    tx.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("%s eklendi: %.2f TL - %s", kindLabel, tx.GrandTotal, party.Name),
			Before:      nil,
			After:       toTransactionResponse(&tx),
		}); logErr != nil {
			fmt.Printf("Audit log yazılamadı: %v\n", logErr)
		}

		return c.Status(fiber.StatusCreated).JSON(toTransactionResponse(&tx))
	}
}

// GET /api/transactions?party_id=...&kind=...&from=...&to=...&only_due=...&limit=...&offset=...
func ListTransactionsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.Transaction{})

		if pidStr := c.Query("party_id"); pidStr != "" {
			var pid uint
			if _, err := fmt.Sscan(pidStr, &pid); err != nil || pid == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "party_id geçersiz")
			}
			dbq = dbq.Where("party_id = ?", pid)
		}
		if kindStr := c.Query("kind"); kindStr != "" {
			if kindStr != string(models.TransactionKindSale) && kindStr != string(models.TransactionKindPurchase) {
				return fiber.NewError(fiber.StatusBadRequest, "kind 'sale' veya 'purchase' olmalı")
			}
			dbq = dbq.Where("kind = ?", kindStr)
		}
		if fromStr := c.Query("from"); fromStr != "" {
			from, err := time.Parse("2006-01-02", fromStr)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "from formatı 'YYYY-MM-DD' olmalı")
			}
			dbq = dbq.Where("date >= ?", from)
		}
		if toStr := c.Query("to"); toStr != "" {
			to, err := time.Parse("2006-01-02", toStr)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "to formatı 'YYYY-MM-DD' olmalı")
			}
			dbq = dbq.Where("date <= ?", to)
		}
		if c.Query("only_due") == "true" {
			dbq = dbq.Where("grand_total > paid_amount")
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

		var transactions []models.Transaction
		if err := dbq.Preload("Items").
			Order("date desc, id desc").
			Limit(limit).Offset(offset).
			Find(&transactions).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "İşlemler listelenemedi")
		}

		resp := make([]TransactionResponse, 0, len(transactions))
		for i := range transactions {
			resp = append(resp, toTransactionResponse(&transactions[i]))
		}

		return c.JSON(resp)
	}
}

// GET /api/transactions/:id
func GetTransactionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		var tx models.Transaction
		if err := database.DB.Preload("Items").First(&tx, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "İşlem bulunamadı")
		}

		return c.JSON(toTransactionResponse(&tx))
	}
}

// DELETE /api/transactions/:id
func DeleteTransactionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		var tx models.Transaction
		if err := database.DB.First(&tx, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "İşlem bulunamadı")
		}

		// Üzerine ödeme alınmış işlem silinemez; önce düzeltme kaydı gerekir
		if tx.PaidAmount > 0 {
			return fiber.NewError(fiber.StatusConflict, "Ödeme alınmış işlem silinemez")
		}

		beforeData := toTransactionResponse(&tx)

		// Kalemler CASCADE ile gider, yine de açıkça sil
		database.DB.Where("transaction_id = ?", tx.ID).Delete(&models.TransactionItem{})

		if err := database.DB.Delete(&tx).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "İşlem silinemedi")
		}

		// Audit log
		kindLabel := "Satış"
		if tx.Kind == models.TransactionKindPurchase {
			kindLabel = "Alım"
		}
		if logErr := audit.WriteLog(audit.LogOptions{
			EntityType:  "transaction",
			EntityID:    tx.ID,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("%s silindi: %.2f TL", kindLabel, tx.GrandTotal),
			Before:      beforeData,
			After:       nil,
		}); logErr != nil {
			fmt.Printf("Audit log yazılamadı: %v\n", logErr)
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
