package payment

import (
	"fmt"
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

type CreatePaymentRequest struct {
	PartyID                uint    `json:"party_id"`
	Amount                 float64 `json:"amount"`
	PaymentType            string  `json:"payment_type"` // account_adjustment / advance_adjustment / cash / card / bank_transfer / check / credit
	AccountID              *uint   `json:"account_id"`
	IsPartial              bool    `json:"is_partial"`
	SelectedTransactionIDs []uint  `json:"selected_transaction_ids"`
	Notes                  string  `json:"notes"`
}

type CreateAdvancePaymentRequest struct {
	PartyID uint    `json:"party_id"`
	Amount  float64 `json:"amount"`
	Notes   string  `json:"notes"`
}

type PaymentTransactionState struct {
	ID         uint    `json:"id"`
	GrandTotal float64 `json:"grand_total"`
	PaidAmount float64 `json:"paid_amount"`
	Due        float64 `json:"due"`
}

// PaymentResultResponse - Uygulama sonrası yetkili durum; istemcinin
// tutarlı kalmak için yeniden sorgu yapması gerekmez.
type PaymentResultResponse struct {
	EventID        uint                      `json:"event_id"`
	Reference      string                    `json:"reference"`
	Amount         float64                   `json:"amount"`
	PaymentType    string                    `json:"payment_type"`
	PartyID        uint                      `json:"party_id"`
	AdvanceAmount  float64                   `json:"advance_amount"`
	TotalDue       float64                   `json:"total_due"`
	Transactions   []PaymentTransactionState `json:"transactions"`
	AccountID      *uint                     `json:"account_id"`
	AccountBalance *float64                  `json:"account_balance"`
	CreatedAt      string                    `json:"created_at"`
}

type PaymentEventResponse struct {
	ID          uint    `json:"id"`
	PartyID     uint    `json:"party_id"`
	Amount      float64 `json:"amount"`
	PaymentType string  `json:"payment_type"`
	AccountID   *uint   `json:"account_id"`
	Reference   string  `json:"reference"`
	Notes       string  `json:"notes"`
	SettledIDs  string  `json:"settled_transaction_ids"`
	CreatedAt   string  `json:"created_at"`
}

type PreviewResponse struct {
	PartyID      uint    `json:"party_id"`
	Amount       float64 `json:"amount"`
	TotalDue     float64 `json:"total_due"`
	RemainingDue float64 `json:"remaining_due"`
	NewAdvance   float64 `json:"new_advance"`
}

// translateError - Çekirdek hatalarını alan adresli JSON cevaplara çevirir.
// Sunum katmanı field ile hatalı girdiyi işaretleyebilir.
func translateError(c *fiber.Ctx, err error) error {
	if ve, ok := err.(*ledger.ValidationError); ok {
		status := fiber.StatusBadRequest
		if ve.Kind == ledger.KindAccountNotFound {
			status = fiber.StatusNotFound
		}
		return c.Status(status).JSON(fiber.Map{
			"error": ve.Message,
			"kind":  string(ve.Kind),
			"field": ve.Field,
		})
	}
	if pe, ok := err.(*ledger.PersistenceError); ok {
		if pe.NotFound {
			return fiber.NewError(fiber.StatusNotFound, "Cari bulunamadı")
		}
		// Eşzamanlı yazma çakışması vb.; otomatik tekrar YOK, kullanıcı tekrar dener
		return fiber.NewError(fiber.StatusConflict, "Kayıt sırasında çakışma oluştu, lütfen tekrar deneyin")
	}
	return fiber.NewError(fiber.StatusInternalServerError, "Ödeme işlenemedi")
}

func toResultResponse(res *ledger.ApplyResult) PaymentResultResponse {
	states := make([]PaymentTransactionState, 0, len(res.Transactions))
	for i := range res.Transactions {
		tx := &res.Transactions[i]
		states = append(states, PaymentTransactionState{
			ID:         tx.ID,
			GrandTotal: tx.GrandTotal,
			PaidAmount: tx.PaidAmount,
			Due:        ledger.TransactionDue(tx),
		})
	}

	resp := PaymentResultResponse{
		EventID:       res.Event.ID,
		Reference:     res.Event.Reference,
		Amount:        res.Event.Amount,
		PaymentType:   string(res.Event.PaymentType),
		PartyID:       res.Party.ID,
		AdvanceAmount: res.Party.AdvanceAmount,
		TotalDue:      ledger.ComputeDue(res.Transactions),
		Transactions:  states,
		AccountID:     res.Event.AccountID,
		CreatedAt:     res.Event.CreatedAt.Format(time.RFC3339),
	}
	if res.Account != nil {
		balance := res.Account.CurrentBalance
		resp.AccountBalance = &balance
	}
	return resp
}

func writePaymentAudit(res *ledger.ApplyResult) {
	if logErr := audit.WriteLog(audit.LogOptions{
		EntityType:  "payment_event",
		EntityID:    res.Event.ID,
		Action:      models.AuditActionApply,
		Description: fmt.Sprintf("Ödeme uygulandı: %.2f TL (%s) - %s", res.Event.Amount, res.Event.PaymentType, res.Party.Name),
		Before:      nil,
		After:       res.Event,
	}); logErr != nil {
		fmt.Printf("Audit log yazılamadı: %v\n", logErr)
	}
}

// -------------------------
// Handlers
// -------------------------

// POST /api/payments
// Borç kapama: tam (en eski işlemden dağıtılır) veya parçalı (seçilen işlemler, seçim sırasıyla).
func CreatePaymentHandler(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreatePaymentRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}
		if body.PartyID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "party_id zorunlu")
		}

		res, err := svc.ProcessPayment(body.PartyID, ledger.PaymentRequest{
			Amount:                 body.Amount,
			PaymentType:            models.PaymentType(body.PaymentType),
			AccountID:              body.AccountID,
			IsPartial:              body.IsPartial,
			SelectedTransactionIDs: body.SelectedTransactionIDs,
			Notes:                  body.Notes,
		})
		if err != nil {
			return translateError(c, err)
		}

		writePaymentAudit(res)

		return c.Status(fiber.StatusCreated).JSON(toResultResponse(res))
	}
}

// POST /api/payments/advance
// Avans kaydı: işlem borçlarına dokunmaz, sadece cari avans bakiyesi değişir.
func CreateAdvancePaymentHandler(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateAdvancePaymentRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}
		if body.PartyID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "party_id zorunlu")
		}

		res, err := svc.ProcessPayment(body.PartyID, ledger.PaymentRequest{
			Amount:      body.Amount,
			PaymentType: models.PaymentTypeAdvanceAdjustment,
			Notes:       body.Notes,
		})
		if err != nil {
			return translateError(c, err)
		}

		writePaymentAudit(res)

		return c.Status(fiber.StatusCreated).JSON(toResultResponse(res))
	}
}

// GET /api/payments/preview?party_id=...&amount=...
func PreviewPaymentHandler(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var partyID uint
		if _, err := fmt.Sscan(c.Query("party_id"), &partyID); err != nil || partyID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "party_id geçersiz")
		}
		var amount float64
		if _, err := fmt.Sscan(c.Query("amount"), &amount); err != nil || amount <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "amount geçersiz")
		}

		balance, totalDue, err := svc.Preview(partyID, amount)
		if err != nil {
			return translateError(c, err)
		}

		return c.JSON(PreviewResponse{
			PartyID:      partyID,
			Amount:       amount,
			TotalDue:     totalDue,
			RemainingDue: balance.RemainingDue,
			NewAdvance:   balance.NewAdvance,
		})
	}
}

// GET /api/payments?party_id=...&payment_type=...&limit=...&offset=...
func ListPaymentsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.PaymentEvent{})

		if pidStr := c.Query("party_id"); pidStr != "" {
			var pid uint
			if _, err := fmt.Sscan(pidStr, &pid); err != nil || pid == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "party_id geçersiz")
			}
			dbq = dbq.Where("party_id = ?", pid)
		}
		if pt := c.Query("payment_type"); pt != "" {
			dbq = dbq.Where("payment_type = ?", pt)
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

		var events []models.PaymentEvent
		if err := dbq.Order("created_at desc, id desc").
			Limit(limit).Offset(offset).
			Find(&events).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ödemeler listelenemedi")
		}

		resp := make([]PaymentEventResponse, 0, len(events))
		for _, e := range events {
			resp = append(resp, PaymentEventResponse{
				ID:          e.ID,
				PartyID:     e.PartyID,
				Amount:      e.Amount,
				PaymentType: string(e.PaymentType),
				AccountID:   e.AccountID,
				Reference:   e.Reference,
				Notes:       e.Notes,
				SettledIDs:  e.SettledTransactionIDs,
				CreatedAt:   e.CreatedAt.Format(time.RFC3339),
			})
		}

		return c.JSON(resp)
	}
}
