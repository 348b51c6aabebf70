package ledger

import (
	"encoding/json"
	"fmt"
	"sort"

	"defter-backend/internal/models"

	"github.com/google/uuid"
)

// -------------------------
// Request/Draft Types
// -------------------------

// PaymentRequest - Sunum katmanından gelen ödeme/tahsilat isteği.
// Çekirdek URL veya çeviri çözmez; her şey çağıran tarafından çözülmüş gelir.
type PaymentRequest struct {
	Amount                 float64
	PaymentType            models.PaymentType
	AccountID              *uint
	IsPartial              bool   // true ise SelectedTransactionIDs zorunlu
	SelectedTransactionIDs []uint // parçalı ödemede kapatılacak işlemler (verilen sıra korunur)
	Notes                  string
}

// PaymentDraft - Doğrulanmış, uygulanmaya hazır ödeme taslağı.
// ValidatePayment üretir, ApplyPayment tüketir. Üretildikten sonra değiştirilmez.
type PaymentDraft struct {
	PartyID                uint
	Amount                 float64
	PaymentType            models.PaymentType
	AccountID              *uint
	IsPartial              bool
	SelectedTransactionIDs []uint
	Reference              string // uuid, PaymentEvent için
	Notes                  string
}

// ApplyResult - Uygulama sonrası yetkili (authoritative) durum.
// Çağıranın tutarlı kalmak için yeniden sorgu yapmasına gerek kalmaz.
type ApplyResult struct {
	Party        *models.Party
	Transactions []models.Transaction
	Account      *models.Account // hesap kullanılmadıysa nil
	Event        *models.PaymentEvent
}

// RemainingBalance - Önizleme sonucu (ComputeRemainingBalance)
type RemainingBalance struct {
	RemainingDue float64
	NewAdvance   float64
}

// -------------------------
// Saf hesaplamalar
// -------------------------

// TransactionDue - Tek işlemin kalan borcu. paid_amount hatalı şekilde
// grand_total'dan büyük gelse bile asla negatif dönmez.
func TransactionDue(tx *models.Transaction) float64 {
	due := tx.GrandTotal - tx.PaidAmount
	if due < 0 {
		return 0
	}
	return due
}

// ComputeDue - Carinin toplam kalan borcu. Liste sırasından bağımsızdır.
func ComputeDue(transactions []models.Transaction) float64 {
	total := 0.0
	for i := range transactions {
		total += TransactionDue(&transactions[i])
	}
	return total
}

// RequiresAccount - Bu ödeme tipi bir hesap üzerinden para hareketi gerektirir mi?
// advance_adjustment sadece avans bakiyesine, credit hiçbir hesaba dokunmaz.
func RequiresAccount(pt models.PaymentType) bool {
	switch pt {
	case models.PaymentTypeAdvanceAdjustment, models.PaymentTypeCredit:
		return false
	}
	return true
}

func validPaymentType(pt models.PaymentType) bool {
	switch pt {
	case models.PaymentTypeAccountAdjustment, models.PaymentTypeAdvanceAdjustment,
		models.PaymentTypeCash, models.PaymentTypeCard, models.PaymentTypeBankTransfer,
		models.PaymentTypeCheck, models.PaymentTypeCredit:
		return true
	}
	return false
}

// ComputeRemainingBalance - Uygulamadan önce sonucu önizler. Yan etkisi yoktur.
// Müşteri tahsilatı avansı artırır, tedarikçi ödemesi avansı azaltır (işletmenin
// net borcunu düşürür) - asimetri bilinçli.
func ComputeRemainingBalance(party *models.Party, transactions []models.Transaction, proposedAmount float64) RemainingBalance {
	remainingDue := ComputeDue(transactions) - proposedAmount
	if remainingDue < 0 {
		remainingDue = 0
	}

	newAdvance := party.AdvanceAmount
	if party.Kind == models.PartyKindCustomer {
		newAdvance += proposedAmount
	} else {
		newAdvance -= proposedAmount
	}

	return RemainingBalance{RemainingDue: remainingDue, NewAdvance: newAdvance}
}

// -------------------------
// Doğrulama
// -------------------------

// ValidatePayment - İsteği sırayla ve ilk hatada durarak doğrular:
//  1. amount > 0
//  2. parçalıysa: seçim boş olamaz, seçilen işlemler cariye ait ve borçlu olmalı,
//     amount seçilenlerin toplam borcunu aşamaz
//  3. parçalı değilse: amount toplam borcu aşamaz
//  4. ödeme tipi hesap gerektiriyorsa: aktif bir hesap verilmiş olmalı
//
// Hiçbir entity'yi değiştirmez; başarılıysa uygulanmaya hazır bir taslak döner.
func ValidatePayment(party *models.Party, transactions []models.Transaction, account *models.Account, req PaymentRequest) (*PaymentDraft, error) {
	if !validPaymentType(req.PaymentType) {
		return nil, newValidationError(KindInvalidAmount, "payment_type", "geçersiz ödeme tipi")
	}

	if req.Amount <= 0 {
		return nil, newValidationError(KindInvalidAmount, "amount", "tutar 0'dan büyük olmalı")
	}

	if req.IsPartial {
		if len(req.SelectedTransactionIDs) == 0 {
			return nil, newValidationError(KindAmountExceedsSelectedDue, "selected_transaction_ids", "parçalı ödemede en az bir işlem seçilmeli")
		}

		byID := make(map[uint]*models.Transaction, len(transactions))
		for i := range transactions {
			byID[transactions[i].ID] = &transactions[i]
		}

		selectedDue := 0.0
		seen := make(map[uint]bool, len(req.SelectedTransactionIDs))
		for _, id := range req.SelectedTransactionIDs {
			tx, ok := byID[id]
			if !ok || tx.PartyID != party.ID {
				return nil, newValidationError(KindTransactionNotOwnedByParty, "selected_transaction_ids",
					fmt.Sprintf("işlem %d bu cariye ait değil", id))
			}
			if seen[id] {
				return nil, newValidationError(KindTransactionNotOwnedByParty, "selected_transaction_ids",
					fmt.Sprintf("işlem %d birden fazla kez seçilmiş", id))
			}
			seen[id] = true
			due := TransactionDue(tx)
			if due <= 0 {
				return nil, newValidationError(KindAmountExceedsSelectedDue, "selected_transaction_ids",
					fmt.Sprintf("işlem %d için kalan borç yok", id))
			}
			selectedDue += due
		}

		if req.Amount > selectedDue {
			return nil, newValidationError(KindAmountExceedsSelectedDue, "amount",
				fmt.Sprintf("tutar (%.2f) seçilen işlemlerin toplam borcunu (%.2f) aşamaz", req.Amount, selectedDue))
		}
	} else {
		totalDue := ComputeDue(transactions)
		if req.Amount > totalDue {
			return nil, newValidationError(KindAmountExceedsTotalDue, "amount",
				fmt.Sprintf("tutar (%.2f) toplam borcu (%.2f) aşamaz", req.Amount, totalDue))
		}
	}

	var accountID *uint
	if RequiresAccount(req.PaymentType) {
		if req.AccountID == nil {
			return nil, newValidationError(KindAccountRequired, "account_id", "bu ödeme tipi için hesap seçilmeli")
		}
		if account == nil || account.ID != *req.AccountID || !account.IsActive {
			return nil, newValidationError(KindAccountNotFound, "account_id", "hesap bulunamadı veya aktif değil")
		}
		accountID = req.AccountID
	}

	// Seçim sırası uygulama sırasını belirlediği için kopyalanır
	var selected []uint
	if req.IsPartial {
		selected = make([]uint, len(req.SelectedTransactionIDs))
		copy(selected, req.SelectedTransactionIDs)
	}

	return &PaymentDraft{
		PartyID:                party.ID,
		Amount:                 req.Amount,
		PaymentType:            req.PaymentType,
		AccountID:              accountID,
		IsPartial:              req.IsPartial,
		SelectedTransactionIDs: selected,
		Reference:              uuid.NewString(),
		Notes:                  req.Notes,
	}, nil
}

// -------------------------
// Uygulama
// -------------------------

// ApplyPayment - Doğrulanmış taslağı carinin işlem kümesine uygular.
//
// Dağıtım sırası deterministiktir: parçalıysa seçimin verildiği sıra, değilse
// pozitif borçlu işlemler tarih artan (en eski önce), eşitlikte ID artan.
// Korunum garantisi: paid_amount artışlarının toplamı tam olarak taslak tutarına
// eşittir; hiçbir işlemin borcu negatife düşmez.
//
// Bozuk veri (negatif grand_total/paid_amount) her türlü mutasyondan ÖNCE tespit
// edilir ve uygulama hiçbir şeyi değiştirmeden iptal olur.
func ApplyPayment(party *models.Party, transactions []models.Transaction, account *models.Account, draft *PaymentDraft) (*ApplyResult, error) {
	if draft.PartyID != party.ID {
		return nil, fmt.Errorf("taslak cari %d için, verilen cari %d", draft.PartyID, party.ID)
	}
	if draft.Amount <= 0 {
		return nil, newValidationError(KindInvalidAmount, "amount", "tutar 0'dan büyük olmalı")
	}
	for i := range transactions {
		if transactions[i].GrandTotal < 0 || transactions[i].PaidAmount < 0 {
			return nil, fmt.Errorf("bozuk işlem verisi: işlem %d negatif tutar içeriyor", transactions[i].ID)
		}
		if transactions[i].PartyID != party.ID {
			return nil, newValidationError(KindTransactionNotOwnedByParty, "transactions",
				fmt.Sprintf("işlem %d bu cariye ait değil", transactions[i].ID))
		}
	}
	if RequiresAccount(draft.PaymentType) {
		if draft.AccountID == nil || account == nil || account.ID != *draft.AccountID {
			return nil, newValidationError(KindAccountRequired, "account_id", "bu ödeme tipi için hesap seçilmeli")
		}
	}

	// advance_adjustment belirli bir işlemin borcunu kapatmaz; sadece avans bakiyesi değişir
	if draft.PaymentType == models.PaymentTypeAdvanceAdjustment {
		if party.Kind == models.PartyKindCustomer {
			party.AdvanceAmount += draft.Amount
		} else {
			party.AdvanceAmount -= draft.Amount
		}
		event := buildEvent(party, draft, nil)
		return &ApplyResult{Party: party, Transactions: transactions, Account: nil, Event: event}, nil
	}

	order, err := allocationOrder(transactions, draft)
	if err != nil {
		return nil, err
	}

	remaining := draft.Amount
	settled := make([]uint, 0, len(order))
	for _, idx := range order {
		if remaining <= 0 {
			break
		}
		tx := &transactions[idx]
		due := TransactionDue(tx)
		if due <= 0 {
			continue
		}
		delta := due
		if remaining < delta {
			delta = remaining
		}
		tx.PaidAmount += delta
		remaining -= delta
		settled = append(settled, tx.ID)
	}
	if remaining > 0 {
		// ValidatePayment tutarı borçla sınırladığı için buraya normalde düşülmez
		return nil, newValidationError(KindAmountExceedsTotalDue, "amount",
			fmt.Sprintf("tutarın %.2f kadarı hiçbir işleme dağıtılamadı", remaining))
	}

	// Hesap hareketi: müşteri tahsilatı parayı içeri alır, tedarikçi ödemesi dışarı çıkarır
	var resultAccount *models.Account
	if RequiresAccount(draft.PaymentType) {
		if party.Kind == models.PartyKindCustomer {
			account.CurrentBalance += draft.Amount
		} else {
			account.CurrentBalance -= draft.Amount
		}
		resultAccount = account
	}

	event := buildEvent(party, draft, settled)
	return &ApplyResult{Party: party, Transactions: transactions, Account: resultAccount, Event: event}, nil
}

// allocationOrder - transactions dilimindeki indeksleri dağıtım sırasına dizer.
func allocationOrder(transactions []models.Transaction, draft *PaymentDraft) ([]int, error) {
	idxByID := make(map[uint]int, len(transactions))
	for i := range transactions {
		idxByID[transactions[i].ID] = i
	}

	if draft.IsPartial {
		order := make([]int, 0, len(draft.SelectedTransactionIDs))
		for _, id := range draft.SelectedTransactionIDs {
			idx, ok := idxByID[id]
			if !ok {
				return nil, newValidationError(KindTransactionNotOwnedByParty, "selected_transaction_ids",
					fmt.Sprintf("işlem %d bu cariye ait değil", id))
			}
			order = append(order, idx)
		}
		return order, nil
	}

	// Tam ödeme: pozitif borçlular, en eski tarih önce, eşitlikte küçük ID önce
	order := make([]int, 0, len(transactions))
	for i := range transactions {
		if TransactionDue(&transactions[i]) > 0 {
			order = append(order, i)
		}
	}
	sort.Slice(order, func(a, b int) bool {
		ta, tb := &transactions[order[a]], &transactions[order[b]]
		if !ta.Date.Equal(tb.Date) {
			return ta.Date.Before(tb.Date)
		}
		return ta.ID < tb.ID
	})
	return order, nil
}

func buildEvent(party *models.Party, draft *PaymentDraft, settled []uint) *models.PaymentEvent {
	settledJSON := "null"
	if draft.IsPartial && len(settled) > 0 {
		if b, err := json.Marshal(settled); err == nil {
			settledJSON = string(b)
		}
	}
	return &models.PaymentEvent{
		PartyID:               party.ID,
		Amount:                draft.Amount,
		PaymentType:           draft.PaymentType,
		AccountID:             draft.AccountID,
		Reference:             draft.Reference,
		Notes:                 draft.Notes,
		SettledTransactionIDs: settledJSON,
	}
}
