package ledger

import (
	"testing"
	"time"

	"defter-backend/internal/models"
)

// memoryStore - Testler için bellek içi Store. Kilitleme simüle edilmez;
// SaveAll çağrıları kaydedilir ki mutasyonların kalıcılığı doğrulanabilsin.
type memoryStore struct {
	party        *models.Party
	transactions []models.Transaction
	accounts     map[uint]*models.Account
	savedEvents  []*models.PaymentEvent
	saveCalls    int
}

func (m *memoryStore) LoadPartyWithTransactions(id uint) (*models.Party, []models.Transaction, error) {
	if m.party == nil || m.party.ID != id {
		return nil, nil, &PersistenceError{Op: "load_party", NotFound: true}
	}
	partyCopy := *m.party
	txs := make([]models.Transaction, len(m.transactions))
	copy(txs, m.transactions)
	return &partyCopy, txs, nil
}

func (m *memoryStore) LoadAccount(id uint) (*models.Account, error) {
	acc, ok := m.accounts[id]
	if !ok {
		return nil, &PersistenceError{Op: "load_account", NotFound: true}
	}
	accCopy := *acc
	return &accCopy, nil
}

func (m *memoryStore) SaveAll(party *models.Party, transactions []models.Transaction, account *models.Account, event *models.PaymentEvent) error {
	m.party = party
	m.transactions = transactions
	if account != nil {
		m.accounts[account.ID] = account
	}
	m.savedEvents = append(m.savedEvents, event)
	m.saveCalls++
	return nil
}

func (m *memoryStore) InTransaction(fn func(Store) error) error {
	return fn(m)
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		party: &models.Party{ID: 1, Kind: models.PartyKindCustomer, Name: "Test Müşteri"},
		transactions: []models.Transaction{
			{ID: 10, PartyID: 1, GrandTotal: 1000, PaidAmount: 200, Date: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
		},
		accounts: map[uint]*models.Account{
			5: {ID: 5, Type: models.AccountTypeCash, Name: "Ana Kasa", IsActive: true, CurrentBalance: 100},
		},
	}
}

func TestServiceProcessPayment(t *testing.T) {
	store := newMemoryStore()
	svc := NewService(store)

	res, err := svc.ProcessPayment(1, PaymentRequest{
		Amount:      800,
		PaymentType: models.PaymentTypeAccountAdjustment,
		AccountID:   uintPtr(5),
	})
	if err != nil {
		t.Fatalf("ProcessPayment: %v", err)
	}

	if res.Transactions[0].PaidAmount != 1000 {
		t.Errorf("paid_amount = %v, beklenen 1000", res.Transactions[0].PaidAmount)
	}
	if store.saveCalls != 1 {
		t.Errorf("SaveAll %d kez çağrıldı, beklenen 1", store.saveCalls)
	}
	if len(store.savedEvents) != 1 || store.savedEvents[0].Reference == "" {
		t.Errorf("ödeme kaydı eksik: %+v", store.savedEvents)
	}
	if store.accounts[5].CurrentBalance != 900 {
		t.Errorf("hesap bakiyesi = %v, beklenen 900", store.accounts[5].CurrentBalance)
	}
}

func TestServiceProcessPayment_ValidationLeavesNothingPersisted(t *testing.T) {
	store := newMemoryStore()
	svc := NewService(store)

	_, err := svc.ProcessPayment(1, PaymentRequest{
		Amount:      900, // toplam borç 800
		PaymentType: models.PaymentTypeAccountAdjustment,
		AccountID:   uintPtr(5),
	})
	if !IsKind(err, KindAmountExceedsTotalDue) {
		t.Fatalf("beklenen AmountExceedsTotalDue, alınan %v", err)
	}
	if store.saveCalls != 0 {
		t.Error("başarısız doğrulama sonrası SaveAll çağrılmamalı")
	}
	if store.transactions[0].PaidAmount != 200 {
		t.Error("başarısız doğrulama mutasyon bıraktı")
	}
}

func TestServiceProcessPayment_UnknownAccount(t *testing.T) {
	store := newMemoryStore()
	svc := NewService(store)

	_, err := svc.ProcessPayment(1, PaymentRequest{
		Amount:      100,
		PaymentType: models.PaymentTypeCash,
		AccountID:   uintPtr(999),
	})
	if !IsKind(err, KindAccountNotFound) {
		t.Fatalf("beklenen AccountNotFound, alınan %v", err)
	}
}

func TestServiceProcessPayment_PartyNotFound(t *testing.T) {
	store := newMemoryStore()
	svc := NewService(store)

	_, err := svc.ProcessPayment(99, PaymentRequest{
		Amount:      100,
		PaymentType: models.PaymentTypeAdvanceAdjustment,
	})
	pe, ok := err.(*PersistenceError)
	if !ok || !pe.NotFound {
		t.Fatalf("beklenen NotFound PersistenceError, alınan %v", err)
	}
}

func TestServicePreview(t *testing.T) {
	store := newMemoryStore()
	svc := NewService(store)

	balance, totalDue, err := svc.Preview(1, 300)
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if totalDue != 800 {
		t.Errorf("toplam borç = %v, beklenen 800", totalDue)
	}
	if balance.RemainingDue != 500 {
		t.Errorf("kalan borç = %v, beklenen 500", balance.RemainingDue)
	}
	if balance.NewAdvance != 300 {
		t.Errorf("yeni avans = %v, beklenen 300", balance.NewAdvance)
	}
}
