package ledger

import "defter-backend/internal/models"

// Store - Çekirdeğin kalıcılık katmanı sözleşmesi.
// SaveAll atomiktir: ya tüm mutasyonlar yazılır ya hiçbiri.
// InTransaction, verilen fonksiyonu cari ve işlemleri satır kilidiyle okuyan
// tek bir veritabanı transaction'ı içinde çalıştırır; hata dönerse geri alınır.
type Store interface {
	LoadPartyWithTransactions(id uint) (*models.Party, []models.Transaction, error)
	LoadAccount(id uint) (*models.Account, error)
	SaveAll(party *models.Party, transactions []models.Transaction, account *models.Account, event *models.PaymentEvent) error
	InTransaction(fn func(Store) error) error
}

// Service - Ödeme iş akışının tamamı: yükle -> doğrula -> uygula -> kaydet.
// Doğrulama ve uygulama aynı transaction (ve satır kilitleri) içinde yapılır;
// aynı cariye eşzamanlı iki ödeme bayat bir borç okuyup birlikte limit aşamaz.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// ProcessPayment - Ödemeyi uçtan uca işler. Doğrulama hataları hiçbir mutasyon
// yapılmadan döner; kalıcılık hataları *PersistenceError olarak yüzer ve
// otomatik yeniden deneme YAPILMAZ (kimliksiz para hareketi tekrarı güvensizdir).
func (s *Service) ProcessPayment(partyID uint, req PaymentRequest) (*ApplyResult, error) {
	var result *ApplyResult

	err := s.store.InTransaction(func(st Store) error {
		party, transactions, err := st.LoadPartyWithTransactions(partyID)
		if err != nil {
			return err
		}

		var account *models.Account
		if req.AccountID != nil {
			account, err = st.LoadAccount(*req.AccountID)
			if err != nil {
				if pe, ok := err.(*PersistenceError); ok && pe.NotFound {
					return newValidationError(KindAccountNotFound, "account_id", "hesap bulunamadı veya aktif değil")
				}
				return err
			}
		}

		draft, err := ValidatePayment(party, transactions, account, req)
		if err != nil {
			return err
		}

		res, err := ApplyPayment(party, transactions, account, draft)
		if err != nil {
			return err
		}

		if err := st.SaveAll(res.Party, res.Transactions, res.Account, res.Event); err != nil {
			return err
		}

		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// Preview - Uygulamadan önce kalan borç ve yeni avans bakiyesini hesaplar.
func (s *Service) Preview(partyID uint, proposedAmount float64) (*RemainingBalance, float64, error) {
	party, transactions, err := s.store.LoadPartyWithTransactions(partyID)
	if err != nil {
		return nil, 0, err
	}
	balance := ComputeRemainingBalance(party, transactions, proposedAmount)
	return &balance, ComputeDue(transactions), nil
}
