package ledger

import (
	"errors"

	"defter-backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore - Store'un PostgreSQL (GORM) gerçeklemesi.
// Bir transaction içinde oluşturulduysa (InTransaction) okumalar
// SELECT ... FOR UPDATE ile satır kilidi alır.
type GormStore struct {
	db     *gorm.DB
	locked bool
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) LoadPartyWithTransactions(id uint) (*models.Party, []models.Transaction, error) {
	q := s.db
	if s.locked {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var party models.Party
	if err := q.First(&party, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, &PersistenceError{Op: "load_party", NotFound: true, Err: err}
		}
		return nil, nil, &PersistenceError{Op: "load_party", Err: err}
	}

	var transactions []models.Transaction
	if err := q.Where("party_id = ?", id).
		Order("date asc, id asc").
		Find(&transactions).Error; err != nil {
		return nil, nil, &PersistenceError{Op: "load_party", Err: err}
	}

	return &party, transactions, nil
}

func (s *GormStore) LoadAccount(id uint) (*models.Account, error) {
	q := s.db
	if s.locked {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var account models.Account
	if err := q.First(&account, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &PersistenceError{Op: "load_account", NotFound: true, Err: err}
		}
		return nil, &PersistenceError{Op: "load_account", Err: err}
	}

	return &account, nil
}

// SaveAll - Cari, işlemler, hesap ve ödeme kaydını tek seferde yazar.
// InTransaction dışında çağrılırsa kendi transaction'ını açar.
func (s *GormStore) SaveAll(party *models.Party, transactions []models.Transaction, account *models.Account, event *models.PaymentEvent) error {
	save := func(tx *gorm.DB) error {
		if err := tx.Save(party).Error; err != nil {
			return &PersistenceError{Op: "save_all", Err: err}
		}
		for i := range transactions {
			// Save ile item ilişkilerine dokunmamak için sadece paid_amount güncellenir
			if err := tx.Model(&models.Transaction{}).
				Where("id = ?", transactions[i].ID).
				Update("paid_amount", transactions[i].PaidAmount).Error; err != nil {
				return &PersistenceError{Op: "save_all", Err: err}
			}
		}
		if account != nil {
			if err := tx.Save(account).Error; err != nil {
				return &PersistenceError{Op: "save_all", Err: err}
			}
		}
		if err := tx.Create(event).Error; err != nil {
			return &PersistenceError{Op: "save_all", Err: err}
		}
		return nil
	}

	if s.locked {
		return save(s.db)
	}
	return s.db.Transaction(save)
}

func (s *GormStore) InTransaction(fn func(Store) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx, locked: true})
	})
}
