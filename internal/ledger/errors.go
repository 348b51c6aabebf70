package ledger

import "fmt"

// ErrorKind - Doğrulama/kayıt hatası türleri
type ErrorKind string

const (
	KindInvalidAmount             ErrorKind = "invalid_amount"
	KindAmountExceedsSelectedDue  ErrorKind = "amount_exceeds_selected_due"
	KindAmountExceedsTotalDue     ErrorKind = "amount_exceeds_total_due"
	KindAccountRequired           ErrorKind = "account_required"
	KindAccountNotFound           ErrorKind = "account_not_found"
	KindTransactionNotOwnedByParty ErrorKind = "transaction_not_owned_by_party"
	KindPersistenceError          ErrorKind = "persistence_error"
)

// ValidationError - Alan bazlı, yapılandırılmış doğrulama hatası.
// Field, sunum katmanının hatalı girdiyi işaretleyebilmesi için istek alanının adını taşır.
type ValidationError struct {
	Kind    ErrorKind
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s [%s]: %s", e.Kind, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func newValidationError(kind ErrorKind, field, message string) *ValidationError {
	return &ValidationError{Kind: kind, Field: field, Message: message}
}

// IsKind - err verilen türde bir ValidationError mı?
func IsKind(err error, kind ErrorKind) bool {
	ve, ok := err.(*ValidationError)
	return ok && ve.Kind == kind
}

// PersistenceError - Kalıcılık katmanından gelen hatalar (bulunamadı / yazılamadı).
// Çekirdek yeniden denemez; çağıran kullanıcıya tekrar dene seçeneği sunar.
type PersistenceError struct {
	Op       string // "load_party", "load_account", "save_all"
	NotFound bool
	Err      error
}

func (e *PersistenceError) Error() string {
	if e.NotFound {
		return fmt.Sprintf("%s: kayıt bulunamadı", e.Op)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
