package ledger

import (
	"errors"
	"fmt"
	"testing"
)

func TestValidationErrorFields(t *testing.T) {
	err := newValidationError(KindInvalidAmount, "amount", "tutar 0'dan büyük olmalı")

	if !IsKind(err, KindInvalidAmount) {
		t.Error("IsKind kendi türünü tanımadı")
	}
	if IsKind(err, KindAccountRequired) {
		t.Error("IsKind yanlış türü kabul etti")
	}
	if err.Field != "amount" {
		t.Errorf("field = %q, beklenen \"amount\"", err.Field)
	}
}

func TestIsKindNonValidationError(t *testing.T) {
	if IsKind(errors.New("sıradan hata"), KindInvalidAmount) {
		t.Error("ValidationError olmayan hata kabul edildi")
	}
	if IsKind(nil, KindInvalidAmount) {
		t.Error("nil kabul edildi")
	}
}

func TestPersistenceErrorUnwrap(t *testing.T) {
	inner := errors.New("bağlantı koptu")
	err := &PersistenceError{Op: "save_all", Err: inner}

	if !errors.Is(err, inner) {
		t.Error("Unwrap iç hatayı açmadı")
	}
	if err.Error() != fmt.Sprintf("save_all: %v", inner) {
		t.Errorf("beklenmeyen mesaj: %s", err.Error())
	}

	nf := &PersistenceError{Op: "load_party", NotFound: true}
	if nf.Error() != "load_party: kayıt bulunamadı" {
		t.Errorf("beklenmeyen mesaj: %s", nf.Error())
	}
}
