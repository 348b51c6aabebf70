package ledger

import (
	"math"
	"testing"
	"time"

	"defter-backend/internal/models"
)

func day(n int) time.Time {
	return time.Date(2026, 3, n, 0, 0, 0, 0, time.UTC)
}

func uintPtr(v uint) *uint { return &v }

func newCustomer() *models.Party {
	return &models.Party{ID: 1, Kind: models.PartyKindCustomer, Name: "Test Müşteri"}
}

func newSupplier() *models.Party {
	return &models.Party{ID: 2, Kind: models.PartyKindSupplier, Name: "Test Tedarikçi"}
}

func activeAccount(id uint) *models.Account {
	return &models.Account{ID: id, Type: models.AccountTypeCash, Name: "Ana Kasa", IsActive: true}
}

func TestTransactionDue(t *testing.T) {
	tests := []struct {
		name string
		tx   models.Transaction
		want float64
	}{
		{"hiç ödenmemiş", models.Transaction{GrandTotal: 1000, PaidAmount: 0}, 1000},
		{"kısmen ödenmiş", models.Transaction{GrandTotal: 1000, PaidAmount: 200}, 800},
		{"tamamı ödenmiş", models.Transaction{GrandTotal: 1000, PaidAmount: 1000}, 0},
		{"fazla ödenmiş (asla negatif dönmez)", models.Transaction{GrandTotal: 1000, PaidAmount: 1500}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TransactionDue(&tt.tx); got != tt.want {
				t.Errorf("TransactionDue = %v, beklenen %v", got, tt.want)
			}
		})
	}
}

func TestComputeDue_OrderInvariant(t *testing.T) {
	a := models.Transaction{ID: 1, GrandTotal: 300, PaidAmount: 100}
	b := models.Transaction{ID: 2, GrandTotal: 500, PaidAmount: 0}
	c := models.Transaction{ID: 3, GrandTotal: 200, PaidAmount: 400} // fazla ödenmiş, 0 katkı

	forward := ComputeDue([]models.Transaction{a, b, c})
	backward := ComputeDue([]models.Transaction{c, b, a})

	if forward != 700 {
		t.Errorf("ComputeDue = %v, beklenen 700", forward)
	}
	if forward != backward {
		t.Errorf("ComputeDue sıraya bağımlı: %v != %v", forward, backward)
	}
}

func TestValidatePayment_InvalidAmount(t *testing.T) {
	party := newCustomer()
	txs := []models.Transaction{{ID: 10, PartyID: party.ID, GrandTotal: 100}}

	for _, amount := range []float64{0, -50} {
		_, err := ValidatePayment(party, txs, nil, PaymentRequest{
			Amount:      amount,
			PaymentType: models.PaymentTypeAdvanceAdjustment,
		})
		if !IsKind(err, KindInvalidAmount) {
			t.Errorf("amount=%v: beklenen InvalidAmount, alınan %v", amount, err)
		}
	}
}

func TestValidatePayment_AmountExceedsTotalDue(t *testing.T) {
	// Senaryo D: toplam borç 800 iken 900 istenirse reddedilir
	party := newCustomer()
	txs := []models.Transaction{
		{ID: 10, PartyID: party.ID, GrandTotal: 500, PaidAmount: 0, Date: day(1)},
		{ID: 11, PartyID: party.ID, GrandTotal: 400, PaidAmount: 100, Date: day(2)},
	}

	_, err := ValidatePayment(party, txs, nil, PaymentRequest{
		Amount:      900,
		PaymentType: models.PaymentTypeAdvanceAdjustment,
	})
	if !IsKind(err, KindAmountExceedsTotalDue) {
		t.Fatalf("beklenen AmountExceedsTotalDue, alınan %v", err)
	}
}

func TestValidatePayment_AccountRequired(t *testing.T) {
	// Senaryo E: account_adjustment hesapsız olmaz
	party := newCustomer()
	txs := []models.Transaction{{ID: 10, PartyID: party.ID, GrandTotal: 100, Date: day(1)}}

	_, err := ValidatePayment(party, txs, nil, PaymentRequest{
		Amount:      50,
		PaymentType: models.PaymentTypeAccountAdjustment,
	})
	if !IsKind(err, KindAccountRequired) {
		t.Fatalf("beklenen AccountRequired, alınan %v", err)
	}
}

func TestValidatePayment_AccountNotFound(t *testing.T) {
	party := newCustomer()
	txs := []models.Transaction{{ID: 10, PartyID: party.ID, GrandTotal: 100, Date: day(1)}}

	// hesap pasifse de bulunamadı sayılır
	inactive := activeAccount(5)
	inactive.IsActive = false

	_, err := ValidatePayment(party, txs, inactive, PaymentRequest{
		Amount:      50,
		PaymentType: models.PaymentTypeCash,
		AccountID:   uintPtr(5),
	})
	if !IsKind(err, KindAccountNotFound) {
		t.Fatalf("beklenen AccountNotFound, alınan %v", err)
	}
}

func TestValidatePayment_Partial(t *testing.T) {
	party := newSupplier()
	txs := []models.Transaction{
		{ID: 20, PartyID: party.ID, GrandTotal: 300, PaidAmount: 0, Date: day(1)},
		{ID: 21, PartyID: party.ID, GrandTotal: 500, PaidAmount: 0, Date: day(2)},
		{ID: 22, PartyID: party.ID, GrandTotal: 100, PaidAmount: 100, Date: day(3)}, // borcu yok
	}

	tests := []struct {
		name     string
		req      PaymentRequest
		wantKind ErrorKind
		wantOK   bool
	}{
		{
			name: "boş seçim reddedilir",
			req: PaymentRequest{Amount: 100, PaymentType: models.PaymentTypeAdvanceAdjustment,
				IsPartial: true},
			wantKind: KindAmountExceedsSelectedDue,
		},
		{
			name: "yabancı işlem reddedilir",
			req: PaymentRequest{Amount: 100, PaymentType: models.PaymentTypeAdvanceAdjustment,
				IsPartial: true, SelectedTransactionIDs: []uint{999}},
			wantKind: KindTransactionNotOwnedByParty,
		},
		{
			name: "borcu bitmiş işlem seçilemez",
			req: PaymentRequest{Amount: 100, PaymentType: models.PaymentTypeAdvanceAdjustment,
				IsPartial: true, SelectedTransactionIDs: []uint{22}},
			wantKind: KindAmountExceedsSelectedDue,
		},
		{
			name: "tutar seçilen borcu aşamaz",
			req: PaymentRequest{Amount: 600, PaymentType: models.PaymentTypeAdvanceAdjustment,
				IsPartial: true, SelectedTransactionIDs: []uint{21}},
			wantKind: KindAmountExceedsSelectedDue,
		},
		{
			name: "geçerli parçalı istek",
			req: PaymentRequest{Amount: 300, PaymentType: models.PaymentTypeAdvanceAdjustment,
				IsPartial: true, SelectedTransactionIDs: []uint{21}},
			wantOK: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft, err := ValidatePayment(party, txs, nil, tt.req)
			if tt.wantOK {
				if err != nil {
					t.Fatalf("beklenmeyen hata: %v", err)
				}
				if draft.Reference == "" {
					t.Error("taslakta reference boş")
				}
				return
			}
			if !IsKind(err, tt.wantKind) {
				t.Errorf("beklenen %s, alınan %v", tt.wantKind, err)
			}
		})
	}
}

func TestApplyPayment_FullSettlement(t *testing.T) {
	// Senaryo A: 1000'lik satış, 200 ödenmiş; 800 tahsilat borcu sıfırlar,
	// müşteri tahsilatı hesaba para girişi yapar, avans bu yoldan değişmez
	party := newCustomer()
	txs := []models.Transaction{
		{ID: 10, PartyID: party.ID, GrandTotal: 1000, PaidAmount: 200, Date: day(1)},
	}
	account := activeAccount(5)
	account.CurrentBalance = 100

	draft, err := ValidatePayment(party, txs, account, PaymentRequest{
		Amount:      800,
		PaymentType: models.PaymentTypeAccountAdjustment,
		AccountID:   uintPtr(5),
	})
	if err != nil {
		t.Fatalf("ValidatePayment: %v", err)
	}

	res, err := ApplyPayment(party, txs, account, draft)
	if err != nil {
		t.Fatalf("ApplyPayment: %v", err)
	}

	if res.Transactions[0].PaidAmount != 1000 {
		t.Errorf("paid_amount = %v, beklenen 1000", res.Transactions[0].PaidAmount)
	}
	if got := ComputeDue(res.Transactions); got != 0 {
		t.Errorf("kalan borç = %v, beklenen 0", got)
	}
	if res.Account.CurrentBalance != 900 {
		t.Errorf("hesap bakiyesi = %v, beklenen 900 (100 + 800 tahsilat)", res.Account.CurrentBalance)
	}
	if res.Party.AdvanceAmount != 0 {
		t.Errorf("avans bu yoldan değişmemeli, bulunan %v", res.Party.AdvanceAmount)
	}
	if res.Event.Amount != 800 || res.Event.PaymentType != models.PaymentTypeAccountAdjustment {
		t.Errorf("beklenmeyen event: %+v", res.Event)
	}
}

func TestApplyPayment_SupplierAccountDirection(t *testing.T) {
	// Tedarikçi ödemesi parayı hesaptan çıkarır
	party := newSupplier()
	txs := []models.Transaction{
		{ID: 20, PartyID: party.ID, GrandTotal: 500, PaidAmount: 0, Date: day(1)},
	}
	account := activeAccount(5)
	account.CurrentBalance = 1000

	draft, err := ValidatePayment(party, txs, account, PaymentRequest{
		Amount:      500,
		PaymentType: models.PaymentTypeBankTransfer,
		AccountID:   uintPtr(5),
	})
	if err != nil {
		t.Fatalf("ValidatePayment: %v", err)
	}

	res, err := ApplyPayment(party, txs, account, draft)
	if err != nil {
		t.Fatalf("ApplyPayment: %v", err)
	}
	if res.Account.CurrentBalance != 500 {
		t.Errorf("hesap bakiyesi = %v, beklenen 500 (1000 - 500 ödeme)", res.Account.CurrentBalance)
	}
}

func TestApplyPayment_AdvanceAdjustment(t *testing.T) {
	// Senaryo B: advance_adjustment işlem borcunu KAPATMAZ, sadece avans değişir
	party := newCustomer()
	txs := []models.Transaction{
		{ID: 10, PartyID: party.ID, GrandTotal: 1000, PaidAmount: 200, Date: day(1)},
	}

	draft, err := ValidatePayment(party, txs, nil, PaymentRequest{
		Amount:      800,
		PaymentType: models.PaymentTypeAdvanceAdjustment,
	})
	if err != nil {
		t.Fatalf("ValidatePayment: %v", err)
	}

	res, err := ApplyPayment(party, txs, nil, draft)
	if err != nil {
		t.Fatalf("ApplyPayment: %v", err)
	}

	if res.Transactions[0].PaidAmount != 200 {
		t.Errorf("paid_amount değişmemeli, bulunan %v", res.Transactions[0].PaidAmount)
	}
	if res.Party.AdvanceAmount != 800 {
		t.Errorf("avans = %v, beklenen 800", res.Party.AdvanceAmount)
	}
	if res.Account != nil {
		t.Error("advance_adjustment hesaba dokunmamalı")
	}
}

func TestApplyPayment_AdvanceAdjustmentSupplierSign(t *testing.T) {
	party := newSupplier()
	party.AdvanceAmount = 100
	txs := []models.Transaction{
		{ID: 20, PartyID: party.ID, GrandTotal: 500, PaidAmount: 0, Date: day(1)},
	}

	draft, err := ValidatePayment(party, txs, nil, PaymentRequest{
		Amount:      300,
		PaymentType: models.PaymentTypeAdvanceAdjustment,
	})
	if err != nil {
		t.Fatalf("ValidatePayment: %v", err)
	}

	res, err := ApplyPayment(party, txs, nil, draft)
	if err != nil {
		t.Fatalf("ApplyPayment: %v", err)
	}
	if res.Party.AdvanceAmount != -200 {
		t.Errorf("tedarikçi avansı = %v, beklenen -200 (100 - 300)", res.Party.AdvanceAmount)
	}
}

func TestApplyPayment_PartialSelection(t *testing.T) {
	// Senaryo C: 300 ve 500 borçlu iki alım; sadece 500'lük seçilirse 300'lük dokunulmaz
	party := newSupplier()
	txs := []models.Transaction{
		{ID: 20, PartyID: party.ID, GrandTotal: 300, PaidAmount: 0, Date: day(1)}, // en eski
		{ID: 21, PartyID: party.ID, GrandTotal: 500, PaidAmount: 0, Date: day(2)},
	}
	account := activeAccount(5)

	draft, err := ValidatePayment(party, txs, account, PaymentRequest{
		Amount:                 300,
		PaymentType:            models.PaymentTypeCash,
		AccountID:              uintPtr(5),
		IsPartial:              true,
		SelectedTransactionIDs: []uint{21},
	})
	if err != nil {
		t.Fatalf("ValidatePayment: %v", err)
	}

	res, err := ApplyPayment(party, txs, account, draft)
	if err != nil {
		t.Fatalf("ApplyPayment: %v", err)
	}

	if res.Transactions[0].PaidAmount != 0 {
		t.Errorf("seçilmeyen işlem değişmemeli, bulunan paid=%v", res.Transactions[0].PaidAmount)
	}
	if res.Transactions[1].PaidAmount != 300 {
		t.Errorf("seçilen işlem paid = %v, beklenen 300", res.Transactions[1].PaidAmount)
	}
	if res.Event.SettledTransactionIDs != "[21]" {
		t.Errorf("settled ids = %s, beklenen [21]", res.Event.SettledTransactionIDs)
	}
}

func TestApplyPayment_OldestFirstAllocation(t *testing.T) {
	// Tam ödeme en eski işlemden başlar; aynı tarihte küçük ID önce
	party := newCustomer()
	txs := []models.Transaction{
		{ID: 12, PartyID: party.ID, GrandTotal: 200, PaidAmount: 0, Date: day(2)},
		{ID: 11, PartyID: party.ID, GrandTotal: 300, PaidAmount: 0, Date: day(1)},
		{ID: 10, PartyID: party.ID, GrandTotal: 100, PaidAmount: 0, Date: day(1)},
	}
	account := activeAccount(5)

	draft, err := ValidatePayment(party, txs, account, PaymentRequest{
		Amount:      350,
		PaymentType: models.PaymentTypeAccountAdjustment,
		AccountID:   uintPtr(5),
	})
	if err != nil {
		t.Fatalf("ValidatePayment: %v", err)
	}

	res, err := ApplyPayment(party, txs, account, draft)
	if err != nil {
		t.Fatalf("ApplyPayment: %v", err)
	}

	// day(1): önce ID 10 (100 tamamı), sonra ID 11 (250'si); day(2): ID 12 dokunulmaz
	byID := map[uint]float64{}
	for _, tx := range res.Transactions {
		byID[tx.ID] = tx.PaidAmount
	}
	if byID[10] != 100 || byID[11] != 250 || byID[12] != 0 {
		t.Errorf("dağıtım beklenenden farklı: %v", byID)
	}
}

func TestApplyPayment_Conservation(t *testing.T) {
	// Korunum: paid_amount artışlarının toplamı tam olarak ödeme tutarına eşit
	party := newCustomer()
	txs := []models.Transaction{
		{ID: 10, PartyID: party.ID, GrandTotal: 123.45, PaidAmount: 23.45, Date: day(1)},
		{ID: 11, PartyID: party.ID, GrandTotal: 700, PaidAmount: 150, Date: day(2)},
		{ID: 12, PartyID: party.ID, GrandTotal: 90, PaidAmount: 90, Date: day(3)},
	}
	account := activeAccount(5)

	before := 0.0
	for _, tx := range txs {
		before += tx.PaidAmount
	}

	const amount = 400
	draft, err := ValidatePayment(party, txs, account, PaymentRequest{
		Amount:      amount,
		PaymentType: models.PaymentTypeCard,
		AccountID:   uintPtr(5),
	})
	if err != nil {
		t.Fatalf("ValidatePayment: %v", err)
	}

	res, err := ApplyPayment(party, txs, account, draft)
	if err != nil {
		t.Fatalf("ApplyPayment: %v", err)
	}

	after := 0.0
	for _, tx := range res.Transactions {
		after += tx.PaidAmount
		if TransactionDue(&tx) < 0 {
			t.Errorf("işlem %d borcu negatife düştü", tx.ID)
		}
	}
	if math.Abs(after-before-amount) > 1e-9 {
		t.Errorf("korunum bozuldu: önce=%v sonra=%v tutar=%v", before, after, amount)
	}
}

func TestApplyPayment_CorruptedDataAborts(t *testing.T) {
	party := newCustomer()
	txs := []models.Transaction{
		{ID: 10, PartyID: party.ID, GrandTotal: -50, PaidAmount: 0, Date: day(1)},
		{ID: 11, PartyID: party.ID, GrandTotal: 500, PaidAmount: 0, Date: day(2)},
	}
	account := activeAccount(5)

	draft := &PaymentDraft{
		PartyID:     party.ID,
		Amount:      100,
		PaymentType: models.PaymentTypeCash,
		AccountID:   uintPtr(5),
		Reference:   "test-ref",
	}

	_, err := ApplyPayment(party, txs, account, draft)
	if err == nil {
		t.Fatal("bozuk veri ile uygulama hata vermeli")
	}
	// hiçbir mutasyon yapılmamış olmalı
	if txs[1].PaidAmount != 0 || account.CurrentBalance != 0 || party.AdvanceAmount != 0 {
		t.Error("başarısız uygulama kısmi mutasyon bıraktı")
	}
}

func TestComputeRemainingBalance(t *testing.T) {
	txs := []models.Transaction{
		{ID: 10, GrandTotal: 1000, PaidAmount: 200, Date: day(1)},
	}

	customer := newCustomer()
	customer.AdvanceAmount = 50
	got := ComputeRemainingBalance(customer, txs, 300)
	if got.RemainingDue != 500 {
		t.Errorf("kalan borç = %v, beklenen 500", got.RemainingDue)
	}
	if got.NewAdvance != 350 {
		t.Errorf("müşteri yeni avans = %v, beklenen 350", got.NewAdvance)
	}

	supplier := newSupplier()
	supplier.AdvanceAmount = 50
	got = ComputeRemainingBalance(supplier, txs, 900)
	if got.RemainingDue != 0 {
		t.Errorf("kalan borç tabanı 0 olmalı, bulunan %v", got.RemainingDue)
	}
	if got.NewAdvance != -850 {
		t.Errorf("tedarikçi yeni avans = %v, beklenen -850", got.NewAdvance)
	}
}
