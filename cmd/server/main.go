package main

import (
	"log"
	"strings"

	"defter-backend/internal/account"
	"defter-backend/internal/attendance"
	"defter-backend/internal/audit"
	"defter-backend/internal/config"
	"defter-backend/internal/database"
	"defter-backend/internal/ledger"
	"defter-backend/internal/party"
	"defter-backend/internal/payment"
	"defter-backend/internal/transaction"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	cfg := config.Load()
	database.Init(cfg)

	ledgerSvc := ledger.NewService(ledger.NewGormStore(database.DB))

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Println("Unexpected error:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Beklenmeyen sunucu hatası",
			})
		},
	})

	// CORS origins'i virgülle ayrılmış string'den array'e çevir
	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	// Cari yönetimi (müşteri/tedarikçi)
	api.Post("/parties", party.CreatePartyHandler())
	api.Get("/parties", party.ListPartiesHandler())
	api.Get("/parties/:id", party.GetPartyHandler())
	api.Put("/parties/:id", party.UpdatePartyHandler())
	api.Delete("/parties/:id", party.DeletePartyHandler())
	api.Get("/parties/:id/ledger", party.GetPartyLedgerHandler())

	// Satış/alım işlemleri
	api.Post("/transactions", transaction.CreateTransactionHandler())
	api.Get("/transactions", transaction.ListTransactionsHandler())
	api.Get("/transactions/:id", transaction.GetTransactionHandler())
	api.Delete("/transactions/:id", transaction.DeleteTransactionHandler())

	// Hesap yönetimi (kasa/banka/mobil)
	api.Post("/accounts", account.CreateAccountHandler())
	api.Get("/accounts", account.ListAccountsHandler())
	api.Put("/accounts/:id", account.UpdateAccountHandler())
	api.Delete("/accounts/:id", account.DeleteAccountHandler())
	api.Post("/accounts/:id/movements", account.CreateMovementHandler())
	api.Get("/accounts/:id/movements", account.ListMovementsHandler())

	// Ödeme/tahsilat (borç kapama ve avans)
	api.Post("/payments", payment.CreatePaymentHandler(ledgerSvc))
	api.Post("/payments/advance", payment.CreateAdvancePaymentHandler(ledgerSvc))
	api.Get("/payments", payment.ListPaymentsHandler())
	api.Get("/payments/preview", payment.PreviewPaymentHandler(ledgerSvc))

	// Personel & yoklama
	api.Post("/employees", attendance.CreateEmployeeHandler())
	api.Get("/employees", attendance.ListEmployeesHandler())
	api.Put("/employees/:id", attendance.UpdateEmployeeHandler())
	api.Post("/attendance", attendance.CreateAttendanceHandler())
	api.Get("/attendance", attendance.ListAttendanceHandler())
	api.Get("/attendance/summary/monthly", attendance.MonthlySummaryHandler())

	// Audit logs
	api.Get("/audit-logs", audit.ListAuditLogsHandler())

	log.Println("Server çalışıyor port:", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
