package attendance

import (
	"fmt"
	"strings"
	"time"

	"defter-backend/internal/audit"
	"defter-backend/internal/database"
	"defter-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

// -------------------------
// Request/Response Types
// -------------------------

type CreateEmployeeRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Title string `json:"title"`
}

type UpdateEmployeeRequest struct {
	Name     *string `json:"name"`
	Phone    *string `json:"phone"`
	Title    *string `json:"title"`
	IsActive *bool   `json:"is_active"`
}

type EmployeeResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Title     string `json:"title"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type CreateAttendanceRequest struct {
	EmployeeID uint   `json:"employee_id"`
	Date       string `json:"date"` // "2025-12-09"
	Status     string `json:"status"` // present / absent / late / leave
	Notes      string `json:"notes"`
}

type AttendanceResponse struct {
	ID         uint   `json:"id"`
	EmployeeID uint   `json:"employee_id"`
	Date       string `json:"date"`
	Status     string `json:"status"`
	Notes      string `json:"notes"`
}

func toEmployeeResponse(e *models.Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:        e.ID,
		Name:      e.Name,
		Phone:     e.Phone,
		Title:     e.Title,
		IsActive:  e.IsActive,
		CreatedAt: e.CreatedAt.Format(time.RFC3339),
		UpdatedAt: e.UpdatedAt.Format(time.RFC3339),
	}
}

func validStatus(s string) bool {
	switch models.AttendanceStatus(s) {
	case models.AttendanceStatusPresent, models.AttendanceStatusAbsent,
		models.AttendanceStatusLate, models.AttendanceStatusLeave:
		return true
	}
	return false
}

// -------------------------
// Employee CRUD
// -------------------------

// POST /api/employees
func CreateEmployeeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateEmployeeRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}
		if strings.TrimSpace(body.Name) == "" {
			return fiber.NewError(fiber.StatusBadRequest, "isim boş olamaz")
		}

		employee := models.Employee{
			Name:     strings.TrimSpace(body.Name),
			Phone:    strings.TrimSpace(body.Phone),
			Title:    strings.TrimSpace(body.Title),
			IsActive: true,
		}

		if err := database.DB.Create(&employee).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Personel kaydedilemedi")
		}

		if logErr := audit.WriteLog(audit.LogOptions{
			EntityType:  "employee",
			EntityID:    employee.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Personel eklendi: %s", employee.Name),
			Before:      nil,
			After:       toEmployeeResponse(&employee),
		}); logErr != nil {
			fmt.Printf("Audit log yazılamadı: %v\n", logErr)
		}

		return c.Status(fiber.StatusCreated).JSON(toEmployeeResponse(&employee))
	}
}

// GET /api/employees?active=true
func ListEmployeesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.Employee{})
		if c.Query("active") == "true" {
			dbq = dbq.Where("is_active = true")
		}

		var employees []models.Employee
		if err := dbq.Order("name asc").Find(&employees).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Personeller listelenemedi")
		}

		resp := make([]EmployeeResponse, 0, len(employees))
		for i := range employees {
			resp = append(resp, toEmployeeResponse(&employees[i]))
		}

		return c.JSON(resp)
	}
}

// PUT /api/employees/:id
func UpdateEmployeeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		var employee models.Employee
		if err := database.DB.First(&employee, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Personel bulunamadı")
		}

		var body UpdateEmployeeRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}

		beforeData := toEmployeeResponse(&employee)
		updated := false

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "isim boş olamaz")
			}
			employee.Name = name
			updated = true
		}
		if body.Phone != nil {
			employee.Phone = strings.TrimSpace(*body.Phone)
			updated = true
		}
		if body.Title != nil {
			employee.Title = strings.TrimSpace(*body.Title)
			updated = true
		}
		if body.IsActive != nil {
			employee.IsActive = *body.IsActive
			updated = true
		}

		if !updated {
			return c.JSON(toEmployeeResponse(&employee))
		}

		if err := database.DB.Save(&employee).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Personel güncellenemedi")
		}

		if logErr := audit.WriteLog(audit.LogOptions{
			EntityType:  "employee",
			EntityID:    employee.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Personel güncellendi: %s", employee.Name),
			Before:      beforeData,
			After:       toEmployeeResponse(&employee),
		}); logErr != nil {
			fmt.Printf("Audit log yazılamadı: %v\n", logErr)
		}

		return c.JSON(toEmployeeResponse(&employee))
	}
}

// -------------------------
// Attendance
// -------------------------

// POST /api/attendance
// Personel başına günde bir kayıt; aynı gün tekrar gönderilirse durum güncellenir.
func CreateAttendanceHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateAttendanceRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}

		if !validStatus(body.Status) {
			return fiber.NewError(fiber.StatusBadRequest, "status 'present', 'absent', 'late' veya 'leave' olmalı")
		}

		var employee models.Employee
		if err := database.DB.First(&employee, "id = ?", body.EmployeeID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "employee_id geçersiz")
		}
		if !employee.IsActive {
			return fiber.NewError(fiber.StatusBadRequest, "Pasif personel için yoklama girilemez")
		}

		d, err := time.Parse("2006-01-02", body.Date)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Tarih formatı 'YYYY-MM-DD' olmalı")
		}

		var record models.AttendanceRecord
		err = database.DB.Where("employee_id = ? AND date = ?", employee.ID, d).First(&record).Error
		if err == nil {
			// Aynı güne ikinci giriş: güncelle
			record.Status = models.AttendanceStatus(body.Status)
			record.Notes = strings.TrimSpace(body.Notes)
			if err := database.DB.Save(&record).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Yoklama güncellenemedi")
			}
		} else {
			record = models.AttendanceRecord{
				EmployeeID: employee.ID,
				Date:       d,
				Status:     models.AttendanceStatus(body.Status),
				Notes:      strings.TrimSpace(body.Notes),
			}
			if err := database.DB.Create(&record).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Yoklama kaydedilemedi")
			}
		}

		return c.Status(fiber.StatusCreated).JSON(AttendanceResponse{
			ID:         record.ID,
			EmployeeID: record.EmployeeID,
			Date:       record.Date.Format("2006-01-02"),
			Status:     string(record.Status),
			Notes:      record.Notes,
		})
	}
}

// GET /api/attendance?employee_id=...&from=...&to=...
func ListAttendanceHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.AttendanceRecord{})

		if eidStr := c.Query("employee_id"); eidStr != "" {
			var eid uint
			if _, err := fmt.Sscan(eidStr, &eid); err != nil || eid == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "employee_id geçersiz")
			}
			dbq = dbq.Where("employee_id = ?", eid)
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

		var records []models.AttendanceRecord
		if err := dbq.Order("date desc, id desc").Find(&records).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Yoklamalar listelenemedi")
		}

		resp := make([]AttendanceResponse, 0, len(records))
		for _, r := range records {
			resp = append(resp, AttendanceResponse{
				ID:         r.ID,
				EmployeeID: r.EmployeeID,
				Date:       r.Date.Format("2006-01-02"),
				Status:     string(r.Status),
				Notes:      r.Notes,
			})
		}

		return c.JSON(resp)
	}
}

// GET /api/attendance/summary/monthly?year=2025&month=12
func MonthlySummaryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		yearStr := c.Query("year")
		monthStr := c.Query("month")
		if yearStr == "" || monthStr == "" {
			return fiber.NewError(fiber.StatusBadRequest, "year ve month zorunlu")
		}

		var year, month int
		if _, err := fmt.Sscan(yearStr, &year); err != nil || year < 2000 {
			return fiber.NewError(fiber.StatusBadRequest, "year geçersiz")
		}
		if _, err := fmt.Sscan(monthStr, &month); err != nil || month < 1 || month > 12 {
			return fiber.NewError(fiber.StatusBadRequest, "month geçersiz")
		}

		loc := time.Now().Location()
		firstDay := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
		lastDay := firstDay.AddDate(0, 1, -1)

		var records []models.AttendanceRecord
		if err := database.DB.Where("date >= ? AND date <= ?", firstDay, lastDay).
			Order("employee_id asc, date asc").
			Find(&records).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Yoklamalar listelenemedi")
		}

		var employees []models.Employee
		if err := database.DB.Find(&employees).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Personeller listelenemedi")
		}
		names := make(map[uint]string, len(employees))
		for _, e := range employees {
			names[e.ID] = e.Name
		}

		return c.JSON(fiber.Map{
			"year":    year,
			"month":   month,
			"summary": Summarize(records, names),
		})
	}
}
