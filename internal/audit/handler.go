package audit

import (
	"fmt"

	"defter-backend/internal/database"
	"defter-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GET /api/audit-logs?entity_type=...&entity_id=...&limit=...&offset=...
func ListAuditLogsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.AuditLog{})

		if et := c.Query("entity_type"); et != "" {
			dbq = dbq.Where("entity_type = ?", et)
		}
		if eidStr := c.Query("entity_id"); eidStr != "" {
			var eid uint
			if _, err := fmt.Sscan(eidStr, &eid); err != nil || eid == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "entity_id geçersiz")
			}
			dbq = dbq.Where("entity_id = ?", eid)
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

		var logs []models.AuditLog
		if err := dbq.Order("created_at desc, id desc").
			Limit(limit).Offset(offset).
			Find(&logs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Loglar listelenemedi")
		}

		return c.JSON(logs)
	}
}
