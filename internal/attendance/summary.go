package attendance

import "defter-backend/internal/models"

// MonthlySummary - Bir personelin ay içi yoklama özeti
type MonthlySummary struct {
	EmployeeID   uint   `json:"employee_id"`
	EmployeeName string `json:"employee_name"`
	Present      int    `json:"present"`
	Absent       int    `json:"absent"`
	Late         int    `json:"late"`
	Leave        int    `json:"leave"`
	Total        int    `json:"total"`
}

// Summarize - Kayıtları personel bazında sayar. Kayıt sırasından bağımsızdır.
func Summarize(records []models.AttendanceRecord, employees map[uint]string) []MonthlySummary {
	byEmployee := make(map[uint]*MonthlySummary)
	order := make([]uint, 0)

	for _, r := range records {
		s, ok := byEmployee[r.EmployeeID]
		if !ok {
			s = &MonthlySummary{EmployeeID: r.EmployeeID, EmployeeName: employees[r.EmployeeID]}
			byEmployee[r.EmployeeID] = s
			order = append(order, r.EmployeeID)
		}
		switch r.Status {
		case models.AttendanceStatusPresent:
			s.Present++
		case models.AttendanceStatusAbsent:
			s.Absent++
		case models.AttendanceStatusLate:
			s.Late++
		case models.AttendanceStatusLeave:
			s.Leave++
		}
		s.Total++
	}

	result := make([]MonthlySummary, 0, len(order))
	for _, id := range order {
		result = append(result, *byEmployee[id])
	}
	return result
}
