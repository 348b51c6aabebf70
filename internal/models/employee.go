package models

import "time"

// Employee - Personel
type Employee struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:200;not null"`
	Phone     string `gorm:"size:50"`  // Opsiyonel telefon
	Title     string `gorm:"size:100"` // Görev/unvan (opsiyonel)
	IsActive  bool   `gorm:"default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AttendanceStatus - Yoklama durumu
type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "present" // geldi
	AttendanceStatusAbsent  AttendanceStatus = "absent"  // gelmedi
	AttendanceStatusLate    AttendanceStatus = "late"    // geç geldi
	AttendanceStatusLeave   AttendanceStatus = "leave"   // izinli
)

// AttendanceRecord - Günlük yoklama kaydı. Personel başına günde bir kayıt.
type AttendanceRecord struct {
	ID         uint             `gorm:"primaryKey"`
	EmployeeID uint             `gorm:"not null;uniqueIndex:idx_attendance_employee_date"`
	Employee   Employee         `gorm:"foreignKey:EmployeeID"`
	Date       time.Time        `gorm:"not null;uniqueIndex:idx_attendance_employee_date"` // gün bazlı
	Status     AttendanceStatus `gorm:"size:20;not null"` // present / absent / late / leave
	Notes      string           `gorm:"size:255"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
