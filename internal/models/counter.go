package models

import "time"

// Counter backs the monthly application-number sequence. ID is "<prefix>_MMYY".
type Counter struct {
	ID        string    `json:"id" gorm:"primaryKey;size:64"`
	Prefix    string    `json:"prefix" gorm:"size:8;not null"`
	Current   int64     `json:"current" gorm:"not null"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CounterBase is the logical seed of every month; the first issued number is CounterBase+1.
const CounterBase int64 = 100
