package models

import (
	"time"
)

// MergeLog protokolliert eine einzelne Feld-Entscheidung eines Person-Merges:
// welcher Wert von welchem Duplikat in den kanonischen Datensatz übernommen
// wurde.
type MergeLog struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	CanonicalID uint   `json:"canonical_id" gorm:"index"`
	DuplicateID uint   `json:"duplicate_id" gorm:"index"`
	Field       string `json:"field"`
	Value       string `json:"value"`
}

func (MergeLog) TableName() string {
	return "merge_logs"
}
