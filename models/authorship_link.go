package models

import (
	"time"
)

// Match-Methoden für Autorschafts-Links, absteigend nach Evidenzstärke.
const (
	MatchMethodORCID    = "orcid"
	MatchMethodExact    = "exact"
	MatchMethodInitials = "initials"
	MatchMethodFuzzy    = "fuzzy"
	MatchMethodManual   = "manual"
)

// AuthorshipLink verbindet eine Person mit einer Publikation. Pro Paar
// (Person, Publikation) existiert höchstens ein Link; der Score ist die
// beste verfügbare Evidenz, keine Garantie.
type AuthorshipLink struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	PersonID      uint `json:"person_id" gorm:"index:idx_authorship_pair,unique;not null"`
	PublicationID uint `json:"publication_id" gorm:"index:idx_authorship_pair,unique;not null"`

	// Konfidenz 0-100.
	Score  int    `json:"score"`
	Method string `json:"method" gorm:"index"`
}

func (AuthorshipLink) TableName() string {
	return "authorship_links"
}
