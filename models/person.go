package models

import (
	"time"
)

// Kategorien, die eine Person als reguläres Mitglied des Rosters ausweisen.
const (
	CategoryPrincipal = "Principal"
	CategoryAsociado  = "Asociado"
	CategoryAdjunto   = "Adjunto"
)

// Person repräsentiert eine Forscherin oder einen Forscher im Roster.
type Person struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	FullName string  `json:"full_name" gorm:"not null;index"`
	Email    *string `json:"email,omitempty"`

	// Persistente externe ID (ORCID), eindeutig über das Roster.
	ORCID *string `json:"orcid,omitempty" gorm:"column:orcid;uniqueIndex"`

	Category *string `json:"category,omitempty" gorm:"index"`
	Active   bool    `json:"active" gorm:"default:true;index"`

	// Bibliometrische Kennzahlen, via Index-Anreicherung befüllt.
	CitationCount *int `json:"citation_count,omitempty"`
	HIndex        *int `json:"h_index,omitempty"`
	I10Index      *int `json:"i10_index,omitempty"`
	WorkCount     *int `json:"work_count,omitempty"`

	LastMetricsSync *time.Time `json:"last_metrics_sync,omitempty"`

	// Vorberechnete Zitierformen des Namens, mit '|' verbunden.
	NameVariations string `json:"name_variations,omitempty" gorm:"type:text"`

	// Betreuungs-Verweise: Studierende zeigen auf ihre Tutoren.
	TutorID   *uint `json:"tutor_id,omitempty" gorm:"index"`
	CoTutorID *uint `json:"co_tutor_id,omitempty" gorm:"index"`
}

func (Person) TableName() string {
	return "persons"
}

// HasCategory meldet, ob die Person eine Rollen-Kategorie trägt.
func (p *Person) HasCategory() bool {
	return p.Category != nil && *p.Category != ""
}
