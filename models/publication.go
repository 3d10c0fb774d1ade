package models

import (
	"time"

	"gorm.io/datatypes"
)

// Status-Werte der DOI-Verifikation.
const (
	DOIStatusPending       = "pending"
	DOIStatusValidOpenAlex = "valid_openalex"
	DOIStatusValidHTTP     = "valid_http"
	DOIStatusBlocked       = "blocked"
	DOIStatusBroken        = "broken"
	DOIStatusRepaired      = "repaired"
)

// CanTransitionDOIStatus prüft, ob ein Statuswechsel erlaubt ist.
// Routine-Audits stufen einen einmal verifizierten DOI nie herab;
// nur eine Reparatur darf "broken" nach "repaired" überführen.
func CanTransitionDOIStatus(from, to string) bool {
	switch from {
	case DOIStatusPending:
		switch to {
		case DOIStatusValidOpenAlex, DOIStatusValidHTTP, DOIStatusBlocked, DOIStatusBroken:
			return true
		}
	case DOIStatusBroken:
		return to == DOIStatusRepaired
	}
	return false
}

// Publication repräsentiert eine wissenschaftliche Publikation und deren
// Identifikations- und Verifikationszustand.
type Publication struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Title string `json:"title" gorm:"not null"`

	// Roh-Autorenzeile, wie aus der Quelle übernommen.
	Authors string `json:"authors,omitempty" gorm:"type:text"`

	// S3-Schlüssel des extrahierten Volltexts; leer, wenn kein Text vorliegt.
	FullTextKey string `json:"full_text_key,omitempty"`

	CanonicalDOI *string `json:"canonical_doi,omitempty" gorm:"column:canonical_doi;uniqueIndex"`
	DOIStatus    string  `json:"doi_status" gorm:"column:doi_status;index;default:'pending'"`

	SourceURL string `json:"source_url,omitempty"`

	// Angereicherte Metadaten des primären Index.
	MetricsData        datatypes.JSON `json:"metrics_data,omitempty" gorm:"type:jsonb"`
	MetricsLastUpdated *time.Time     `json:"metrics_last_updated,omitempty"`
}

func (Publication) TableName() string {
	return "publications"
}
