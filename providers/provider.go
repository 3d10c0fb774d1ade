package providers

import "context"

// Work bündelt die Felder, die die Pipeline aus einer Index-Antwort konsumiert.
type Work struct {
	DOI             string `json:"doi,omitempty"`
	Title           string `json:"title,omitempty"`
	PublicationYear int    `json:"publication_year,omitempty"`
	CitedByCount    int    `json:"cited_by_count"`
	JournalName     string `json:"journal_name,omitempty"`
	ISSN            string `json:"issn,omitempty"`
	OpenAlexID      string `json:"openalex_id,omitempty"`
	IsOA            bool   `json:"is_oa"`
	OAStatus        string `json:"oa_status,omitempty"`
	Language        string `json:"language,omitempty"`
}

// LookupResult ist das explizite Ergebnis einer Index-Abfrage.
// "Nicht gefunden" ist ein regulärer Ausgang, kein Fehler.
type LookupResult struct {
	Found     bool
	StatusTag string
	Work      *Work
}

// ResolveResult ist das Ergebnis eines HTTP-Resolver-Checks.
type ResolveResult struct {
	Valid      bool
	Blocked    bool
	StatusTag  string
	HTTPStatus int
	FinalURL   string
}

// AuthorMetrics sind die bibliometrischen Kennzahlen einer Person.
type AuthorMetrics struct {
	ORCID        string
	DisplayName  string
	WorksCount   int
	CitedByCount int
	HIndex       int
	I10Index     int
}

// AuthorResult ist das Ergebnis einer Autoren-Abfrage beim Index.
type AuthorResult struct {
	Found     bool
	StatusTag string
	Metrics   *AuthorMetrics
}

// RegistryRecord ist der öffentliche Registereintrag einer Person.
type RegistryRecord struct {
	ORCID        string
	DisplayName  string
	GivenNames   string
	FamilyName   string
	Affiliations []string
	Countries    []string
}

// Index ist der primäre bibliographische Index (Existenz + Metadaten).
type Index interface {
	// LookupWork prüft die Existenz eines DOI und liefert Metadaten.
	LookupWork(ctx context.Context, doi string) LookupResult

	// SearchByTitle sucht das beste Werk zu einem Titel.
	SearchByTitle(ctx context.Context, title string) (*Work, bool)

	// AuthorMetricsByORCID liefert Kennzahlen einer Person über ihre ORCID.
	AuthorMetricsByORCID(ctx context.Context, orcid string) AuthorResult

	// Name gibt den eindeutigen Namen des Providers zurück (z.B. "openalex").
	Name() string
}

// Resolver folgt der Resolver-URL eines Identifiers bis zum HTTP-Endstatus.
type Resolver interface {
	Resolve(ctx context.Context, doi string) ResolveResult
	Name() string
}

// Registry ist das Personen-Register (ORCID).
type Registry interface {
	FetchRecord(ctx context.Context, orcid string) (*RegistryRecord, error)
}
