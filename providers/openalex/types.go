package openalex

// WorkResponse bildet die konsumierten Felder einer Works-Antwort ab.
type WorkResponse struct {
	ID              string `json:"id"`
	DOI             string `json:"doi"`
	DisplayName     string `json:"display_name"`
	Title           string `json:"title"`
	PublicationYear int    `json:"publication_year"`
	CitedByCount    int    `json:"cited_by_count"`
	Language        string `json:"language"`
	PrimaryLocation struct {
		IsOA   bool `json:"is_oa"`
		Source struct {
			ID          string `json:"id"`
			DisplayName string `json:"display_name"`
			ISSNL       string `json:"issn_l"`
			Type        string `json:"type"`
		} `json:"source"`
	} `json:"primary_location"`
	OpenAccess struct {
		IsOA     bool   `json:"is_oa"`
		OAStatus string `json:"oa_status"`
	} `json:"open_access"`
}

// WorksListResponse ist die Antwort einer Titelsuche.
type WorksListResponse struct {
	Meta struct {
		Count int `json:"count"`
	} `json:"meta"`
	Results []WorkResponse `json:"results"`
}

// AuthorResponse bildet eine Author-Antwort ab; die Kennzahlen stecken in
// summary_stats.
type AuthorResponse struct {
	ID           string `json:"id"`
	DisplayName  string `json:"display_name"`
	WorksCount   int    `json:"works_count"`
	CitedByCount int    `json:"cited_by_count"`
	SummaryStats struct {
		HIndex   int `json:"h_index"`
		I10Index int `json:"i10_index"`
	} `json:"summary_stats"`
}
