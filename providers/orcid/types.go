package orcid

// RecordResponse bildet die konsumierten Felder eines ORCID-Records ab.
type RecordResponse struct {
	Person struct {
		Name struct {
			GivenNames struct {
				Value string `json:"value"`
			} `json:"given-names"`
			FamilyName struct {
				Value string `json:"value"`
			} `json:"family-name"`
			CreditName struct {
				Value string `json:"value"`
			} `json:"credit-name"`
		} `json:"name"`
		Addresses struct {
			Address []struct {
				Country struct {
					Value string `json:"value"`
				} `json:"country"`
			} `json:"address"`
		} `json:"addresses"`
	} `json:"person"`
	ActivitiesSummary struct {
		Employments struct {
			AffiliationGroup []struct {
				Summaries []struct {
					EmploymentSummary struct {
						Organization struct {
							Name string `json:"name"`
						} `json:"organization"`
					} `json:"employment-summary"`
				} `json:"summaries"`
			} `json:"affiliation-group"`
		} `json:"employments"`
	} `json:"activities-summary"`
}
