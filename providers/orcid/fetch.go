package orcid

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"scholar-hand/config"
	"scholar-hand/providers"

	"go.uber.org/zap"
)

var httpClient = &http.Client{Timeout: 10 * time.Second}

// Höflichkeitspause zwischen aufeinanderfolgenden Register-Aufrufen.
const politenessDelay = 100 * time.Millisecond

// Client fragt die öffentliche ORCID-API nach Personen-Metadaten ab.
type Client struct {
	Config *config.Config
	Logger *zap.Logger

	mu       sync.Mutex
	lastCall time.Time
}

// NewClient erstellt einen neuen ORCID-Client.
func NewClient(cfg *config.Config, logger *zap.Logger) *Client {
	return &Client{Config: cfg, Logger: logger}
}

// throttle hält die Höflichkeitspause zwischen Aufrufen ein.
func (c *Client) throttle() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if wait := politenessDelay - time.Since(c.lastCall); wait > 0 {
		time.Sleep(wait)
	}
	c.lastCall = time.Now()
}

// FetchRecord holt den öffentlichen Registereintrag einer ORCID.
func (c *Client) FetchRecord(ctx context.Context, orcid string) (*providers.RegistryRecord, error) {
	c.throttle()

	endpoint := fmt.Sprintf("%s/%s/record", c.Config.ORCIDBaseURL, orcid)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "scholar-hand")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("orcid %s nicht im Register gefunden", orcid)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("orcid request failed with status: %d", resp.StatusCode)
	}

	var rr RecordResponse
	if err := json.NewDecoder(resp.Body).Decode(&rr); err != nil {
		return nil, err
	}

	record := &providers.RegistryRecord{
		ORCID:      orcid,
		GivenNames: rr.Person.Name.GivenNames.Value,
		FamilyName: rr.Person.Name.FamilyName.Value,
	}
	if credit := rr.Person.Name.CreditName.Value; credit != "" {
		record.DisplayName = credit
	} else if record.GivenNames != "" || record.FamilyName != "" {
		record.DisplayName = record.GivenNames + " " + record.FamilyName
	}
	for _, addr := range rr.Person.Addresses.Address {
		if addr.Country.Value != "" {
			record.Countries = append(record.Countries, addr.Country.Value)
		}
	}
	for _, group := range rr.ActivitiesSummary.Employments.AffiliationGroup {
		for _, s := range group.Summaries {
			if name := s.EmploymentSummary.Organization.Name; name != "" {
				record.Affiliations = append(record.Affiliations, name)
			}
		}
	}

	c.Logger.Debug("ORCID-Record geladen.", zap.String("orcid", orcid), zap.String("name", record.DisplayName))
	return record, nil
}
