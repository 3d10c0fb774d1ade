package services

import (
	"strconv"

	"scholar-hand/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MergeGroup ist eine Gruppe von Personen mit derselben normalisierten
// Namensform: ein kanonisches Mitglied plus Duplikate. Ephemer, wird nie
// persistiert.
type MergeGroup struct {
	Canonical  *models.Person
	Duplicates []*models.Person
}

// FieldDecision hält fest, welcher Wert von welchem Duplikat in den
// kanonischen Datensatz übernommen wurde.
type FieldDecision struct {
	Field       string
	Value       string
	DuplicateID uint
}

// MergeSummary fasst einen Dedup-Lauf zusammen.
type MergeSummary struct {
	GroupsFound int `json:"groups_found"`
	Merged      int `json:"merged"`
	Deleted     int `json:"deleted"`
}

// DuplicateResolver findet und verschmilzt Personen-Duplikate.
type DuplicateResolver struct {
	DB        *gorm.DB
	Logger    *zap.Logger
	Threshold float64
}

// NewDuplicateResolver erstellt einen neuen DuplicateResolver.
func NewDuplicateResolver(db *gorm.DB, logger *zap.Logger, threshold float64) *DuplicateResolver {
	if threshold <= 0 {
		threshold = DefaultMergeThreshold
	}
	return &DuplicateResolver{DB: db, Logger: logger, Threshold: threshold}
}

// FindMergeGroups gruppiert aktive Personen in zwei Stufen: erst über die
// exakte normalisierte Namensform (billig und präzise), dann werden Gruppen
// vereinigt, deren Namen sich laut Score mindestens auf Schwellenhöhe ähneln.
// So landet "J. Perez" bei "Juan Pérez". Kanonisch wird das Mitglied mit
// Rollen-Kategorie, bei Gleichstand das mit der niedrigsten ID (der älteste
// Datensatz).
func FindMergeGroups(roster []models.Person, threshold float64) []MergeGroup {
	if threshold <= 0 {
		threshold = DefaultMergeThreshold
	}

	// Stufe 1: exakte normalisierte Form.
	byName := map[string][]*models.Person{}
	var keys []string
	for i := range roster {
		p := &roster[i]
		if !p.Active {
			continue
		}
		key := NormalizeName(p.FullName)
		if key == "" {
			continue
		}
		if _, ok := byName[key]; !ok {
			keys = append(keys, key)
		}
		byName[key] = append(byName[key], p)
	}

	// Stufe 2: ähnliche Buckets vereinigen (Union-Find über die Keys).
	parent := make([]int, len(keys))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}
	for i := 0; i < len(keys); i++ {
		for j := i + 1; j < len(keys); j++ {
			if ScoreNames(keys[i], keys[j]) >= threshold {
				ri, rj := find(i), find(j)
				if ri != rj {
					if rj < ri {
						ri, rj = rj, ri
					}
					parent[rj] = ri
				}
			}
		}
	}

	merged := map[int][]*models.Person{}
	var rootOrder []int
	for i, key := range keys {
		root := find(i)
		if _, ok := merged[root]; !ok {
			rootOrder = append(rootOrder, root)
		}
		merged[root] = append(merged[root], byName[key]...)
	}

	var groups []MergeGroup
	for _, root := range rootOrder {
		members := merged[root]
		if len(members) < 2 {
			continue
		}
		canonical := chooseCanonical(members)
		group := MergeGroup{Canonical: canonical}
		for _, m := range members {
			if m != canonical {
				group.Duplicates = append(group.Duplicates, m)
			}
		}
		groups = append(groups, group)
	}
	return groups
}

func chooseCanonical(members []*models.Person) *models.Person {
	best := members[0]
	for _, m := range members[1:] {
		switch {
		case m.HasCategory() && !best.HasCategory():
			best = m
		case m.HasCategory() == best.HasCategory() && m.ID < best.ID:
			best = m
		}
	}
	return best
}

// CoalesceFields überträgt Anreicherungs-Felder eines Duplikats in die
// kanonische Person, aber nur dort, wo diese noch keinen Wert hat.
// Kanonische Werte werden nie überschrieben.
func CoalesceFields(canonical, dup *models.Person) []FieldDecision {
	var decisions []FieldDecision

	if canonical.ORCID == nil && dup.ORCID != nil {
		canonical.ORCID = dup.ORCID
		decisions = append(decisions, FieldDecision{Field: "orcid", Value: *dup.ORCID, DuplicateID: dup.ID})
	}
	if canonical.Email == nil && dup.Email != nil {
		canonical.Email = dup.Email
		decisions = append(decisions, FieldDecision{Field: "email", Value: *dup.Email, DuplicateID: dup.ID})
	}
	if canonical.Category == nil && dup.Category != nil {
		canonical.Category = dup.Category
		decisions = append(decisions, FieldDecision{Field: "category", Value: *dup.Category, DuplicateID: dup.ID})
	}

	intFields := []struct {
		name string
		dst  **int
		src  *int
	}{
		{"citation_count", &canonical.CitationCount, dup.CitationCount},
		{"h_index", &canonical.HIndex, dup.HIndex},
		{"i10_index", &canonical.I10Index, dup.I10Index},
		{"work_count", &canonical.WorkCount, dup.WorkCount},
	}
	for _, f := range intFields {
		if *f.dst == nil && f.src != nil {
			*f.dst = f.src
			decisions = append(decisions, FieldDecision{Field: f.name, Value: strconv.Itoa(*f.src), DuplicateID: dup.ID})
		}
	}

	if canonical.NameVariations == "" && dup.NameVariations != "" {
		canonical.NameVariations = dup.NameVariations
		decisions = append(decisions, FieldDecision{Field: "name_variations", Value: dup.NameVariations, DuplicateID: dup.ID})
	}
	return decisions
}

// ResolveDuplicates findet und verschmilzt Duplikate im aktiven Roster.
// Jede Merge-Gruppe läuft in einer eigenen Transaktion: schlägt eine
// Referenz-Umschreibung fehl, wird die ganze Gruppe zurückgerollt, damit
// keine verwaisten Verweise entstehen. Ein zweiter Lauf direkt danach
// findet nichts mehr.
func (r *DuplicateResolver) ResolveDuplicates() (MergeSummary, error) {
	var roster []models.Person
	if err := r.DB.Where("active = ?", true).Order("id").Find(&roster).Error; err != nil {
		return MergeSummary{}, err
	}

	groups := FindMergeGroups(roster, r.Threshold)
	summary := MergeSummary{GroupsFound: len(groups)}
	for _, group := range groups {
		if err := r.mergeGroup(group); err != nil {
			r.Logger.Error("Merge-Gruppe zurückgerollt.",
				zap.Uint("canonical_id", group.Canonical.ID), zap.Error(err))
			return summary, err
		}
		summary.Merged++
		summary.Deleted += len(group.Duplicates)
		r.Logger.Info("Duplikate verschmolzen.",
			zap.Uint("canonical_id", group.Canonical.ID),
			zap.String("name", group.Canonical.FullName),
			zap.Int("duplicates", len(group.Duplicates)))
	}
	return summary, nil
}

func (r *DuplicateResolver) mergeGroup(group MergeGroup) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		canonical := group.Canonical
		for _, dup := range group.Duplicates {
			decisions := CoalesceFields(canonical, dup)

			// ORCID des Duplikats vor dem Löschen freigeben (Unique-Index).
			if dup.ORCID != nil {
				if err := tx.Model(&models.Person{}).Where("id = ?", dup.ID).
					Update("orcid", nil).Error; err != nil {
					return err
				}
			}

			// Links, die nach dem Umbiegen mit bestehenden kollidieren
			// würden, zuerst entfernen (Unique-Paar-Index).
			existing := tx.Model(&models.AuthorshipLink{}).
				Select("publication_id").Where("person_id = ?", canonical.ID)
			if err := tx.Where("person_id = ? AND publication_id IN (?)", dup.ID, existing).
				Delete(&models.AuthorshipLink{}).Error; err != nil {
				return err
			}

			// Alle Verweise auf das Duplikat umbiegen, bevor gelöscht wird.
			if err := tx.Model(&models.AuthorshipLink{}).Where("person_id = ?", dup.ID).
				Update("person_id", canonical.ID).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.Person{}).Where("tutor_id = ?", dup.ID).
				Update("tutor_id", canonical.ID).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.Person{}).Where("co_tutor_id = ?", dup.ID).
				Update("co_tutor_id", canonical.ID).Error; err != nil {
				return err
			}
			// Projektmitgliedschaften analog: Projekte, in denen die
			// kanonische Person schon Mitglied ist, zuerst entfernen
			// (Unique-Paar-Index).
			sharedProjects := tx.Model(&models.ProjectMember{}).
				Select("project_id").Where("person_id = ?", canonical.ID)
			if err := tx.Where("person_id = ? AND project_id IN (?)", dup.ID, sharedProjects).
				Delete(&models.ProjectMember{}).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.ProjectMember{}).Where("person_id = ?", dup.ID).
				Update("person_id", canonical.ID).Error; err != nil {
				return err
			}

			for _, d := range decisions {
				entry := models.MergeLog{
					CanonicalID: canonical.ID,
					DuplicateID: dup.ID,
					Field:       d.Field,
					Value:       d.Value,
				}
				if err := tx.Create(&entry).Error; err != nil {
					return err
				}
			}

			if err := tx.Delete(&models.Person{}, dup.ID).Error; err != nil {
				return err
			}
		}
		return tx.Save(canonical).Error
	})
}
