// Package fhir holds the minimal FHIR R4 wire shapes this service consumes
// from the upstream registry, plus the mapping into the internal simplified
// patient shape.
package fhir

// Bundle is the paginated search envelope returned by a FHIR server.
type Bundle struct {
	ResourceType string        `json:"resourceType"`
	Total        *int          `json:"total,omitempty"`
	Entry        []BundleEntry `json:"entry,omitempty"`
}

type BundleEntry struct {
	Resource *PatientResource `json:"resource,omitempty"`
}

// PatientResource is the subset of a FHIR Patient resource this service
// reads. Unknown fields are ignored by the decoder.
type PatientResource struct {
	ResourceType string      `json:"resourceType"`
	ID           string      `json:"id"`
	Name         []HumanName `json:"name,omitempty"`
	Gender       string      `json:"gender,omitempty"`
	BirthDate    string      `json:"birthDate,omitempty"`
}

type HumanName struct {
	Use    string   `json:"use,omitempty"`
	Family string   `json:"family,omitempty"`
	Given  []string `json:"given,omitempty"`
}

// SimplifiedPatient is the internal, flattened view of a registry patient.
// Absent upstream fields stay nil; BirthDate is carried as the opaque date
// string the registry supplied.
type SimplifiedPatient struct {
	ExternalID string  `json:"externalId"`
	GivenName  *string `json:"givenName,omitempty"`
	FamilyName *string `json:"familyName,omitempty"`
	Gender     *string `json:"gender,omitempty"`
	BirthDate  *string `json:"birthDate,omitempty"`
}

// Simplify maps one Patient resource to the internal shape. The given name
// is the first element of the first name entry, matching how registries
// order official names first.
func Simplify(p *PatientResource) SimplifiedPatient {
	sp := SimplifiedPatient{ExternalID: p.ID}

	if len(p.Name) > 0 {
		n := p.Name[0]
		if len(n.Given) > 0 {
			given := n.Given[0]
			sp.GivenName = &given
		}
		if n.Family != "" {
			family := n.Family
			sp.FamilyName = &family
		}
	}
	if p.Gender != "" {
		gender := p.Gender
		sp.Gender = &gender
	}
	if p.BirthDate != "" {
		birthDate := p.BirthDate
		sp.BirthDate = &birthDate
	}
	return sp
}

// SimplifyBundle maps every entry of a search Bundle, preserving upstream
// order. Entries without a resource payload are skipped rather than treated
// as errors.
func SimplifyBundle(b *Bundle) []SimplifiedPatient {
	results := make([]SimplifiedPatient, 0, len(b.Entry))
	for _, entry := range b.Entry {
		if entry.Resource == nil {
			continue
		}
		results = append(results, Simplify(entry.Resource))
	}
	return results
}
