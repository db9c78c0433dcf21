package domain

// ServiceConsent describes the consent decision for a single data
// processing service. Two ServiceConsents are the same consent iff their
// TemplateIDs match; Status and Name are payload.
type ServiceConsent struct {
	TemplateID string `json:"template_id"`
	Status     bool   `json:"status"`
	Name       string `json:"name"`
}

// DeletionResult is the one-shot outcome of a local data-deletion request.
// Server-side erasure is the host application's responsibility.
type DeletionResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// DataAccessResult is the one-shot outcome of a data-access request.
// DataURL is empty unless the backend can produce a data file link.
type DataAccessResult struct {
	Success bool   `json:"success"`
	DataURL string `json:"data_url,omitempty"`
	Message string `json:"message"`
}

// NormalizeConsents returns a copy of consents with at most one entry per
// TemplateID (last occurrence wins, order of first occurrence preserved)
// and entries with an empty TemplateID dropped.
func NormalizeConsents(consents []ServiceConsent) []ServiceConsent {
	out := make([]ServiceConsent, 0, len(consents))
	index := make(map[string]int, len(consents))
	for _, c := range consents {
		if c.TemplateID == "" {
			continue
		}
		if i, ok := index[c.TemplateID]; ok {
			out[i] = c
			continue
		}
		index[c.TemplateID] = len(out)
		out = append(out, c)
	}
	return out
}

// MergeConsentStatus returns a copy of consents where the entry matching
// templateID has the given status. If no entry matches, one is appended
// with the template id as its display name. All other entries are
// unchanged.
func MergeConsentStatus(consents []ServiceConsent, templateID string, status bool) []ServiceConsent {
	out := make([]ServiceConsent, len(consents))
	copy(out, consents)
	for i := range out {
		if out[i].TemplateID == templateID {
			out[i].Status = status
			return out
		}
	}
	return append(out, ServiceConsent{TemplateID: templateID, Status: status, Name: templateID})
}

// ConsentStatusOf reports the cached status of templateID. Unknown ids
// read as false.
func ConsentStatusOf(consents []ServiceConsent, templateID string) bool {
	for _, c := range consents {
		if c.TemplateID == templateID {
			return c.Status
		}
	}
	return false
}
