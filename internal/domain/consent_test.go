package domain

import "testing"

func TestNormalizeConsentsDedupesLastWins(t *testing.T) {
	in := []ServiceConsent{
		{TemplateID: "a", Status: false, Name: "Analytics"},
		{TemplateID: "b", Status: true, Name: "Billing"},
		{TemplateID: "a", Status: true, Name: "Analytics v2"},
	}
	out := NormalizeConsents(in)
	if len(out) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(out))
	}
	if out[0].TemplateID != "a" || !out[0].Status || out[0].Name != "Analytics v2" {
		t.Errorf("last occurrence should win in place: %+v", out[0])
	}
	if out[1].TemplateID != "b" {
		t.Errorf("first-occurrence order not preserved: %+v", out)
	}
}

func TestNormalizeConsentsDropsEmptyIDs(t *testing.T) {
	out := NormalizeConsents([]ServiceConsent{
		{TemplateID: "", Status: true},
		{TemplateID: "x", Status: true},
	})
	if len(out) != 1 || out[0].TemplateID != "x" {
		t.Fatalf("empty template ids must be dropped: %+v", out)
	}
}

func TestNormalizeConsentsCopies(t *testing.T) {
	in := []ServiceConsent{{TemplateID: "a"}}
	out := NormalizeConsents(in)
	out[0].Status = true
	if in[0].Status {
		t.Fatal("normalize must not alias the input slice")
	}
}

func TestMergeConsentStatusUpdatesOnlyMatch(t *testing.T) {
	in := []ServiceConsent{
		{TemplateID: "a", Status: false, Name: "Analytics"},
		{TemplateID: "b", Status: true, Name: "Billing"},
	}
	out := MergeConsentStatus(in, "a", true)
	if !out[0].Status || out[0].Name != "Analytics" {
		t.Errorf("matching entry not updated: %+v", out[0])
	}
	if !out[1].Status || out[1].Name != "Billing" {
		t.Errorf("other entries must be untouched: %+v", out[1])
	}
	if in[0].Status {
		t.Error("merge must not mutate the input")
	}
}

func TestMergeConsentStatusAppendsUnknown(t *testing.T) {
	out := MergeConsentStatus(nil, "new", true)
	if len(out) != 1 {
		t.Fatalf("expected appended entry, got %+v", out)
	}
	if out[0].TemplateID != "new" || !out[0].Status || out[0].Name != "new" {
		t.Errorf("appended entry should use the id as name: %+v", out[0])
	}
}

func TestConsentStatusOf(t *testing.T) {
	set := []ServiceConsent{{TemplateID: "a", Status: true}}
	if !ConsentStatusOf(set, "a") {
		t.Error("known granted id should read true")
	}
	if ConsentStatusOf(set, "missing") {
		t.Error("unknown id must read false")
	}
	if ConsentStatusOf(nil, "a") {
		t.Error("empty set must read false")
	}
}
