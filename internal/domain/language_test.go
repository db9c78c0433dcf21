package domain

import (
	"errors"
	"testing"
)

func TestParseLanguage(t *testing.T) {
	lang, err := ParseLanguage("de")
	if err != nil {
		t.Fatalf("ParseLanguage(de): %v", err)
	}
	if lang != LangGerman {
		t.Errorf("expected %q, got %q", LangGerman, lang)
	}

	if _, err := ParseLanguage("xx"); !errors.Is(err, ErrLanguageUnknown) {
		t.Errorf("unknown code should wrap ErrLanguageUnknown, got %v", err)
	}
	if _, err := ParseLanguage(""); err == nil {
		t.Error("empty code must not parse")
	}
}

func TestLanguageCatalog(t *testing.T) {
	if !DefaultLanguage.Valid() {
		t.Error("default language must be in the catalog")
	}
	if DefaultLanguage != LangEnglish {
		t.Errorf("default language should be en, got %q", DefaultLanguage)
	}
	if !LangChineseTraditional.Valid() || LangChineseTraditional != "zh_tw" {
		t.Error("zh_tw must be a catalog entry")
	}
	if Language("xx").Valid() {
		t.Error("xx must not validate")
	}
	if got := LangFrench.DisplayName(); got != "French" {
		t.Errorf("DisplayName(fr) = %q", got)
	}
	if got := Language("xx").DisplayName(); got != "" {
		t.Errorf("unknown DisplayName should be empty, got %q", got)
	}
	if n := Languages(); n < 60 {
		t.Errorf("catalog unexpectedly small: %d entries", n)
	}
}
