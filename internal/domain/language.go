package domain

import "fmt"

// Language is a short language code accepted by the vendor UI
// (e.g. "en", "de", "zh_tw"). The catalog is closed and static; codes are
// validated before being sent to the vendor and never mutated at runtime.
type Language string

// DefaultLanguage is used when the host does not request a language.
const DefaultLanguage = LangEnglish

const (
	LangAfrikaans          Language = "af"
	LangAlbanian           Language = "sq"
	LangAmharic            Language = "am"
	LangArabic             Language = "ar"
	LangArmenian           Language = "hy"
	LangAzerbaijani        Language = "az"
	LangBasque             Language = "eu"
	LangBengali            Language = "bn"
	LangBosnian            Language = "bs"
	LangBulgarian          Language = "bg"
	LangCatalan            Language = "ca"
	LangChineseSimplified  Language = "zh"
	LangChineseTraditional Language = "zh_tw"
	LangCroatian           Language = "hr"
	LangCzech              Language = "cs"
	LangDanish             Language = "da"
	LangDutch              Language = "nl"
	LangEnglish            Language = "en"
	LangEstonian           Language = "et"
	LangFarsi              Language = "fa"
	LangFinnish            Language = "fi"
	LangFrench             Language = "fr"
	LangGalician           Language = "gl"
	LangGeorgian           Language = "ka"
	LangGerman             Language = "de"
	LangGreek              Language = "el"
	LangHebrew             Language = "he"
	LangHindi              Language = "hi"
	LangHungarian          Language = "hu"
	LangIcelandic          Language = "is"
	LangIndonesian         Language = "id"
	LangIrish              Language = "ga"
	LangItalian            Language = "it"
	LangJapanese           Language = "ja"
	LangKazakh             Language = "kk"
	LangKorean             Language = "ko"
	LangLatvian            Language = "lv"
	LangLithuanian         Language = "lt"
	LangMacedonian         Language = "mk"
	LangMalay              Language = "ms"
	LangMaltese            Language = "mt"
	LangMongolian          Language = "mn"
	LangNorwegian          Language = "no"
	LangPolish             Language = "pl"
	LangPortuguese         Language = "pt"
	LangRomanian           Language = "ro"
	LangRussian            Language = "ru"
	LangSerbian            Language = "sr"
	LangSlovak             Language = "sk"
	LangSlovenian          Language = "sl"
	LangSpanish            Language = "es"
	LangSwahili            Language = "sw"
	LangSwedish            Language = "sv"
	LangTamil              Language = "ta"
	LangTelugu             Language = "te"
	LangThai               Language = "th"
	LangTurkish            Language = "tr"
	LangUkrainian          Language = "uk"
	LangUrdu               Language = "ur"
	LangUzbek              Language = "uz"
	LangVietnamese         Language = "vi"
)

var languageNames = map[Language]string{
	LangAfrikaans:          "Afrikaans",
	LangAlbanian:           "Albanian",
	LangAmharic:            "Amharic",
	LangArabic:             "Arabic",
	LangArmenian:           "Armenian",
	LangAzerbaijani:        "Azerbaijani",
	LangBasque:             "Basque",
	LangBengali:            "Bengali",
	LangBosnian:            "Bosnian",
	LangBulgarian:          "Bulgarian",
	LangCatalan:            "Catalan",
	LangChineseSimplified:  "Chinese (Simplified)",
	LangChineseTraditional: "Chinese (Traditional)",
	LangCroatian:           "Croatian",
	LangCzech:              "Czech",
	LangDanish:             "Danish",
	LangDutch:              "Dutch",
	LangEnglish:            "English",
	LangEstonian:           "Estonian",
	LangFarsi:              "Farsi",
	LangFinnish:            "Finnish",
	LangFrench:             "French",
	LangGalician:           "Galician",
	LangGeorgian:           "Georgian",
	LangGerman:             "German",
	LangGreek:              "Greek",
	LangHebrew:             "Hebrew",
	LangHindi:              "Hindi",
	LangHungarian:          "Hungarian",
	LangIcelandic:          "Icelandic",
	LangIndonesian:         "Indonesian",
	LangIrish:              "Irish",
	LangItalian:            "Italian",
	LangJapanese:           "Japanese",
	LangKazakh:             "Kazakh",
	LangKorean:             "Korean",
	LangLatvian:            "Latvian",
	LangLithuanian:         "Lithuanian",
	LangMacedonian:         "Macedonian",
	LangMalay:              "Malay",
	LangMaltese:            "Maltese",
	LangMongolian:          "Mongolian",
	LangNorwegian:          "Norwegian",
	LangPolish:             "Polish",
	LangPortuguese:         "Portuguese",
	LangRomanian:           "Romanian",
	LangRussian:            "Russian",
	LangSerbian:            "Serbian",
	LangSlovak:             "Slovak",
	LangSlovenian:          "Slovenian",
	LangSpanish:            "Spanish",
	LangSwahili:            "Swahili",
	LangSwedish:            "Swedish",
	LangTamil:              "Tamil",
	LangTelugu:             "Telugu",
	LangThai:               "Thai",
	LangTurkish:            "Turkish",
	LangUkrainian:          "Ukrainian",
	LangUrdu:               "Urdu",
	LangUzbek:              "Uzbek",
	LangVietnamese:         "Vietnamese",
}

// Valid reports whether l is part of the language catalog.
func (l Language) Valid() bool {
	_, ok := languageNames[l]
	return ok
}

// DisplayName returns the English display name for l, or "" if unknown.
func (l Language) DisplayName() string { return languageNames[l] }

// ParseLanguage resolves a short code to a catalog Language.
func ParseLanguage(code string) (Language, error) {
	l := Language(code)
	if !l.Valid() {
		return "", fmt.Errorf("parse language %q: %w", code, ErrLanguageUnknown)
	}
	return l, nil
}

// Languages returns the number of catalog entries. Exposed for host
// applications that want to sanity-check the catalog they link against.
func Languages() int { return len(languageNames) }
