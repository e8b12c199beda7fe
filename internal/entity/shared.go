package entity

import "strings"

// Language represents the content languages supported for summaries and quizzes.
type Language string

const (
	LanguageUnspecified Language = ""
	LanguageEnglish     Language = "en"
	LanguageSinhala     Language = "si"
)

// Code returns the lowercase language code (without defaulting).
func (l Language) Code() string {
	return strings.TrimSpace(string(l))
}

// CodeOrDefault returns the language code, falling back to English when unspecified.
func (l Language) CodeOrDefault() string {
	if l.Code() == "" {
		return string(LanguageEnglish)
	}
	return l.Code()
}

// RequiresPro reports whether the language is gated behind the Pro subscription.
func (l Language) RequiresPro() bool {
	return l == LanguageSinhala
}

// NormalizeLanguage ensures the language falls back to a supported value (defaults to English).
func NormalizeLanguage(lang Language) Language {
	switch lang {
	case LanguageEnglish, LanguageSinhala:
		return lang
	default:
		return LanguageEnglish
	}
}

// ParseLanguage converts an arbitrary string into a supported Language value.
func ParseLanguage(code string) Language {
	switch strings.ToLower(strings.TrimSpace(code)) {
	case "en":
		return LanguageEnglish
	case "si":
		return LanguageSinhala
	default:
		return LanguageUnspecified
	}
}

// NormalizeIdentity trims the identity used to scope records. Identities are
// case-sensitive, the same way the login form stored them.
func NormalizeIdentity(identity string) string {
	return strings.TrimSpace(identity)
}

// DisplayName derives a short public name from an email-like identity.
func DisplayName(identity string) string {
	name, _, _ := strings.Cut(identity, "@")
	return name
}
