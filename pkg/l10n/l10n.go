// Package l10n holds the localized user facing texts and picks the catalog for a request.
package l10n

import (
	"html"
	"sort"
	"strings"

	"golang.org/x/text/language"
)

// Text keys.
const (
	ResponseNameEmpty          = "response_name_empty"
	ResponseEmailInvalid       = "response_email_invalid"
	ResponseServerError        = "response_server_error"
	ResponseConfirm            = "response_confirm"
	ResponseContactNotSelected = "response_contact_not_selected"
	PrefsTitle                 = "prefs_title"
	PrefsOption                = "prefs_option"
	PrefsDescr                 = "prefs_descr"
	DialogTitle                = "dialog_title"
	DialogContactName          = "dialog_contact_name"
	DialogEmail                = "dialog_email"
	DialogAddSelected          = "dialog_add_selected"
	Loading                    = "loading"
)

// DefaultLanguage is used when nothing better matches.
const DefaultLanguage = "en_US"

// Keys lists every key each catalog must define.
var Keys = []string{
	ResponseNameEmpty,
	ResponseEmailInvalid,
	ResponseServerError,
	ResponseConfirm,
	ResponseContactNotSelected,
	PrefsTitle,
	PrefsOption,
	PrefsDescr,
	DialogTitle,
	DialogContactName,
	DialogEmail,
	DialogAddSelected,
	Loading,
}

// Catalog maps text keys to a translation.
type Catalog map[string]string

var (
	languages = sortedLanguages()
	matcher   = newMatcher(languages)
)

// Languages returns the identifiers of the available catalogs, sorted.
func Languages() []string {
	return append([]string(nil), languages...)
}

// Lookup returns the catalog for lang, or nil if there is none.
func Lookup(lang string) Catalog {
	return catalogs[lang]
}

// Match picks the catalog best suited to the given language preferences.  Each preference may be
// a catalog identifier such as "pt_BR", a BCP 47 tag, or a whole Accept-Language header value.
func Match(prefs ...string) string {
	cleaned := make([]string, 0, len(prefs))
	for _, p := range prefs {
		if p = strings.TrimSpace(p); p != "" {
			cleaned = append(cleaned, strings.ReplaceAll(p, "_", "-"))
		}
	}
	if len(cleaned) == 0 {
		return DefaultLanguage
	}
	_, index := language.MatchStrings(matcher, cleaned...)
	return languages[index]
}

// Text returns the translation of key for lang, falling back to the default language and then to
// the bracketed key itself.
func Text(lang, key string) string {
	if s, ok := catalogs[lang][key]; ok {
		return s
	}
	if s, ok := catalogs[DefaultLanguage][key]; ok {
		return s
	}
	return "[" + key + "]"
}

// Quote returns Text escaped for inclusion in HTML.
func Quote(lang, key string) string {
	return html.EscapeString(Text(lang, key))
}

// sortedLanguages returns catalog ids with the default language first, so the matcher falls back
// to it.
func sortedLanguages() []string {
	ids := make([]string, 0, len(catalogs))
	for id := range catalogs {
		if id != DefaultLanguage {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return append([]string{DefaultLanguage}, ids...)
}

func newMatcher(ids []string) language.Matcher {
	tags := make([]language.Tag, len(ids))
	for i, id := range ids {
		tags[i] = language.Make(strings.ReplaceAll(id, "_", "-"))
	}
	return language.NewMatcher(tags)
}
