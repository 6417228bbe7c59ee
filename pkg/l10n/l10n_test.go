package l10n_test

import (
	"testing"

	"github.com/inbucket/rcptcontact/pkg/l10n"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Every catalog must define exactly the expected keys: none missing, none extraneous.
func TestCatalogsComplete(t *testing.T) {
	want := make(map[string]bool)
	for _, k := range l10n.Keys {
		want[k] = true
	}

	for _, lang := range l10n.Languages() {
		t.Run(lang, func(t *testing.T) {
			cat := l10n.Lookup(lang)
			require.NotNil(t, cat)
			for k := range want {
				assert.NotEmpty(t, cat[k], "missing translation, key: %s", k)
			}
			for k := range cat {
				assert.True(t, want[k], "extraneous translation, key: %s", k)
			}
		})
	}
}

func TestLanguagesDefaultFirst(t *testing.T) {
	langs := l10n.Languages()
	require.NotEmpty(t, langs)
	assert.Equal(t, l10n.DefaultLanguage, langs[0])
	assert.ElementsMatch(t, []string{"en_US", "it_IT", "pt_BR", "de_DE"}, langs)
}

func TestMatch(t *testing.T) {
	tests := []struct {
		name  string
		prefs []string
		want  string
	}{
		{"none", nil, "en_US"},
		{"blank", []string{" "}, "en_US"},
		{"catalog id", []string{"pt_BR"}, "pt_BR"},
		{"bcp47", []string{"de-DE"}, "de_DE"},
		{"base language", []string{"it"}, "it_IT"},
		{"accept-language", []string{"fr-FR,de;q=0.8,en;q=0.5"}, "de_DE"},
		{"unsupported", []string{"ja"}, "en_US"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, l10n.Match(tc.prefs...))
		})
	}
}

func TestTextFallback(t *testing.T) {
	assert.Equal(t, "Nenhum contato selecionado", l10n.Text("pt_BR", l10n.ResponseContactNotSelected))
	assert.Equal(t, "No contact selected", l10n.Text("xx_XX", l10n.ResponseContactNotSelected))
	assert.Equal(t, "[nope]", l10n.Text("en_US", "nope"))
}

func TestQuoteEscapesHTML(t *testing.T) {
	assert.Equal(t, "L&#39;indirizzo email non è valido", l10n.Quote("it_IT", l10n.ResponseEmailInvalid))
}
