package i18n

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedLocalesShareKeys(t *testing.T) {
	b := Default()
	require.Contains(t, b.Locales(), BaseLocale)

	base := b.Keys(BaseLocale)
	for _, locale := range b.Locales() {
		assert.Equal(t, base, b.Keys(locale), "locale %s keys differ from %s", locale, BaseLocale)
	}
}

func TestMessage(t *testing.T) {
	cases := []struct {
		name   string
		locale string
		key    string
		want   string
	}{
		{"base locale", "en-US", "NOT_YOUR_TURN", "It is not this player's turn."},
		{"spanish", "es-AR", "NOT_YOUR_TURN", "No es el turno de este jugador."},
		{"regional fallback to language", "es-MX", "GAME_ENDED", "La partida terminó."},
		{"unknown locale falls back to base", "fr-FR", "GAME_ENDED", "The game is over."},
		{"garbage locale", "%%", "GAME_ENDED", "The game is over."},
		{"unknown key", "en-US", "NOPE", "NOPE"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Message(tc.locale, tc.key))
		})
	}
}

func TestLoadFromFSRequiresBaseLocale(t *testing.T) {
	fsys := fstest.MapFS{
		"locales/es-AR.yaml": {Data: []byte("locale: es-AR\nmessages:\n  A: b\n")},
	}
	_, err := LoadFromFS(fsys)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "base locale")
}

func TestLoadFromFSRejectsMissingLocale(t *testing.T) {
	fsys := fstest.MapFS{
		"locales/en-US.yaml": {Data: []byte("messages:\n  A: b\n")},
	}
	_, err := LoadFromFS(fsys)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "locale is required")
}
