package i18n

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
)

func TestDetect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name                       string
		cookie, storage, navigator string
		want                       string
	}{
		{name: "nothing stored ignores navigator", navigator: "en-US,en;q=0.9", want: "fa"},
		{name: "cookie en", cookie: "en", want: "en"},
		{name: "storage en", storage: "en-GB", want: "en"},
		{name: "cookie wins over storage", cookie: "fa", storage: "en", want: "fa"},
		{name: "unsupported cookie uses navigator", cookie: "de", navigator: "en;q=0.8,de;q=0.9", want: "en"},
		{name: "unsupported everywhere", storage: "de", navigator: "ja", want: "fa"},
		{name: "malformed navigator", cookie: "xx", navigator: ";;;", want: "fa"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, Detect(tc.cookie, tc.storage, tc.navigator))
		})
	}
}

func TestEmbeddedCatalogsShareKeys(t *testing.T) {
	t.Parallel()

	c, err := Load(Persian)
	require.NoError(t, err)
	require.Equal(t, []string{"en", "fa"}, c.Supported())

	for key := range c.dict[English] {
		_, ok := c.dict[Persian][key]
		require.True(t, ok, "fa is missing %s", key)
	}
	for key := range c.dict[Persian] {
		_, ok := c.dict[English][key]
		require.True(t, ok, "en is missing %s", key)
	}
}

func TestLocalizer(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"l/en.yaml": {Data: []byte("a:\n  b: \"Hello {{name}}\"\nonly: english\n")},
		"l/fa.yaml": {Data: []byte("a:\n  b: \"سلام {{name}}\"\n")},
	}
	c, err := LoadFS(fsys, "l", Persian, English)
	require.NoError(t, err)

	fa := c.Localizer("fa")
	require.Equal(t, "سلام Sara", fa.T("a.b", "name", "Sara"))
	require.Equal(t, "english", fa.T("only"))
	require.Equal(t, "missing.key", fa.T("missing.key"))
	require.Equal(t, "rtl", fa.Dir())

	en := c.Localizer("en")
	require.Equal(t, "ltr", en.Dir())

	require.Equal(t, "fa", c.Localizer("de").Lang())
}

func TestLocalizerPlurals(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"l/en.yaml": {Data: []byte("items_one: \"{{count}} item\"\nitems_other: \"{{count}} items\"\nplain: \"{{count}} selected\"\n")},
		"l/fa.yaml": {Data: []byte("items_other: \"{{count}} مورد\"\n")},
	}
	c, err := LoadFS(fsys, "l", Persian, English)
	require.NoError(t, err)

	en := c.Localizer("en")
	require.Equal(t, "1 item", en.T("items", "count", 1))
	require.Equal(t, "2 items", en.T("items", "count", 2))
	require.Equal(t, "0 items", en.T("items", "count", 0))
	require.Equal(t, "3 selected", en.T("plain", "count", 3))
	require.Equal(t, "items", en.T("items"))

	require.Equal(t, "1 مورد", c.Localizer("fa").T("items", "count", 1))
}

func TestLoadRequiresFallback(t *testing.T) {
	t.Parallel()

	_, err := LoadFS(fstest.MapFS{"l/fa.yaml": {Data: []byte("a: b\n")}}, "l", Persian, English)
	require.Error(t, err)
}

func TestValidationMessages(t *testing.T) {
	t.Parallel()

	c, err := Load(Persian)
	require.NoError(t, err)
	fa := c.Localizer(Persian)
	require.Equal(t, "انتخاب استان الزامی است", fa.T("validation.stateRequired"))
	require.Equal(t, "انتخاب شهر الزامی است", fa.T("validation.cityRequired"))
	require.Equal(t, "ایمیل یا رمز عبور اشتباه است", fa.T("login.invalidCredentials"))
}
