package geo

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func testGazetteer() *Gazetteer {
	places := map[string][]string{
		"центр": {"Москва", "Нижний Новгород", "Тверь"},
		"юг":    {"Сочи"},
	}
	aliases := map[string]string{
		"спб": "санкт-петербург",
		"мск": "москва",
	}
	return NewGazetteer(places, aliases, NewRussianInflector())
}

func TestInflectFeminine(t *testing.T) {
	forms := NewRussianInflector().Inflect("москва")
	require.Contains(t, forms, "москва")
	require.Contains(t, forms, "москвы")
	require.Contains(t, forms, "москве")
	require.Contains(t, forms, "москву")
	require.Contains(t, forms, "москвой")
}

func TestInflectConsonantStem(t *testing.T) {
	forms := NewRussianInflector().Inflect("новгород")
	require.Contains(t, forms, "новгорода")
	require.Contains(t, forms, "новгороде")
	require.Contains(t, forms, "новгородом")
}

func TestInflectOnlyFinalSegment(t *testing.T) {
	forms := NewRussianInflector().Inflect("санкт-петербург")
	require.Contains(t, forms, "санкт-петербурге")
	require.NotContains(t, forms, "санкте-петербург")

	forms = NewRussianInflector().Inflect("нижний новгород")
	require.Contains(t, forms, "нижний новгороде")
}

func TestInflectIndeclinable(t *testing.T) {
	forms := NewRussianInflector().Inflect("сочи")
	require.Equal(t, []string{"сочи"}, forms)
}

func TestGazetteerResolvesInflectedForms(t *testing.T) {
	g := testGazetteer()

	for _, form := range []string{"москва", "Москве", "москву", "тверь", "твери"} {
		c, ok := g.Canonical(form)
		require.True(t, ok, form)
		require.Contains(t, []string{"москва", "тверь"}, c)
	}
}

func TestGazetteerAliasesNotInflected(t *testing.T) {
	g := testGazetteer()

	c, ok := g.Canonical("спб")
	require.True(t, ok)
	require.Equal(t, "санкт-петербург", c)

	// the alias target resolves too, with its own declensions
	c, ok = g.Canonical("санкт-петербурге")
	require.True(t, ok)
	require.Equal(t, "санкт-петербург", c)

	// but the short form itself never gets declined
	_, ok = g.Canonical("спба")
	require.False(t, ok)
}

func TestMatcherLongestFormWins(t *testing.T) {
	g := NewGazetteer(map[string][]string{
		"центр": {"новгород", "нижний новгород"},
	}, nil, NewRussianInflector())
	m := newMatcher(g)

	require.Equal(t, []string{"нижний новгород"}, m.Locations("купить дом нижний новгород"))
	require.Equal(t, []string{"новгород"}, m.Locations("купить дом новгород"))
}

func TestMatcherWordBoundaries(t *testing.T) {
	m := newMatcher(testGazetteer())

	// no firing inside a longer word
	require.Empty(t, m.Locations("мскад ремонт"))
	require.Equal(t, []string{"москва"}, m.Locations("ремонт квартир в москве недорого"))
}

func TestOracleExtractAndMemo(t *testing.T) {
	o := NewOracle(testGazetteer(), nil)
	require.True(t, o.Degraded())

	place, ok := o.Extract("снять офис в москве")
	require.True(t, ok)
	require.Equal(t, "москва", place)

	_, ok = o.Extract("снять офис недорого")
	require.False(t, ok)

	// memoized answers stay stable
	place, ok = o.Extract("снять офис в москве")
	require.True(t, ok)
	require.Equal(t, "москва", place)
}

func TestOracleCompatible(t *testing.T) {
	o := NewOracle(testGazetteer(), nil)

	// same place, different surface forms
	require.True(t, o.Compatible("окна москва", "окна в москве"))
	// alias resolves to the same canonical name as the full form
	require.True(t, o.Compatible("окна спб", "окна санкт-петербург"))
	// different places never mix
	require.False(t, o.Compatible("окна москва", "окна спб"))
	// geography-bound never mixes with geography-free
	require.False(t, o.Compatible("окна москва", "окна недорого"))
	// two geography-free queries are compatible
	require.True(t, o.Compatible("окна недорого", "окна купить"))
}

type fixedRecognizer struct {
	spans map[string][]string
}

func (f *fixedRecognizer) Locations(text string) []string {
	return f.spans[text]
}

func TestOracleRecognizerSpansValidatedAgainstGazetteer(t *testing.T) {
	rec := &fixedRecognizer{spans: map[string][]string{
		"окна иваново": {"иваново"},
		"окна париж":   {"париж"},
	}}
	g := NewGazetteer(map[string][]string{"центр": {"иваново"}}, nil, NewRussianInflector())
	o := NewOracle(g, rec)
	require.False(t, o.Degraded())

	place, ok := o.Extract("окна иваново")
	require.True(t, ok)
	require.Equal(t, "иваново", place)

	// a span unknown to the gazetteer is discarded
	_, ok = o.Extract("окна париж")
	require.False(t, ok)
}
