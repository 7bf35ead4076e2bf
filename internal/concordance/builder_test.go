package concordance

import (
	"os"
	"reflect"
	"slices"
	"strings"
	"testing"
)

func locations(t *testing.T, c Concordance, word string) []string {
	t.Helper()
	entry, ok := c[word]
	if !ok {
		t.Fatalf("expected key %q in concordance, keys: %v", word, SortKeys(c))
	}
	return entry.Locations()
}

func TestBuild_TwoSentences(t *testing.T) {
	c := NewBuilder().Build("The Dog. The cat ran.")

	want := map[string][]string{
		"the": {"1", "2"},
		"dog": {"1"},
		"cat": {"2"},
		"ran": {"2"},
	}
	if len(c) != len(want) {
		t.Errorf("expected %d keys, got %d: %v", len(want), len(c), SortKeys(c))
	}
	for word, locs := range want {
		if got := locations(t, c, word); !reflect.DeepEqual(got, locs) {
			t.Errorf("%s: expected locations %v, got %v", word, locs, got)
		}
	}
	if c["the"].Frequency() != 2 {
		t.Errorf("expected 'the' frequency 2, got %d", c["the"].Frequency())
	}
}

func TestBuild_AbbreviationDoesNotEndSentence(t *testing.T) {
	c, stats := NewBuilder().Analyze("i.e. this matters. next")

	if got := locations(t, c, "i.e."); !reflect.DeepEqual(got, []string{"1"}) {
		t.Errorf("expected i.e. at [1], got %v", got)
	}
	if got := locations(t, c, "this"); !reflect.DeepEqual(got, []string{"1"}) {
		t.Errorf("expected 'this' at [1], got %v", got)
	}
	if got := locations(t, c, "matters"); !reflect.DeepEqual(got, []string{"1"}) {
		t.Errorf("expected 'matters' at [1], got %v", got)
	}
	if got := locations(t, c, "next"); !reflect.DeepEqual(got, []string{"2"}) {
		t.Errorf("expected 'next' at [2], got %v", got)
	}
	if _, ok := c["ie"]; ok {
		t.Error("abbreviation should not also be recorded with periods stripped")
	}
	if stats.Sentences != 2 {
		t.Errorf("expected final sentence 2, got %d", stats.Sentences)
	}
}

func TestBuild_RepeatedAbbreviation(t *testing.T) {
	c := NewBuilder().Build("a i.e. b. c (i.e.), d")

	if got := locations(t, c, "i.e."); !reflect.DeepEqual(got, []string{"1", "2"}) {
		t.Errorf("expected i.e. at [1 2], got %v", got)
	}
	if _, ok := c["ie"]; ok {
		t.Error("repeated abbreviation leaked into general processing")
	}
}

func TestBuild_OtherAbbreviationsEndSentences(t *testing.T) {
	c := NewBuilder().Build("see mr. smith")

	if got := locations(t, c, "mr"); !reflect.DeepEqual(got, []string{"1"}) {
		t.Errorf("expected 'mr' at [1], got %v", got)
	}
	if got := locations(t, c, "smith"); !reflect.DeepEqual(got, []string{"2"}) {
		t.Errorf("expected 'smith' at [2], got %v", got)
	}
}

func TestBuild_ConfiguredAbbreviations(t *testing.T) {
	c := NewBuilder("Mr.", "e.g.").Build("see mr. smith e.g. here. then")

	if got := locations(t, c, "mr."); !reflect.DeepEqual(got, []string{"1"}) {
		t.Errorf("expected 'mr.' at [1], got %v", got)
	}
	if got := locations(t, c, "here"); !reflect.DeepEqual(got, []string{"1"}) {
		t.Errorf("expected 'here' at [1], got %v", got)
	}
	if got := locations(t, c, "then"); !reflect.DeepEqual(got, []string{"2"}) {
		t.Errorf("expected 'then' at [2], got %v", got)
	}
	if _, ok := c["i.e."]; ok {
		t.Error("i.e. should not be present")
	}
}

func TestBuild_NoAbbreviations(t *testing.T) {
	c := NewBuilder([]string{}...).Build("a i.e. b")

	if _, ok := c["i.e."]; ok {
		t.Error("an empty list should disable the i.e. exception")
	}
	if got := locations(t, c, "ie"); !reflect.DeepEqual(got, []string{"1"}) {
		t.Errorf("expected 'ie' at [1], got %v", got)
	}
	if got := locations(t, c, "b"); !reflect.DeepEqual(got, []string{"2"}) {
		t.Errorf("expected 'b' at [2], got %v", got)
	}
}

func TestBuild_EmptyInput(t *testing.T) {
	c, stats := NewBuilder().Analyze("")

	if len(c) != 0 {
		t.Errorf("expected empty concordance, got %v", SortKeys(c))
	}
	if stats.Sentences != 1 || stats.Words != 0 {
		t.Errorf("unexpected stats for empty input: %+v", stats)
	}
}

func TestBuild_WhitespaceAndPunctuationOnly(t *testing.T) {
	c := NewBuilder().Build("  \r\n\n ... ,,, () ~ `")

	if len(c) != 0 {
		t.Errorf("expected no words, got %v", SortKeys(c))
	}
}

func TestBuild_TrailingPunctuationNormalizes(t *testing.T) {
	c := NewBuilder().Build("blue, sky and Blue water")

	entry, ok := c["blue"]
	if !ok {
		t.Fatal("expected key 'blue'")
	}
	if entry.Frequency() != 2 {
		t.Errorf("expected frequency 2, got %d", entry.Frequency())
	}
	if _, ok := c["blue,"]; ok {
		t.Error("punctuation should be stripped from keys")
	}
}

func TestBuild_KeepsApostrophesAndHyphens(t *testing.T) {
	c := NewBuilder().Build("don't well-known")

	for _, w := range []string{"don't", "well-known"} {
		if _, ok := c[w]; !ok {
			t.Errorf("expected key %q, got %v", w, SortKeys(c))
		}
	}
}

func TestBuild_TabsAreNotDelimiters(t *testing.T) {
	c := NewBuilder().Build("a\tb")

	if _, ok := c["a\tb"]; !ok {
		t.Errorf("expected a single tab-joined key, got %q", SortKeys(c))
	}
}

func TestBuild_Sample(t *testing.T) {
	data, err := os.ReadFile("testdata/sample.txt")
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}

	c, stats := NewBuilder().Analyze(string(data))

	wantKeys := []string{
		"a", "again", "away", "brown", "dog", "fox", "i.e.", "it",
		"lazy", "one", "quick", "ran", "sleepy", "slept", "the", "then",
	}
	if got := SortKeys(c); !reflect.DeepEqual(got, wantKeys) {
		t.Errorf("unexpected keys:\n got %v\nwant %v", got, wantKeys)
	}

	checks := map[string]string{
		"the":   "1,2,2",
		"fox":   "1,2",
		"quick": "1,2",
		"ran":   "2,3",
		"i.e.":  "2",
		"again": "3",
	}
	for word, want := range checks {
		if got := c[word].FormattedLocations(); got != want {
			t.Errorf("%s: expected %s, got %s", word, want, got)
		}
	}

	if stats.Tokens != 22 {
		t.Errorf("expected 22 tokens, got %d", stats.Tokens)
	}
	if stats.Words != 21 {
		t.Errorf("expected 21 words, got %d", stats.Words)
	}
	if stats.Sentences != 4 {
		t.Errorf("expected final sentence 4, got %d", stats.Sentences)
	}
}

func TestBuild_FrequencyMatchesLocations(t *testing.T) {
	text := "One fish. Two fish! Red fish, blue fish. i.e. fish (fish) [fish]. The end."
	c := NewBuilder().Build(text)

	for word, entry := range c {
		if len(entry.Locations()) != entry.Frequency() {
			t.Errorf("%s: %d locations for frequency %d", word, len(entry.Locations()), entry.Frequency())
		}
	}
	if c["fish"].Frequency() != 7 {
		t.Errorf("expected fish frequency 7, got %d", c["fish"].Frequency())
	}
}

func TestBuild_Deterministic(t *testing.T) {
	text := "It was the best of times. It was the worst of times, i.e. both."
	b := NewBuilder()

	if !reflect.DeepEqual(Sorted(b.Build(text)), Sorted(b.Build(text))) {
		t.Error("building the same text twice should give identical results")
	}
}

func TestStep_CarriesState(t *testing.T) {
	b := NewBuilder()
	st := NewState()

	st = b.Step(st, "end.")
	if st.Sentence != 2 {
		t.Fatalf("expected sentence 2 after terminator, got %d", st.Sentence)
	}
	if got := st.Store["end"].FormattedLocations(); got != "1" {
		t.Errorf("terminator word should use pre-advance sentence, got %s", got)
	}

	st = b.Step(st, "")
	if st.Sentence != 2 || st.Words != 1 || st.Tokens != 2 {
		t.Errorf("empty token should only count as a token: %+v", st)
	}

	st = b.Step(st, "i.e.")
	if st.Sentence != 2 {
		t.Errorf("abbreviation should not advance sentence, got %d", st.Sentence)
	}
}

func TestSortKeys_Idempotent(t *testing.T) {
	c := NewBuilder().Build("zeta alpha Mu beta alpha")

	first := SortKeys(c)
	if !slices.IsSorted(first) {
		t.Errorf("keys not sorted: %v", first)
	}

	again := slices.Clone(first)
	slices.Sort(again)
	if !reflect.DeepEqual(first, again) {
		t.Errorf("sorting sorted keys changed order: %v -> %v", first, again)
	}
}

func TestSortKeys_Ordinal(t *testing.T) {
	c := Concordance{}
	for _, k := range []string{"b", "a-b", "a", "ab", "1st", "a.b"} {
		c = Record(c, k, 1)
	}

	want := []string{"1st", "a", "a-b", "a.b", "ab", "b"}
	if got := SortKeys(c); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestBuildSortedView_PreservesData(t *testing.T) {
	c := NewBuilder().Build("b a. c b. a b")
	view := BuildSortedView(c, SortKeys(c))

	total := 0
	for _, entry := range c {
		total += entry.Frequency()
	}
	viewTotal := 0
	for _, rec := range view {
		viewTotal += rec.Frequency
		if got := strings.Join(rec.Locations, ","); got != c[rec.Word].FormattedLocations() {
			t.Errorf("%s: locations changed: %s vs %s", rec.Word, got, c[rec.Word].FormattedLocations())
		}
	}
	if total != viewTotal {
		t.Errorf("total frequency %d, sorted view %d", total, viewTotal)
	}

	view[0].Locations[0] = "999"
	if c[view[0].Word].FormattedLocations() == strings.Join(view[0].Locations, ",") {
		t.Error("sorted view should not share location storage with the concordance")
	}
}

func TestBuildSortedView_SkipsUnknownKeys(t *testing.T) {
	c := Record(Concordance{}, "known", 1)

	view := BuildSortedView(c, []string{"known", "missing"})
	if len(view) != 1 || view[0].Word != "known" {
		t.Errorf("unexpected view: %+v", view)
	}
}

func TestRecord(t *testing.T) {
	c := Concordance{}
	c = Record(c, "blue", 1)
	c = Record(c, "blue", 2)

	if c["blue"].Frequency() != 2 {
		t.Errorf("expected frequency 2, got %d", c["blue"].Frequency())
	}
	if got := c["blue"].FormattedLocations(); got != "1,2" {
		t.Errorf("expected '1,2', got '%s'", got)
	}
}
