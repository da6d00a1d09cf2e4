package geo

import (
	"github.com/projectdiscovery/gologger"
	mapsutil "github.com/projectdiscovery/utils/maps"
)

// Recognizer extracts candidate location spans from a query. A full NER
// pipeline can be wired in; its output is always validated against the
// gazetteer before use, so recognizer false positives never leak into
// clustering decisions.
type Recognizer interface {
	Locations(text string) []string
}

// Oracle resolves the canonical place token of a query and decides
// geographic compatibility between queries. Extraction results are memoized
// per input string; the memo supports concurrent readers and writers so the
// oracle can be shared across scoring workers.
type Oracle struct {
	gaz      *Gazetteer
	rec      Recognizer
	memo     *mapsutil.SyncLockMap[string, string]
	degraded bool
}

// NewOracle builds an oracle over gaz. When rec is nil the oracle degrades
// to the gazetteer pattern matcher; this is a reduced-accuracy path, not a
// failure, and is logged once here.
func NewOracle(gaz *Gazetteer, rec Recognizer) *Oracle {
	o := &Oracle{
		gaz:  gaz,
		rec:  rec,
		memo: mapsutil.NewSyncLockMap[string, string](),
	}
	if rec == nil {
		o.rec = newMatcher(gaz)
		o.degraded = true
		gologger.Warning().Msgf("geo: no location recognizer wired, falling back to gazetteer pattern matching")
	}
	return o
}

// Degraded reports whether the oracle runs on the fallback matcher.
func (o *Oracle) Degraded() bool {
	return o.degraded
}

// Extract returns the canonical place token of text, if any. The first
// recognizer span that validates against the gazetteer wins.
func (o *Oracle) Extract(text string) (string, bool) {
	if v, ok := o.memo.Get(text); ok {
		return v, v != ""
	}
	resolved := ""
	for _, span := range o.rec.Locations(text) {
		if canonical, ok := o.gaz.Canonical(span); ok {
			resolved = canonical
			break
		}
	}
	_ = o.memo.Set(text, resolved)
	return resolved, resolved != ""
}

// Compatible reports whether two queries may share a cluster: both resolve
// to the same place, or neither resolves. A resolved query never mixes with
// a geography-free one.
func (o *Oracle) Compatible(a, b string) bool {
	ga, aok := o.Extract(a)
	gb, bok := o.Extract(b)
	if aok != bok {
		return false
	}
	return ga == gb
}

// Warm pre-resolves the whole corpus so parallel scoring afterwards only
// performs memo reads.
func (o *Oracle) Warm(texts []string) {
	for _, t := range texts {
		o.Extract(t)
	}
}
