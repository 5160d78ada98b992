// Package domain builds the New Zealand daily COVID-19 series from Ministry
// of Health press-release prose.
//
// # Data Source
//
// Releases are listed at https://www.health.govt.nz/news-media/media-releases.
// The web adapter keeps the ones whose title mentions "COVID-19" or "new
// cases", and hands each one over as a [Release] with its body text and
// publish timestamp. The series key is the publish date in the release's own
// offset (NZST/NZDT); time of day is dropped.
//
// # Extraction
//
// Figures are pulled from prose with the ordered rules of a [PatternTable]
// (embedded patterns.yaml, replaceable at run time). Each expression is matched
// as (?s)\A.*<expr> so it spans paragraphs and captures the last occurrence.
// An occurrence never begins in the middle of a number.
// Within a rule the first matching pattern wins. Captured tokens can be
// figures ("1,204"), cardinals ("eleven") or ordinals ("fifth", "6th"):
//
//	"neither" / "none"          -> 0
//	"...th", "first", "second"  -> ParseOrdinal
//	everything else             -> ParseNum
//
// Transmission sources are published as percentages of the confirmed total
// and converted back to counts with round half away from zero:
//
//	overseas  = round(confirmed * overseas%)
//	community = round(confirmed * community%)
//	epi link  = round(confirmed * within_nz%) - community
//
// A release with no confirmed total does not contribute to the series.
//
// # Unknown Values
//
// Every figure is a [Count]. An unknown count is distinct from a reported
// zero and is encoded as JSON null. Tested is left unknown when no source
// reports it; deaths, hospitalized and ICU are carried forward by
// [FillForward].
//
// # Reconciliation
//
// The first weeks of the outbreak predate running totals in the releases and
// come from [ManualEvents]. [Merge] folds that table in date order: confirmed,
// deaths and recovered are deltas onto running totals, hospitalized, ICU and
// tested are snapshots, and scraped values win where both exist.
// [AbsoluteOverrides] are applied last.
package domain
