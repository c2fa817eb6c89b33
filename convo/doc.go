// Package convo defines the common parsing contract shared by all agent
// stream parsers (codex, claude).
//
// # Background
//
// Each supported coding-agent CLI emits a different, partially undocumented
// line-oriented JSON stream. A parser instance consumes successive raw
// chunks for one session and maintains renderable conversation state:
// formatted text, thinking segments, and a step timeline. The dispatcher
// that routes chunks must treat all parsers uniformly without knowing which
// vendor produced the stream.
//
// # Design
//
// Parser is a narrow capability interface. Two capabilities are explicit
// fields rather than behavior inferred from the vendor name:
//
//   - Mode reports whether Feed returns the full accumulated text on every
//     call (ModeFull, callers replace) or only newly produced text
//     (ModeDelta, callers append). This keeps the dispatcher's merge logic
//     a single conditional instead of per-vendor knowledge at every call
//     site.
//
//   - Kind is the vendor tag resolved once when the session is classified,
//     eliminating runtime string sniffing on agent identifiers.
//
// Feed never fails: malformed input degrades to plain-text accumulation so
// a stream that cannot be parsed at all still renders as a scrolling
// transcript instead of failing the session.
package convo
