package preprocess

import "regexp"

// declarationPattern matches a local declaration of one of the
// GameObject-like types, or an assignment from a known resolver call
// (§4.1 rule 3's second signal). It intentionally over-matches slightly
// (e.g. inside a string) since callers only use it as a conservative
// "is this identifier ever declared as an object?" signal, and a false
// positive here only means a method call gets routed through
// CallFunctionOnObject instead of left alone — which is always the
// safe-to-re-preprocess direction the idempotence law (§8-3) needs.
var declarationPattern = regexp.MustCompile(
	`(?m)\b(?:GameObject|Room|Player|Exit|Item|Container)\??\s+(\w+)\s*(?:=|;|,|\))` +
		`|\b(\w+)\s*=\s*(?:new\s+(?:GameObject|Room|Player|Exit|Item|Container)\b|` +
		`ObjectResolver\.ResolveObject\(|GetObject\(|GetObjectById\(|GetObjectByDbRef\()`,
)

// scanDeclarations runs the declaration pre-pass over raw source (before
// rewriting) and returns the set of identifiers recognized as
// GameObject-typed locals.
func scanDeclarations(source string) map[string]bool {
	out := map[string]bool{}
	for _, m := range declarationPattern.FindAllStringSubmatch(source, -1) {
		if m[1] != "" {
			out[m[1]] = true
		}
		if m[2] != "" {
			out[m[2]] = true
		}
	}
	return out
}
