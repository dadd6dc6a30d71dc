package resolver

import "strings"

// MatchPattern matches a verb pattern containing `{name}` slots against
// an input command line, returning the bound slot values on success.
// This is the command-parser-side counterpart to §6's contract that
// `variables: map<string,string>` reaches ExecuteVerb already extracted;
// it is supplemented here so the reference command dispatch in
// cmd/scriptcore-demo has something real to call (the wire protocol a
// full command parser would use is out of this core's scope).
//
// Matching is literal-segment based: the pattern is split on its slots
// into literal runs, and the input must contain those runs in order,
// case-insensitively, with each slot capturing everything up to the
// first occurrence of the next literal run (or the end of input for the
// final slot).
func MatchPattern(pattern, input string) (map[string]string, bool) {
	segments, slots := splitPattern(pattern)
	vars := map[string]string{}

	rest := input
	for i, lit := range segments {
		if i == 0 {
			if !strings.HasPrefix(strings.ToLower(rest), strings.ToLower(lit)) {
				return nil, false
			}
			rest = rest[len(lit):]
			continue
		}

		slotName := slots[i-1]
		if i == len(segments)-1 && lit == "" {
			vars[slotName] = strings.TrimSpace(rest)
			return vars, true
		}

		idx := strings.Index(strings.ToLower(rest), strings.ToLower(lit))
		if idx < 0 {
			return nil, false
		}
		vars[slotName] = strings.TrimSpace(rest[:idx])
		rest = rest[idx+len(lit):]
	}

	if strings.TrimSpace(rest) != "" {
		return nil, false
	}
	return vars, true
}

// splitPattern breaks a pattern like "give {item} to {target}" into its
// literal segments ("give ", " to ", "") and slot names ("item",
// "target"), in the same order MatchPattern consumes them.
func splitPattern(pattern string) (segments []string, slots []string) {
	var cur strings.Builder
	var slot strings.Builder
	inSlot := false
	for _, r := range pattern {
		switch {
		case r == '{':
			inSlot = true
			segments = append(segments, cur.String())
			cur.Reset()
			slot.Reset()
		case r == '}':
			inSlot = false
			slots = append(slots, slot.String())
		case inSlot:
			slot.WriteRune(r)
		default:
			cur.WriteRune(r)
		}
	}
	segments = append(segments, cur.String())
	return segments, slots
}
