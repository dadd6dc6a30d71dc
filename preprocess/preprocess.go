// Package preprocess implements the pure text-to-text rewrite that turns
// friendly dbref/id syntax and typed member calls into canonical host
// calls before a verb or function body reaches the compiler (§4.1).
//
// The scanner style mirrors the teacher's own lexer (string and
// block-comment skipping with escape-aware scanning) rather than a
// regex pass, so that rewrites never fire inside a literal.
package preprocess

import (
	"strings"
)

// wellKnownObjectNames are identifiers the rewrite treats as definitely
// GameObject-typed without further analysis (§4.1 rule 3).
var wellKnownObjectNames = map[string]bool{
	"Player": true, "This": true, "ThisGameObject": true, "ThisPlayer": true,
	"ThisRoom": true, "ThisExit": true, "ThisObject": true, "Caller": true,
	"CallerGameObject": true, "CallerPlayer": true, "Location": true,
}

// gameObjectTypeNames are declaration-site type tokens that mark a local
// as GameObject-typed.
var gameObjectTypeNames = map[string]bool{
	"GameObject": true, "Room": true, "Player": true, "Exit": true,
	"Item": true, "Container": true,
}

// knownResolverCalls are call expressions whose result is GameObject-typed.
var knownResolverCalls = map[string]bool{
	"ObjectResolver.ResolveObject": true, "GetObject": true,
	"GetObjectById": true, "GetObjectByDbRef": true,
}

// builtinMethodNames are never rewritten regardless of receiver (§4.1 rule 3).
var builtinMethodNames = map[string]bool{
	"ToString": true, "GetType": true, "Equals": true, "GetHashCode": true,
	"ReferenceEquals": true, "MemberwiseClone": true, "CompareTo": true, "Clone": true,
}

// reservedIdentifiers are host keywords/types that are never treated as
// GameObject variables, even if they happen to precede ".Upper(".
var reservedIdentifiers = map[string]bool{
	"string": true, "int": true, "bool": true, "float": true, "double": true,
	"decimal": true, "object": true, "var": true, "new": true, "null": true,
	"true": true, "false": true, "this": true, "base": true, "void": true,
	"List": true, "Dictionary": true, "String": true, "Int32": true,
}

// Preprocess rewrites source from the world's friendly syntax into
// canonical calls. It is pure and idempotent (§8-3): running it twice
// produces the same output as running it once, because every rewrite's
// output is no longer recognized as an input pattern by the scanner
// (GetObjectByDbRef(...) is not itself a `#N` token, etc.).
func Preprocess(source string) string {
	s := &scanner{src: source, decl: scanDeclarations(source)}
	return s.run()
}

type scanner struct {
	src string
	pos int
	out strings.Builder

	// decl holds identifiers the source itself declares as GameObject-typed
	// (rule 3's local-declaration signal), gathered in a pre-pass so the
	// rewrite can see "forward" declarations within the same verb body.
	decl map[string]bool
}

func (s *scanner) run() string {
	n := len(s.src)
	for s.pos < n {
		c := s.src[s.pos]
		switch {
		case c == '"':
			s.copyStringLiteral()
		case c == '\'':
			s.copyCharLiteral()
		case c == '/' && s.peek(1) == '/':
			s.copyLineComment()
		case c == '/' && s.peek(1) == '*':
			s.copyBlockComment()
		case c == '#' && isDigit(s.peek(1)):
			s.rewriteDbref()
		case c == '$' && isIdentStart(rune(s.peek(1))):
			s.rewriteIDRef()
		case isIdentStart(rune(c)):
			s.maybeRewriteMethodCall()
		default:
			s.out.WriteByte(c)
			s.pos++
		}
	}
	return s.out.String()
}

func (s *scanner) peek(ahead int) byte {
	if s.pos+ahead >= len(s.src) {
		return 0
	}
	return s.src[s.pos+ahead]
}

// copyStringLiteral copies a double-quoted string, honoring backslash
// escapes, without attempting any rewrite inside it (§4.1 rule 4).
func (s *scanner) copyStringLiteral() {
	start := s.pos
	s.pos++ // opening quote
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		if c == '\\' && s.pos+1 < len(s.src) {
			s.pos += 2
			continue
		}
		s.pos++
		if c == '"' {
			break
		}
	}
	s.out.WriteString(s.src[start:s.pos])
}

func (s *scanner) copyCharLiteral() {
	start := s.pos
	s.pos++
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		if c == '\\' && s.pos+1 < len(s.src) {
			s.pos += 2
			continue
		}
		s.pos++
		if c == '\'' {
			break
		}
	}
	s.out.WriteString(s.src[start:s.pos])
}

func (s *scanner) copyLineComment() {
	start := s.pos
	for s.pos < len(s.src) && s.src[s.pos] != '\n' {
		s.pos++
	}
	s.out.WriteString(s.src[start:s.pos])
}

func (s *scanner) copyBlockComment() {
	start := s.pos
	s.pos += 2
	for s.pos < len(s.src) {
		if s.src[s.pos] == '*' && s.peek(1) == '/' {
			s.pos += 2
			break
		}
		s.pos++
	}
	s.out.WriteString(s.src[start:s.pos])
}

// rewriteDbref handles `#N.member`, `#N.fn(args)` and their assignment
// forms (§4.1 rule 1).
func (s *scanner) rewriteDbref() {
	start := s.pos
	s.pos++ // '#'
	numStart := s.pos
	for isDigit(s.peek(0)) {
		s.pos++
	}
	num := s.src[numStart:s.pos]

	if s.peek(0) != '.' {
		// Bare dbref literal, e.g. inside a list; leave it alone.
		s.out.WriteString(s.src[start:s.pos])
		return
	}
	s.pos++ // '.'
	member := s.scanIdent()
	s.out.WriteString("GetObjectByDbRef(")
	s.out.WriteString(num)
	s.out.WriteString(").")
	s.out.WriteString(member)
}

// rewriteIDRef handles `$IDENT.member` the same way (§4.1 rule 2).
// IDENT may contain '-' and '_'.
func (s *scanner) rewriteIDRef() {
	s.pos++ // '$'
	idStart := s.pos
	for {
		c := rune(s.peek(0))
		if isIdentPart(c) || c == '-' {
			s.pos++
			continue
		}
		break
	}
	id := s.src[idStart:s.pos]

	if s.peek(0) != '.' {
		s.out.WriteString("$")
		s.out.WriteString(id)
		return
	}
	s.pos++ // '.'
	member := s.scanIdent()
	s.out.WriteString(`GetObjectById("`)
	s.out.WriteString(id)
	s.out.WriteString(`").`)
	s.out.WriteString(member)
}

func (s *scanner) scanIdent() string {
	start := s.pos
	for isIdentPart(rune(s.peek(0))) {
		s.pos++
	}
	return s.src[start:s.pos]
}

// maybeRewriteMethodCall implements rule 3: `ident.Method(args)` becomes
// `CallFunctionOnObject(ident, "Method", args)` when ident is
// definitively GameObject-typed and Method looks like a script-defined
// member (upper-case first letter, not a built-in method name).
func (s *scanner) maybeRewriteMethodCall() {
	start := s.pos
	ident := s.scanIdent()

	if reservedIdentifiers[ident] {
		s.out.WriteString(ident)
		return
	}

	if s.peek(0) == '(' {
		// Plain function call on the identifier itself; never rewritten.
		s.out.WriteString(ident)
		return
	}

	if s.peek(0) != '.' {
		s.out.WriteString(ident)
		return
	}

	save := s.pos
	s.pos++ // '.'
	method := s.scanIdent()

	isGameObject := wellKnownObjectNames[ident] || s.decl[ident]
	if method == "" || !isUpper(method[0]) || builtinMethodNames[method] || s.peek(0) != '(' || !isGameObject {
		s.pos = save
		s.out.WriteString(ident)
		return
	}

	// Capture the argument list (balanced parens, respecting nested
	// strings), then recursively preprocess its contents so a dbref/id
	// reference or nested method call inside the argument list is still
	// rewritten.
	argStart := s.pos
	s.copyBalancedParens()
	args := s.src[argStart:s.pos]
	inner := strings.TrimSuffix(strings.TrimPrefix(args, "("), ")")
	rewrittenInner := Preprocess(inner)

	s.out.WriteString("CallFunctionOnObject(")
	s.out.WriteString(ident)
	s.out.WriteString(`, "`)
	s.out.WriteString(method)
	s.out.WriteString(`"`)
	if strings.TrimSpace(rewrittenInner) != "" {
		s.out.WriteString(", ")
		s.out.WriteString(rewrittenInner)
	}
	s.out.WriteString(")")
	_ = start
}

// copyBalancedParens advances past a parenthesized argument list,
// honoring nested parens and string/char literals within it.
func (s *scanner) copyBalancedParens() {
	depth := 0
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		switch c {
		case '"':
			s.skipStringLiteralRaw()
			continue
		case '\'':
			s.skipCharLiteralRaw()
			continue
		case '(':
			depth++
		case ')':
			depth--
			s.pos++
			if depth == 0 {
				return
			}
			continue
		}
		s.pos++
	}
}

func (s *scanner) skipStringLiteralRaw() {
	s.pos++
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		if c == '\\' && s.pos+1 < len(s.src) {
			s.pos += 2
			continue
		}
		s.pos++
		if c == '"' {
			return
		}
	}
}

func (s *scanner) skipCharLiteralRaw() {
	s.pos++
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		if c == '\\' && s.pos+1 < len(s.src) {
			s.pos += 2
			continue
		}
		s.pos++
		if c == '\'' {
			return
		}
	}
}

func isDigit(c byte) bool      { return c >= '0' && c <= '9' }
func isUpper(c byte) bool      { return c >= 'A' && c <= 'Z' }
func isIdentStart(c rune) bool { return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
func isIdentPart(c rune) bool  { return isIdentStart(c) || (c >= '0' && c <= '9') }
