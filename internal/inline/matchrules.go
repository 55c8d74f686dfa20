package inline

import (
	"strings"

	"linemark/internal/grammar"
)

// Semantic names used by the default inline grammar.
const (
	NameEscape        = "Escape"
	NameAutolink      = "Autolink"
	NameCodeSpan      = "CodeSpan"
	NameURL           = "URL"
	NameEmail         = "Email"
	NameEmphasis      = "Emphasis"
	NameStrong        = "StrongEmphasis"
	NameStrikethrough = "Strikethrough"
)

// escapeRule consumes a backslash plus one punctuation character and
// emits the character literally, the backslash marked as syntax.
func escapeRule() *grammar.MatchRule {
	return &grammar.MatchRule{
		Match: func(rest []rune) (int, grammar.MatchCapture, bool) {
			if len(rest) >= 2 && rest[0] == '\\' && isPunct(rest[1]) {
				return 2, grammar.MatchCapture{Open: `\`, Content: string(rest[1])}, true
			}
			return 0, grammar.MatchCapture{}, false
		},
		Render: func(cap grammar.MatchCapture) grammar.Span {
			return grammar.Group(NameEscape,
				grammar.Mark(cap.Open),
				grammar.Content(cap.Content),
			)
		},
	}
}

// autolinkRule consumes <target> where target looks like a URL or an
// email address; the angle brackets become marks.
func autolinkRule() *grammar.MatchRule {
	return &grammar.MatchRule{
		Match: func(rest []rune) (int, grammar.MatchCapture, bool) {
			if len(rest) < 3 || rest[0] != '<' {
				return 0, grammar.MatchCapture{}, false
			}
			i := 1
			for i < len(rest) && rest[i] != '>' {
				if isWS(rest[i]) || rest[i] == '<' {
					return 0, grammar.MatchCapture{}, false
				}
				i++
			}
			if i >= len(rest) || i == 1 {
				return 0, grammar.MatchCapture{}, false
			}
			target := string(rest[1:i])
			var href string
			switch {
			case looksLikeURL(target):
				href = target
			case looksLikeEmail(target):
				href = "mailto:" + target
			default:
				return 0, grammar.MatchCapture{}, false
			}
			return i + 1, grammar.MatchCapture{Open: "<", Content: target, Close: ">", Href: href}, true
		},
		Render: func(cap grammar.MatchCapture) grammar.Span {
			sp := grammar.Group(NameAutolink,
				grammar.Mark(cap.Open),
				grammar.Content(cap.Content),
				grammar.Mark(cap.Close),
			)
			sp.Href = cap.Href
			return sp
		},
	}
}

// codeSpanRule scans a run of N backticks, then looks for the first
// later run of exactly N backticks not itself extended by a further
// backtick. No matching close means no match at all.
func codeSpanRule() *grammar.MatchRule {
	return &grammar.MatchRule{
		Match: func(rest []rune) (int, grammar.MatchCapture, bool) {
			if rest[0] != '`' {
				return 0, grammar.MatchCapture{}, false
			}
			n := runLength(rest, 0, '`')
			i := n
			for i < len(rest) {
				if rest[i] != '`' {
					i++
					continue
				}
				m := runLength(rest, i, '`')
				if m == n {
					fence := strings.Repeat("`", n)
					cap := grammar.MatchCapture{
						Open:    fence,
						Content: string(rest[n:i]),
						Close:   fence,
					}
					return i + m, cap, true
				}
				i += m
			}
			return 0, grammar.MatchCapture{}, false
		},
		Render: func(cap grammar.MatchCapture) grammar.Span {
			return grammar.Group(NameCodeSpan,
				grammar.Mark(cap.Open),
				grammar.Content(cap.Content),
				grammar.Mark(cap.Close),
			)
		},
	}
}

// bareURLRule consumes a protocol-prefixed URL with a valid-looking
// authority, trimming a maximal trailing suffix of sentence punctuation
// and unbalanced closing parentheses.
func bareURLRule() *grammar.MatchRule {
	return &grammar.MatchRule{
		Match: func(rest []rune) (int, grammar.MatchCapture, bool) {
			scheme := urlScheme(rest)
			if scheme == 0 {
				return 0, grammar.MatchCapture{}, false
			}
			end := scheme
			for end < len(rest) && !isWS(rest[end]) && rest[end] != '<' && rest[end] != '>' {
				end++
			}
			candidate := trimURLTail(rest[:end])
			if len(candidate) <= scheme {
				return 0, grammar.MatchCapture{}, false
			}
			url := string(candidate)
			if !validAuthority(url[schemeLen(url):]) {
				return 0, grammar.MatchCapture{}, false
			}
			return len(candidate), grammar.MatchCapture{Content: url, Href: url}, true
		},
		Render: func(cap grammar.MatchCapture) grammar.Span {
			return grammar.Span{
				Kind: grammar.SpanContent,
				Name: NameURL,
				Text: grammar.Escape(cap.Content),
				Href: cap.Href,
			}
		},
	}
}

// bareEmailRule consumes a plain email address at the cursor.
func bareEmailRule() *grammar.MatchRule {
	return &grammar.MatchRule{
		Match: func(rest []rune) (int, grammar.MatchCapture, bool) {
			n := emailLength(rest)
			if n == 0 {
				return 0, grammar.MatchCapture{}, false
			}
			addr := string(rest[:n])
			return n, grammar.MatchCapture{Content: addr, Href: "mailto:" + addr}, true
		},
		Render: func(cap grammar.MatchCapture) grammar.Span {
			return grammar.Span{
				Kind: grammar.SpanContent,
				Name: NameEmail,
				Text: grammar.Escape(cap.Content),
				Href: cap.Href,
			}
		},
	}
}

// runLength counts the run of c starting at i.
func runLength(runes []rune, i int, c rune) int {
	j := i
	for j < len(runes) && runes[j] == c {
		j++
	}
	return j - i
}

// urlScheme returns the rune length of a recognized scheme prefix
// ("http://" or "https://") at the start of rest, or 0.
func urlScheme(rest []rune) int {
	for _, scheme := range []string{"https://", "http://"} {
		if hasPrefixFold(rest, scheme) {
			return len(scheme)
		}
	}
	return 0
}

func schemeLen(url string) int {
	if strings.HasPrefix(strings.ToLower(url), "https://") {
		return len("https://")
	}
	return len("http://")
}

func hasPrefixFold(rest []rune, prefix string) bool {
	if len(rest) < len(prefix) {
		return false
	}
	return strings.EqualFold(string(rest[:len(prefix)]), prefix)
}

// validAuthority applies a loose sanity check to the host portion: it
// must be non-empty, start with an alphanumeric character, and contain
// a dot or be localhost.
func validAuthority(after string) bool {
	host := after
	for i, r := range host {
		if r == '/' || r == '?' || r == '#' || r == ':' {
			host = host[:i]
			break
		}
	}
	if host == "" || !isAlnumByte(host[0]) {
		return false
	}
	return strings.Contains(host, ".") || host == "localhost"
}

func isAlnumByte(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// trimURLTail strips the maximal trailing suffix of sentence punctuation
// and closing parentheses not balanced by an opener inside the URL.
// Best-effort by design.
func trimURLTail(candidate []rune) []rune {
	for len(candidate) > 0 {
		last := candidate[len(candidate)-1]
		if strings.ContainsRune(".,;:!?'\"", last) {
			candidate = candidate[:len(candidate)-1]
			continue
		}
		if last == ')' && parenDebt(candidate) > 0 {
			candidate = candidate[:len(candidate)-1]
			continue
		}
		break
	}
	return candidate
}

// parenDebt counts closing parens in excess of opening ones.
func parenDebt(runes []rune) int {
	debt := 0
	for _, r := range runes {
		switch r {
		case '(':
			debt--
		case ')':
			debt++
		}
	}
	return debt
}

// emailLength returns the rune length of an email address starting at
// rest[0], or 0. Local part accepts alphanumerics plus ._%+- and the
// domain needs at least one dot with a two-letter-plus final label.
func emailLength(rest []rune) int {
	i := 0
	for i < len(rest) && isEmailLocal(rest[i]) {
		i++
	}
	if i == 0 || i >= len(rest) || rest[i] != '@' {
		return 0
	}
	i++
	domStart := i
	for i < len(rest) && (isAlnum(rest[i]) || rest[i] == '-' || rest[i] == '.') {
		i++
	}
	// Trailing dots belong to the sentence, not the address.
	for i > domStart && rest[i-1] == '.' {
		i--
	}
	lastDot := -1
	for j := domStart; j < i; j++ {
		if rest[j] == '.' {
			lastDot = j
		}
	}
	if i == domStart || lastDot <= domStart || i-lastDot-1 < 2 {
		return 0
	}
	for j := lastDot + 1; j < i; j++ {
		if !isAlpha(rest[j]) {
			return 0
		}
	}
	return i
}

func isEmailLocal(r rune) bool {
	return isAlnum(r) || strings.ContainsRune("._%+-", r)
}

func isAlnum(r rune) bool {
	return isAlpha(r) || (r >= '0' && r <= '9')
}

func isAlpha(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
