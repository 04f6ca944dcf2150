package tags

import (
	"strings"
	"unicode"
)

// block is one block tag inside a comment.
type block struct {
	keyword string
	// lines holds the payload: the remainder of the tag line followed by every
	// continuation line up to the next tag
	lines []string
	// line is the zero-based line index of the tag inside the comment text
	line int
}

// text returns the payload joined into a single line.
func (b block) text() string {
	return strings.Join(strings.Fields(strings.Join(b.lines, " ")), " ")
}

// verbatim returns the payload with its line structure kept, common
// indentation removed and surrounding blank lines trimmed.
func (b block) verbatim() string {
	lines := append([]string(nil), b.lines...)
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) == 0 {
		return ""
	}

	indent := -1
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		n := len(l) - len(strings.TrimLeftFunc(l, unicode.IsSpace))
		if indent < 0 || n < indent {
			indent = n
		}
	}
	for i, l := range lines {
		if len(l) >= indent {
			lines[i] = strings.TrimRightFunc(l[indent:], unicode.IsSpace)
		} else {
			lines[i] = ""
		}
	}
	return strings.Join(lines, "\n")
}

// splitBlocks separates a comment into its leading description and block tags.
func splitBlocks(text string) (string, []block) {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	var desc []string
	var blocks []block
	for i, line := range lines {
		if kw, rest, ok := tagLine(line); ok {
			blocks = append(blocks, block{keyword: kw, lines: []string{rest}, line: i})
			continue
		}
		if len(blocks) == 0 {
			desc = append(desc, line)
			continue
		}
		last := &blocks[len(blocks)-1]
		last.lines = append(last.lines, line)
	}
	return strings.TrimSpace(strings.Join(desc, "\n")), blocks
}

// tagLine recognizes "@keyword rest". The keyword must start with a letter.
func tagLine(line string) (keyword, rest string, ok bool) {
	trimmed := strings.TrimLeftFunc(line, unicode.IsSpace)
	if len(trimmed) < 2 || trimmed[0] != '@' || !unicode.IsLetter(rune(trimmed[1])) {
		return "", "", false
	}
	end := strings.IndexFunc(trimmed, unicode.IsSpace)
	if end < 0 {
		return trimmed[1:], "", true
	}
	return trimmed[1:end], trimmed[end+1:], true
}

// description returns the free text preceding the first block tag.
func description(text string) string {
	desc, _ := splitBlocks(text)
	return desc
}

// blocksFor returns the blocks of c whose keyword matches, case-insensitively.
func blocksFor(c Comment, keyword string) []block {
	_, all := splitBlocks(c.Text)
	var out []block
	for _, b := range all {
		if strings.EqualFold(b.keyword, keyword) {
			out = append(out, b)
		}
	}
	return out
}
