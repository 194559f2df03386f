package segment

import (
	"unicode"
	"unicode/utf8"
)

// Wrap greedily packs whitespace-separated words into lines shorter than
// width bytes. Whitespace stays attached to the word before it unless that
// would make the line reach width, in which case the whitespace run is cut,
// so joining the lines reproduces text. A word that alone reaches width is
// returned as its own line instead of being cut.
func Wrap(text string, width int) []string {
	if text == "" {
		return nil
	}
	if width <= 0 || len(text) < width {
		return []string{text}
	}

	var lines []string
	lineStart := 0
	for _, w := range words(text) {
		if w.end-lineStart < width {
			continue
		}
		if w.start > lineStart {
			lines = append(lines, text[lineStart:w.start])
			lineStart = w.start
		}
		for w.end-lineStart >= width {
			cut := cutPoint(text, lineStart, w.wordEnd, width)
			lines = append(lines, text[lineStart:cut])
			lineStart = cut
		}
	}
	if lineStart < len(text) {
		lines = append(lines, text[lineStart:])
	}
	return lines
}

// word is text[start:wordEnd] followed by the whitespace text[wordEnd:end].
// Leading whitespace of the input forms a word with no text.
type word struct {
	start, wordEnd, end int
}

func words(text string) []word {
	var out []word
	i := 0
	for i < len(text) {
		w := word{start: i}
		for i < len(text) {
			r, size := utf8.DecodeRuneInString(text[i:])
			if unicode.IsSpace(r) {
				break
			}
			i += size
		}
		w.wordEnd = i
		for i < len(text) {
			r, size := utf8.DecodeRuneInString(text[i:])
			if !unicode.IsSpace(r) {
				break
			}
			i += size
		}
		w.end = i
		out = append(out, w)
	}
	return out
}

// cutPoint returns where the line starting at lineStart ends. The word ending
// at wordEnd is never cut; past it the cut lands on a rune boundary inside the
// whitespace, keeping the line shorter than width where one rune allows it.
func cutPoint(text string, lineStart, wordEnd, width int) int {
	cut := lineStart + width - 1
	if cut < wordEnd {
		return wordEnd
	}
	for cut > lineStart && !utf8.RuneStart(text[cut]) {
		cut--
	}
	if cut == lineStart {
		_, size := utf8.DecodeRuneInString(text[lineStart:])
		cut += size
	}
	return cut
}
