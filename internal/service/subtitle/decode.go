package subtitle

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
)

const (
	cueShapeScore       = 100
	replacementPenalty  = 8
	controlPenalty      = 2
	maxAccentedScore    = 30
	maxTimingLinesScore = 40
)

var (
	cueShapeRegex   = regexp.MustCompile(`\d{1,2}:\d{2}:\d{2}[,.]\d{3}\s*-->\s*\d{1,2}:\d{2}:\d{2}[,.]\d{3}`)
	timingLineRegex = regexp.MustCompile(`(?m)^\s*\d{1,2}:\d{2}:\d{2}[,.]\d{3}\s*-->`)
	srtFractionRe   = regexp.MustCompile(`(\d{2}:\d{2}:\d{2}),(\d{3})`)
)

type candidate struct {
	name string
	enc  encoding.Encoding
}

// Decode turns subtitle bytes into text, guessing the charset when they are not valid UTF-8.
func Decode(data []byte) string {
	data = []byte(strings.TrimPrefix(string(data), "\ufeff"))
	if utf8.Valid(data) {
		return string(data)
	}

	candidates := []candidate{
		{name: "utf-8"},
		{name: "iso-8859-1", enc: charmap.ISO8859_1},
		{name: "windows-1252", enc: charmap.Windows1252},
	}
	if guess, err := chardet.NewTextDetector().DetectBest(data); err == nil {
		if enc, err := htmlindex.Get(guess.Charset); err == nil {
			candidates = append(candidates, candidate{name: guess.Charset, enc: enc})
		}
	}

	best, bestScore := "", 0
	for i, c := range candidates {
		var text string
		if c.enc == nil {
			// invalid bytes become one replacement rune each
			text = string([]rune(string(data)))
		} else {
			decoded, err := c.enc.NewDecoder().Bytes(data)
			if err != nil {
				continue
			}
			text = string(decoded)
		}

		if score := decodeScore(text); i == 0 || score > bestScore {
			best, bestScore = text, score
		}
	}

	return best
}

func decodeScore(text string) int {
	score := 0
	if strings.Contains(text, "\n") && cueShapeRegex.MatchString(text) {
		score += cueShapeScore
	}

	accented := 0
	for _, r := range text {
		switch {
		case r == utf8.RuneError:
			score -= replacementPenalty
		case isDisallowedControl(r):
			score -= controlPenalty
		case r > unicode.MaxASCII && unicode.IsLetter(r):
			accented++
		}
	}
	score += min(accented, maxAccentedScore)
	score += min(len(timingLineRegex.FindAllStringIndex(text, -1)), maxTimingLinesScore)

	return score
}

func isDisallowedControl(r rune) bool {
	if r == '\n' || r == '\r' || r == '\t' {
		return false
	}
	return r < 0x20 || (r >= 0x7f && r <= 0x9f)
}

// ToVTT normalizes line endings and timestamps and makes sure the WEBVTT header is present.
func ToVTT(text string) string {
	text = strings.TrimPrefix(text, "\ufeff")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = srtFractionRe.ReplaceAllString(text, "$1.$2")

	if !strings.HasPrefix(text, "WEBVTT") {
		text = "WEBVTT\n\n" + strings.TrimLeft(text, "\n")
	}

	return text
}
