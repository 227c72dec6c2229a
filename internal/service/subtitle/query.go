package subtitle

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

const (
	maxVariants      = 6
	minVariantLength = 3
)

var (
	seasonEpisodeRegex = regexp.MustCompile(`(?i)\bS(\d{1,2})\s*E(\d{1,4})\b`)
	animeEpisodeRegex  = regexp.MustCompile(`\(((?:19|20)\d{2})\)\s+(\d{1,4})\b`)
	yearParenRegex     = regexp.MustCompile(`\(((?:19|20)\d{2})\)`)
	bracketRegex       = regexp.MustCompile(`\[[^\]]*\]|\{[^}]*\}|\([^)]*\)`)
	resolutionRegex    = regexp.MustCompile(`^\d{3,4}[pi]$`)
	punctuationRegex   = regexp.MustCompile(`[^\p{L}\p{N}' ]+`)
	yearRegex          = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)
	numberRegex        = regexp.MustCompile(`\b\d+\b`)
)

// release tokens that end the title part of a file name
var qualityTokens = map[string]struct{}{
	"x264": {}, "x265": {}, "h264": {}, "h265": {}, "hevc": {}, "avc": {}, "xvid": {}, "divx": {},
	"webrip": {}, "web-dl": {}, "webdl": {}, "web": {}, "bluray": {}, "blu-ray": {}, "brrip": {},
	"bdrip": {}, "dvdrip": {}, "hdrip": {}, "hdtv": {}, "hdr": {}, "remux": {}, "uhd": {},
	"aac": {}, "ac3": {}, "dts": {}, "ddp5": {}, "10bit": {}, "8bit": {}, "proper": {}, "repack": {},
	"amzn": {}, "nf": {}, "dsnp": {}, "hmax": {}, "4k": {}, "mkv": {}, "mp4": {}, "avi": {},
}

// words that rarely help a title search
var noiseWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "complete": {}, "season": {}, "episode": {}, "ep": {}, "part": {},
	"uncut": {}, "extended": {}, "remastered": {}, "unrated": {}, "subbed": {}, "dubbed": {},
	"multi": {}, "dual": {}, "audio": {}, "eng": {}, "english": {},
}

var languageCodes = map[string]string{
	"en": "eng", "english": "eng",
	"es": "spa", "spanish": "spa",
	"fr": "fre", "french": "fre",
	"de": "ger", "german": "ger",
	"it": "ita", "italian": "ita",
	"pt": "por", "portuguese": "por",
	"pb": "pob", "pt-br": "pob",
	"ru": "rus", "russian": "rus",
	"ja": "jpn", "japanese": "jpn",
	"zh": "chi", "chinese": "chi",
	"ko": "kor", "korean": "kor",
	"ar": "ara", "arabic": "ara",
	"nl": "dut", "dutch": "dut",
	"pl": "pol", "polish": "pol",
	"tr": "tur", "turkish": "tur",
	"sv": "swe", "swedish": "swe",
	"uk": "ukr", "ukrainian": "ukr",
	"he": "heb", "hebrew": "heb",
	"el": "ell", "greek": "ell",
	"ro": "rum", "romanian": "rum",
	"hu": "hun", "hungarian": "hun",
	"cs": "cze", "czech": "cze",
	"id": "ind", "indonesian": "ind",
	"vi": "vie", "vietnamese": "vie",
}

// LanguageCode maps a language hint to the provider's three letter code.
func LanguageCode(hint string) string {
	hint = strings.ToLower(strings.TrimSpace(hint))
	switch hint {
	case "":
		return "eng"
	case "*", "all":
		return "all"
	}

	if code, ok := languageCodes[hint]; ok {
		return code
	}
	for _, code := range languageCodes {
		if code == hint {
			return code
		}
	}

	return "eng"
}

type Query struct {
	Base     string
	TVSeries bool
	Season   int
	Episode  int
}

// Normalize cleans a raw title or release file name and detects episode markers
// when season and episode are not supplied.
func Normalize(raw string, season, episode int) Query {
	s := strings.TrimSpace(raw)
	if strings.Contains(s, "%") {
		if decoded, err := url.QueryUnescape(s); err == nil {
			s = decoded
		}
	}
	s = strings.NewReplacer(".", " ", "_", " ", "+", " ").Replace(s)

	q := Query{Season: season, Episode: episode}

	if m := seasonEpisodeRegex.FindStringSubmatchIndex(s); m != nil {
		if season == 0 && episode == 0 {
			q.Season, _ = strconv.Atoi(s[m[2]:m[3]])
			q.Episode, _ = strconv.Atoi(s[m[4]:m[5]])
		}
		q.TVSeries = true
		s = s[:m[0]] + " " + s[m[1]:]
	} else if m := animeEpisodeRegex.FindStringSubmatchIndex(s); m != nil {
		if season == 0 && episode == 0 {
			q.Episode, _ = strconv.Atoi(s[m[4]:m[5]])
		}
		q.TVSeries = true
		s = s[:m[0]] + " " + s[m[1]:]
	}
	if q.Season > 0 || q.Episode > 0 {
		q.TVSeries = true
	}

	s = yearParenRegex.ReplaceAllString(s, " $1 ")
	s = bracketRegex.ReplaceAllString(s, " ")

	tokens := strings.Fields(s)
	for i, token := range tokens {
		if i > 0 && isQualityToken(token) {
			tokens = tokens[:i]
			break
		}
	}

	s = punctuationRegex.ReplaceAllString(strings.Join(tokens, " "), " ")
	q.Base = strings.Join(strings.Fields(s), " ")

	return q
}

func isQualityToken(token string) bool {
	lower := strings.ToLower(strings.Trim(token, "-[]()"))
	if _, ok := qualityTokens[lower]; ok {
		return true
	}
	if resolutionRegex.MatchString(lower) {
		return true
	}

	head, _, _ := strings.Cut(lower, "-")
	_, ok := qualityTokens[head]
	return ok || resolutionRegex.MatchString(head)
}

// Variants returns up to six distinct search strings, most specific first.
func Variants(base string) []string {
	tokens := strings.Fields(base)

	candidates := []string{
		base,
		collapse(yearRegex.ReplaceAllString(base, " ")),
		collapse(numberRegex.ReplaceAllString(base, " ")),
		firstTokens(tokens, 4),
		firstTokens(tokens, 3),
		firstTokens(tokens, 2),
		withoutNoise(tokens),
	}

	seen := make(map[string]struct{})
	variants := make([]string, 0, maxVariants)
	for _, c := range candidates {
		key := strings.ToLower(c)
		if len(c) < minVariantLength {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		variants = append(variants, c)
		if len(variants) == maxVariants {
			break
		}
	}

	return variants
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func firstTokens(tokens []string, n int) string {
	if len(tokens) <= n {
		return strings.Join(tokens, " ")
	}
	return strings.Join(tokens[:n], " ")
}

func withoutNoise(tokens []string) string {
	kept := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if _, ok := noiseWords[strings.ToLower(t)]; !ok {
			kept = append(kept, t)
		}
	}
	return strings.Join(kept, " ")
}

// titleTokens lowercases and splits on anything but letters and digits.
func titleTokens(s string) []string {
	s = punctuationRegex.ReplaceAllString(strings.ToLower(s), " ")
	s = strings.ReplaceAll(s, "'", "")
	return strings.Fields(s)
}

// Similarity is the share of query tokens found in title, as a 0-100 percentage.
func Similarity(query, title string) int {
	queryTokens := titleTokens(query)
	if len(queryTokens) == 0 {
		return 0
	}

	present := make(map[string]struct{})
	for _, t := range titleTokens(title) {
		present[t] = struct{}{}
	}

	hits := 0
	for _, t := range queryTokens {
		if _, ok := present[t]; ok {
			hits++
		}
	}

	return (hits*100 + len(queryTokens)/2) / len(queryTokens)
}
