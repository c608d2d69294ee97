package algo

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	bracketedRe  = regexp.MustCompile(`\[[^\]]*\]|\([^)]*\)|\{[^}]*\}`)
	apostropheRe = regexp.MustCompile(`['’]`)
	addOnRe      = regexp.MustCompile(`\+.*$`)
	punctRe      = regexp.MustCompile(`[^\p{L}\p{N}]+`)
	spaceRe      = regexp.MustCompile(`\s+`)
	trailingRe   = regexp.MustCompile(`[\s:\-]+$`)
)

// releaseTagRes matches release metadata that never belongs to the title of a work.
// Every pattern runs against text whose dots were already turned into spaces.
var releaseTagRes = []*regexp.Regexp{
	// Source and early release types
	regexp.MustCompile(`(?i)\b(?:cam|hdcam|ts|telesync|tc|hc|hdrip|brrip|bdrip|blu-?ray|dvdrip|dvdscr|webrip|web-?dl|hdtv|remux|amzn|dsnp|hmax)\b`),
	// Video codecs
	regexp.MustCompile(`(?i)\b(?:x26[45]|h ?26[45]|hevc|avc|xvid|divx|10bit|hdr(?:10)?)\b`),
	// Audio codecs and channel layouts
	regexp.MustCompile(`(?i)\b(?:aac|ac3|eac3|dts(?:-hd)?|flac|truehd|atmos|ddp?)(?: ?\d(?: \d)?)?\b`),
	// Resolution
	regexp.MustCompile(`(?i)\b(?:\d{3,4}p|4k|uhd)\b`),
	// Versions, builds and updates
	regexp.MustCompile(`(?i)\bv\d+(?: \d+)*\b`),
	regexp.MustCompile(`(?i)\bbuild ?\d+\b`),
	regexp.MustCompile(`(?i)\bupdate\b.*$`),
	// Edition and packaging markers
	regexp.MustCompile(`(?i)\b(?:repack|proper|rerip|limited|remastered|extended|unrated|uncut|director(?:'|’)?s? cut|theatrical|imax|dlc|goty|game of the year|portable|preinstalled|multi\d*)\b`),
	regexp.MustCompile(`(?i)\b(?:complete|deluxe|ultimate|gold|definitive|collectors?|enhanced|premium|special|anniversary) edition\b`),
	// Years
	regexp.MustCompile(`\b(?:19|20)\d{2}\b`),
	// Language tags
	regexp.MustCompile(`(?i)\b(?:rus|eng|ita|spa|esp|ger|fre|french|german|jpn|kor|\d{1,2} languages?)\b`),
	// Release groups and repackers
	regexp.MustCompile(`(?i)\b(?:yify|yts(?: (?:mx|am|lt))?|rarbg|etrg|ethd|evo|psa|ntb|tgx|galaxyrg|eztv|fitgirl|dodi|codex|plaza|skidrow|reloaded|tenoke|rune|cpy|empress|gog|flt|elamigos|razor1911|bone|collective|kaos)\b`),
}

// foldRunes decomposes accented characters, drops combining marks and case-folds.
func foldRunes(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC, cases.Fold())
	folded, _, err := transform.String(t, s)
	if err != nil {
		return strings.ToLower(s)
	}
	return folded
}

// stripReleaseTags removes bracketed metadata, add-on lists and known release tags.
func stripReleaseTags(s string) string {
	s = strings.NewReplacer(".", " ", "_", " ").Replace(s)
	s = bracketedRe.ReplaceAllString(s, " ")
	s = addOnRe.ReplaceAllString(s, "")
	for _, re := range releaseTagRes {
		s = re.ReplaceAllString(s, " ")
	}
	return s
}

// collapse turns every run of punctuation and whitespace into a single space.
func collapse(s string) string {
	return strings.TrimSpace(punctRe.ReplaceAllString(s, " "))
}

// Normalize canonicalizes a raw title into the key used for similarity comparison.
// Unrecognized tokens are kept. A title made only of release tags falls back to its
// folded form so it still compares equal to itself.
func Normalize(title string) string {
	folded := foldRunes(title)
	stripped := apostropheRe.ReplaceAllString(stripReleaseTags(folded), "")
	if normalized := collapse(stripped); normalized != "" {
		return normalized
	}
	return collapse(apostropheRe.ReplaceAllString(folded, ""))
}

// DisplayTitle lightly cleans a raw title for display, keeping its original case.
func DisplayTitle(title string) string {
	cleaned := stripReleaseTags(title)
	cleaned = strings.TrimSpace(spaceRe.ReplaceAllString(cleaned, " "))
	cleaned = strings.TrimSpace(trailingRe.ReplaceAllString(cleaned, ""))
	if cleaned == "" {
		return strings.TrimSpace(title)
	}
	return cleaned
}
