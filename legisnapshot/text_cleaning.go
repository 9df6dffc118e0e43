package legisnapshot

import (
	"regexp"
	"strings"
)

var (
	carriageReturnMarkers = strings.NewReplacer(
		"&amp;#13;", "",
		"&#13;", "",
		"&#xD;", "",
		"&#xd;", "",
		`\u000d`, "",
		"\r", "",
	)

	whitespaceRun     = regexp.MustCompile(`\s+`)
	emptyWrappers     = regexp.MustCompile(`<(p|div|span)(\s[^>]*)?>\s*</(p|div|span)>`)
	leadingLineBreak  = regexp.MustCompile(`^(\s*<br\s*/?>)+`)
	trailingLineBreak = regexp.MustCompile(`(<br\s*/?>\s*)+$`)
)

// CleanText normalizes a single-line free-text field (titles, full titles, comments, notes):
// carriage-return markers are removed, whitespace runs collapse to one space and the result is trimmed.
func CleanText(s string) string {
	if s == "" {
		return s
	}

	s = carriageReturnMarkers.Replace(s)

	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

// CleanMarkup normalizes an HTML-bearing body: carriage-return markers are removed, empty wrapping
// elements and leading or trailing line breaks are dropped and surrounding whitespace is trimmed.
// Inner whitespace is kept because bodies may contain preformatted tables.
func CleanMarkup(s string) string {
	if s == "" {
		return s
	}

	s = carriageReturnMarkers.Replace(s)
	for {
		stripped := emptyWrappers.ReplaceAllString(s, "")
		if stripped == s {
			break
		}
		s = stripped
	}

	s = strings.TrimSpace(s)
	s = leadingLineBreak.ReplaceAllString(s, "")
	s = trailingLineBreak.ReplaceAllString(s, "")

	return strings.TrimSpace(s)
}

func cleanSection(data SectionData) SectionData {
	data.Title = CleanText(data.Title)
	data.Comment = CleanText(data.Comment)

	return data
}

func cleanArticle(data ArticleData) ArticleData {
	data.Number = CleanText(data.Number)
	data.Title = CleanText(data.Title)
	if data.Title == "" {
		data.Title = ArticleTitle(data.Number)
	}
	data.Body = CleanMarkup(data.Body)
	data.Note = CleanText(CleanMarkup(data.Note))

	return data
}

func cleanHeader(data HeaderData) HeaderData {
	data.Title = CleanText(data.Title)

	return data
}

func cleanText(data TextData) TextData {
	data.Title = CleanText(data.Title)
	data.FullTitle = CleanText(data.FullTitle)

	return data
}

// ArticleTitle returns the display title of an article number, e.g. "Article L2232-13".
func ArticleTitle(number string) string {
	number = CleanText(number)
	if number == "" {
		return "Article"
	}

	return "Article " + number
}
