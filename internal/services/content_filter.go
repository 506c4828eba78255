package services

import (
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var bannedWords = []string{
	"fuck", "fucking", "fucker", "shit", "shitty", "bullshit",
	"asshole", "bastard", "bitch", "cunt",
	"nigger", "nigga", "faggot", "retard",
	"spam", "scam", "scammer", "phishing", "malware",
}

// ContentFilter screens free-text user input (report notes, custom rejection
// reasons) before it is stored, and strips any markup.
type ContentFilter struct {
	bannedWordRegexps []*regexp.Regexp
	urlPattern        *regexp.Regexp
	emailPattern      *regexp.Regexp
	sanitizer         *bluemonday.Policy
}

func NewContentFilter() *ContentFilter {
	cf := &ContentFilter{
		urlPattern:   regexp.MustCompile(`(?i)(https?://\S+|www\.\S+\.\S+)`),
		emailPattern: regexp.MustCompile(`(?i)\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,}\b`),
		sanitizer:    bluemonday.StrictPolicy(),
	}
	cf.bannedWordRegexps = make([]*regexp.Regexp, 0, len(bannedWords))
	for _, word := range bannedWords {
		re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(word) + `\b`)
		if err == nil {
			cf.bannedWordRegexps = append(cf.bannedWordRegexps, re)
		}
	}
	return cf
}

// Check returns (false, reason code) when the text violates content rules.
func (cf *ContentFilter) Check(text string) (bool, string) {
	if text == "" {
		return true, ""
	}
	for _, re := range cf.bannedWordRegexps {
		if re.MatchString(text) {
			return false, "inappropriate_language"
		}
	}
	if cf.urlPattern.MatchString(text) {
		return false, "url_not_allowed"
	}
	if cf.emailPattern.MatchString(text) {
		return false, "contact_info_not_allowed"
	}
	return true, ""
}

// Sanitize strips all markup and trims the result.
func (cf *ContentFilter) Sanitize(text string) string {
	return strings.TrimSpace(cf.sanitizer.Sanitize(text))
}

// RejectionMessage maps a filter reason code to user-facing text.
func (cf *ContentFilter) RejectionMessage(reason string) string {
	messages := map[string]string{
		"inappropriate_language":   "Your text contains inappropriate language.",
		"url_not_allowed":          "URLs and web links are not allowed.",
		"contact_info_not_allowed": "Contact information is not allowed.",
	}
	if msg, ok := messages[reason]; ok {
		return msg
	}
	return "Your text does not meet our content guidelines."
}
