package feed

import (
	"fmt"
	"path"
	"regexp"
	"strings"
)

// DefaultPathRules rewrite an on-disk release note path into its URL directory.
var DefaultPathRules = []PathRule{
	// Collapse the doubled content folder
	{Pattern: `^docs/docs/`, Replacement: "docs/"},
	// Drop the two digit ordering prefix under release-notes
	{Pattern: `release-notes/\d{2}-`, Replacement: "release-notes/"},
	// Drop the file segment
	{Pattern: `/[^/]+$`, Replacement: ""},
}

type compiledRule struct {
	pattern     *regexp.Regexp
	replacement string
}

type LinkResolver struct {
	siteURL string
	rules   []compiledRule
}

func NewLinkResolver(siteURL string, rules []PathRule) (*LinkResolver, error) {
	compiled := make([]compiledRule, 0, len(rules))
	for i, rule := range rules {
		re, err := regexp.Compile(rule.Pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid path rule at index %d: %w", i, err)
		}
		compiled = append(compiled, compiledRule{pattern: re, replacement: rule.Replacement})
	}

	return &LinkResolver{
		siteURL: strings.TrimSuffix(siteURL, "/"),
		rules:   compiled,
	}, nil
}

func (r *LinkResolver) Resolve(docPath, fileName, id string) string {
	slug := id
	if slug == "" {
		slug = strings.TrimSuffix(fileName, path.Ext(fileName))
	}

	return fmt.Sprintf("%s/%s/%s", r.siteURL, r.Rewrite(docPath), slug)
}

// Rewrite applies the path rules in order.
func (r *LinkResolver) Rewrite(docPath string) string {
	for _, rule := range r.rules {
		docPath = rule.pattern.ReplaceAllString(docPath, rule.replacement)
	}
	return docPath
}
