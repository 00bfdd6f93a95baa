package feed

import (
	"fmt"
	"strings"
)

var ruleFields = map[string]bool{
	"title":       true,
	"description": true,
	"content":     true,
	"authors":     true,
	"link":        true,
	"categories":  true,
}

type Filterer struct{}

func NewFilterer() *Filterer {
	return &Filterer{}
}

// Run marks the items that the rules exclude. Items are never dropped here;
// the importer skips those flagged IsFiltered.
func (f *Filterer) Run(items []Item, rules []Rule) []Item {
	if len(rules) == 0 {
		return items
	}

	filtered := make([]Item, 0, len(items))
	for _, item := range items {
		isFiltered, filterReason := f.applyRules(item, rules)
		item.IsFiltered = isFiltered
		item.FilterReason = filterReason
		filtered = append(filtered, item)
	}

	return filtered
}

func (f *Filterer) applyRules(item Item, rules []Rule) (bool, string) {
	for _, rule := range rules {
		value := f.getFieldValue(item, rule.Field)

		for _, exclude := range rule.Excludes {
			if f.matchesRule(value, exclude) {
				return true, fmt.Sprintf("Excluded by %s rule: contains '%s'", rule.Field, exclude)
			}
		}

		if len(rule.Includes) > 0 {
			matched := false
			for _, include := range rule.Includes {
				if f.matchesRule(value, include) {
					matched = true
					break
				}
			}
			if !matched {
				return true, fmt.Sprintf("Excluded by %s rule: does not contain any of %v", rule.Field, rule.Includes)
			}
		}
	}

	return false, ""
}

func (f *Filterer) matchesRule(value, pattern string) bool {
	return strings.Contains(strings.ToLower(value), strings.ToLower(pattern))
}

func (f *Filterer) getFieldValue(item Item, field string) string {
	switch field {
	case "title":
		return item.Title
	case "description":
		return item.Description
	case "content":
		return item.Content
	case "authors":
		return strings.Join(item.Authors, " ")
	case "link":
		return item.Link
	case "categories":
		return strings.Join(item.Categories, " ")
	default:
		return ""
	}
}

// ParseRules builds rules from "field:text" pairs. Pairs for the same field
// are merged into one rule; rule order follows first appearance.
func ParseRules(includes, excludes []string) ([]Rule, error) {
	var rules []Rule
	index := make(map[string]int)

	add := func(spec string, exclude bool) error {
		field, text, ok := strings.Cut(spec, ":")
		field = strings.ToLower(strings.TrimSpace(field))
		if !ok || text == "" {
			return fmt.Errorf("rule %q must look like field:text", spec)
		}
		if !ruleFields[field] {
			return fmt.Errorf("invalid rule field: %s", field)
		}

		i, seen := index[field]
		if !seen {
			i = len(rules)
			index[field] = i
			rules = append(rules, Rule{Field: field})
		}
		if exclude {
			rules[i].Excludes = append(rules[i].Excludes, text)
		} else {
			rules[i].Includes = append(rules[i].Includes, text)
		}
		return nil
	}

	for _, spec := range includes {
		if err := add(spec, false); err != nil {
			return nil, err
		}
	}
	for _, spec := range excludes {
		if err := add(spec, true); err != nil {
			return nil, err
		}
	}

	return rules, nil
}
