package filter

import (
	"strings"

	"ReqFilter/internal/logger"
)

// ParseGrammar parses "name:arg|flag|..." into rules.
//
// Empty segments are dropped. A segment without ':' is a flag set to true.
// A segment with more than one ':' ("type::int", "a:b:c") or with an empty
// side (":x", "x:") is discarded without error.
func ParseGrammar(s string) Rules {
	var rules Rules
	for _, seg := range splitNonEmpty(s, "|") {
		if !strings.Contains(seg, ":") {
			rules = rules.With(seg, FlagArg(true))
			continue
		}
		parts := strings.Split(seg, ":")
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			logger.Debug("constraint_segment_discarded", map[string]any{
				"grammar": s,
				"segment": seg,
			})
			continue
		}
		rules = rules.With(parts[0], TextArg(parts[1]))
	}
	return rules
}

// splitNonEmpty splits s on sep and drops empty items.
func splitNonEmpty(s, sep string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, sep)
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
