package insights

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sannskruti/cashflow-ai-dashboard/internal/domain"
)

// ParseInsights validates a raw reasoning response against the AiInsights
// shape. Every field is checked for presence and type; a response that only
// partially matches is rejected with a *ParseError, never silently defaulted.
func ParseInsights(raw string) (*domain.AiInsights, error) {
	clean := cleanModelJSON(raw)
	if clean == "" {
		return nil, &ParseError{Reason: "empty response"}
	}

	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(clean), &obj); err != nil {
		return nil, &ParseError{Reason: fmt.Sprintf("not valid JSON: %v", err)}
	}

	summary, err := getString(obj, "executiveSummary")
	if err != nil {
		return nil, err
	}

	drivers, err := getStringList(obj, "keyDrivers")
	if err != nil {
		return nil, err
	}

	recs, err := getRecommendations(obj)
	if err != nil {
		return nil, err
	}

	confidence, err := getNumber(obj, "confidence")
	if err != nil {
		return nil, err
	}
	if confidence < 0 || confidence > 1 {
		return nil, &ParseError{Reason: fmt.Sprintf("confidence %v outside [0,1]", confidence)}
	}

	notes, err := getStringList(obj, "notes")
	if err != nil {
		return nil, err
	}

	return &domain.AiInsights{
		ExecutiveSummary: summary,
		KeyDrivers:       drivers,
		Recommendations:  recs,
		Confidence:       confidence,
		Notes:            notes,
	}, nil
}

// cleanModelJSON strips Markdown fences and surrounding junk if the model
// ignored the formatting instructions, keeping only the outermost object.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		}
		s = strings.TrimSpace(s)
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end != -1 && end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}
	return s
}

func getString(m map[string]interface{}, key string) (string, error) {
	v, ok := m[key]
	if !ok {
		return "", &ParseError{Reason: fmt.Sprintf("missing field %q", key)}
	}
	s, ok := v.(string)
	if !ok {
		return "", &ParseError{Reason: fmt.Sprintf("field %q has type %T, want string", key, v)}
	}
	if strings.TrimSpace(s) == "" {
		return "", &ParseError{Reason: fmt.Sprintf("field %q is empty", key)}
	}
	return s, nil
}

func getNumber(m map[string]interface{}, key string) (float64, error) {
	v, ok := m[key]
	if !ok {
		return 0, &ParseError{Reason: fmt.Sprintf("missing field %q", key)}
	}
	f, ok := v.(float64)
	if !ok {
		return 0, &ParseError{Reason: fmt.Sprintf("field %q has type %T, want number", key, v)}
	}
	return f, nil
}

func getStringList(m map[string]interface{}, key string) ([]string, error) {
	v, ok := m[key]
	if !ok {
		return nil, &ParseError{Reason: fmt.Sprintf("missing field %q", key)}
	}
	items, ok := v.([]interface{})
	if !ok {
		return nil, &ParseError{Reason: fmt.Sprintf("field %q has type %T, want array", key, v)}
	}
	result := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, &ParseError{Reason: fmt.Sprintf("%s[%d] has type %T, want string", key, i, item)}
		}
		result = append(result, s)
	}
	return result, nil
}

func getRecommendations(m map[string]interface{}) ([]domain.Recommendation, error) {
	v, ok := m["recommendations"]
	if !ok {
		return nil, &ParseError{Reason: `missing field "recommendations"`}
	}
	items, ok := v.([]interface{})
	if !ok {
		return nil, &ParseError{Reason: fmt.Sprintf("field %q has type %T, want array", "recommendations", v)}
	}
	if len(items) < 3 || len(items) > 5 {
		return nil, &ParseError{Reason: fmt.Sprintf("want 3 to 5 recommendations, got %d", len(items))}
	}

	result := make([]domain.Recommendation, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]interface{})
		if !ok {
			return nil, &ParseError{Reason: fmt.Sprintf("recommendations[%d] has type %T, want object", i, item)}
		}
		var rec domain.Recommendation
		for key, dst := range map[string]*string{
			"action":    &rec.Action,
			"impact":    &rec.Impact,
			"effort":    &rec.Effort,
			"timeframe": &rec.Timeframe,
		} {
			s, err := getString(obj, key)
			if err != nil {
				return nil, &ParseError{Reason: fmt.Sprintf("recommendations[%d]: %v", i, err)}
			}
			*dst = s
		}
		result = append(result, rec)
	}
	return result, nil
}
