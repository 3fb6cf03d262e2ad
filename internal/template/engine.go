package template

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Engine substitutes {{ variable }} placeholders in command templates.
// Both "{{ node }}" and "{{ .node }}" forms are accepted.
type Engine struct {
	templatePattern *regexp.Regexp
}

// New creates a new template engine
func New() *Engine {
	return &Engine{
		templatePattern: regexp.MustCompile(`\{\{\s*\.?([a-zA-Z_][a-zA-Z0-9_]*)\s*\}\}`),
	}
}

// Render replaces every placeholder in template with its value from vars.
// Unknown variables are an error.
func (e *Engine) Render(template string, vars map[string]interface{}) (string, error) {
	missing := map[string]struct{}{}

	result := e.templatePattern.ReplaceAllStringFunc(template, func(match string) string {
		name := e.templatePattern.FindStringSubmatch(match)[1]
		value, ok := vars[name]
		if !ok {
			missing[name] = struct{}{}
			return match
		}
		return stringify(value)
	})

	if len(missing) > 0 {
		names := make([]string, 0, len(missing))
		for name := range missing {
			names = append(names, name)
		}
		sort.Strings(names)
		return "", fmt.Errorf("missing template variables: %s", strings.Join(names, ", "))
	}
	return result, nil
}

// RenderArgs renders each element of an argv template.
func (e *Engine) RenderArgs(args []string, vars map[string]interface{}) ([]string, error) {
	rendered := make([]string, len(args))
	for i, arg := range args {
		out, err := e.Render(arg, vars)
		if err != nil {
			return nil, fmt.Errorf("error at argument %d: %w", i, err)
		}
		rendered[i] = out
	}
	return rendered, nil
}

// Variables lists the distinct placeholder names used in args.
func (e *Engine) Variables(args []string) []string {
	seen := map[string]struct{}{}
	var names []string
	for _, arg := range args {
		for _, m := range e.templatePattern.FindAllStringSubmatch(arg, -1) {
			if _, ok := seen[m[1]]; ok {
				continue
			}
			seen[m[1]] = struct{}{}
			names = append(names, m[1])
		}
	}
	return names
}

func stringify(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case int, int32, int64:
		return fmt.Sprintf("%d", v)
	case float32, float64:
		return fmt.Sprintf("%g", v)
	case bool:
		return fmt.Sprintf("%t", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Merge combines variable sets; keys in later sets win.
func Merge(sets ...map[string]interface{}) map[string]interface{} {
	merged := make(map[string]interface{})
	for _, set := range sets {
		for k, v := range set {
			merged[k] = v
		}
	}
	return merged
}
