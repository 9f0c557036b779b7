package templates

import (
	"regexp"
	"strings"
)

// v1 classification matches the trigger binding type or the declared
// metadata triggerType.
var (
	httpTriggerPattern  = regexp.MustCompile(`(?i)^http`)
	timerTriggerPattern = regexp.MustCompile(`(?i)^timer`)
	mcpTriggerPattern   = regexp.MustCompile(`(?i)^mcptooltrigger`)
)

// v2 templates have no kind field; the template id is the only signal.
// MCP ids differ by authoring ecosystem: Python templates use
// "MCPToolTrigger", Node templates use "McpTrigger". Both are honored.
const (
	httpTriggerMarker    = "httptrigger"
	timerTriggerMarker   = "timertrigger"
	mcpToolTriggerMarker = "mcptooltrigger"
	mcpTriggerMarker     = "mcptrigger"
)

func classifyScript(t *FunctionTemplate, bindingType string) {
	match := func(re *regexp.Regexp) bool {
		return (bindingType != "" && re.MatchString(bindingType)) ||
			(t.TriggerType != "" && re.MatchString(t.TriggerType))
	}
	t.IsHTTPTrigger = match(httpTriggerPattern)
	t.IsTimerTrigger = match(timerTriggerPattern)
	t.IsMCPTrigger = match(mcpTriggerPattern)
}

func classifyJob(t *FunctionTemplate) {
	id := strings.ToLower(t.ID)
	t.IsHTTPTrigger = strings.Contains(id, httpTriggerMarker)
	t.IsTimerTrigger = strings.Contains(id, timerTriggerMarker)
	t.IsMCPTrigger = strings.Contains(id, mcpToolTriggerMarker) || strings.Contains(id, mcpTriggerMarker)
}

// TriggerKind returns a short label for listings.
func (t *FunctionTemplate) TriggerKind() string {
	switch {
	case t.IsMCPTrigger:
		return "mcp"
	case t.IsHTTPTrigger:
		return "http"
	case t.IsTimerTrigger:
		return "timer"
	default:
		return "other"
	}
}
