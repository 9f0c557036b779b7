package templates

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
)

var triggerBindingType = regexp.MustCompile(`(?i)trigger$`)

// FunctionJSON is a v1 function.json document. Unknown properties are kept
// so that the document round-trips.
type FunctionJSON struct {
	data map[string]any
}

// NewFunctionJSON wraps a decoded function.json object.
func NewFunctionJSON(data map[string]any) *FunctionJSON {
	if data == nil {
		data = map[string]any{}
	}
	return &FunctionJSON{data: data}
}

// Bindings returns the binding objects in declaration order.
func (f *FunctionJSON) Bindings() []map[string]any {
	raw, _ := f.data["bindings"].([]any)
	bindings := make([]map[string]any, 0, len(raw))
	for _, b := range raw {
		if m, ok := b.(map[string]any); ok {
			bindings = append(bindings, m)
		}
	}
	return bindings
}

// TriggerBinding returns the first binding whose type ends in "Trigger".
func (f *FunctionJSON) TriggerBinding() map[string]any {
	for _, b := range f.Bindings() {
		if t, _ := b["type"].(string); triggerBindingType.MatchString(t) {
			return b
		}
	}
	return nil
}

// TriggerType returns the trigger binding's type or "".
func (f *FunctionJSON) TriggerType() string {
	if b := f.TriggerBinding(); b != nil {
		t, _ := b["type"].(string)
		return t
	}
	return ""
}

// Clone returns a deep copy.
func (f *FunctionJSON) Clone() *FunctionJSON {
	data, err := json.Marshal(f.data)
	if err != nil {
		return NewFunctionJSON(nil)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return NewFunctionJSON(nil)
	}
	return NewFunctionJSON(out)
}

// SetTriggerValue sets a property on the trigger binding.
func (f *FunctionJSON) SetTriggerValue(name string, value any) error {
	b := f.TriggerBinding()
	if b == nil {
		return fmt.Errorf("function.json has no trigger binding")
	}
	b[name] = value
	return nil
}

// Marshal renders the document as indented JSON.
func (f *FunctionJSON) Marshal() ([]byte, error) {
	return json.MarshalIndent(f.data, "", "  ")
}

// scalarString renders JSON scalars as text. Composite values report false.
func scalarString(v any) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		return val, true
	case bool:
		return strconv.FormatBool(val), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case json.Number:
		return val.String(), true
	default:
		return "", false
	}
}
