package wizard

import (
	"fmt"
	"sort"
	"strings"
)

// TokenPrefix marks context keys that double as text replacement targets.
const TokenPrefix = "$("

// Key is a context key. Use SettingKey, TokenKey or ParseKey to build one.
type Key struct {
	name string
}

// SettingKey returns the key for a setting name. Setting keys are lower case.
func SettingKey(name string) Key {
	return Key{name: strings.ToLower(name)}
}

// TokenKey returns the key for a token. A bare name is wrapped, so
// TokenKey("FUNCTION_NAME") and TokenKey("$(FUNCTION_NAME)") are equal.
func TokenKey(name string) Key {
	if strings.HasPrefix(name, TokenPrefix) {
		return Key{name: name}
	}
	return Key{name: TokenPrefix + name + ")"}
}

// ParseKey classifies a raw key from template data: "$(" keys are tokens and
// are kept verbatim, anything else is a setting name.
func ParseKey(raw string) Key {
	if strings.HasPrefix(raw, TokenPrefix) {
		return Key{name: raw}
	}
	return SettingKey(raw)
}

// String returns the canonical key text.
func (k Key) String() string { return k.name }

// IsToken reports whether k is a replacement target.
func (k Key) IsToken() bool { return strings.HasPrefix(k.name, TokenPrefix) }

// Kind tags the variant held by a Value.
type Kind int

const (
	KindString Kind = iota
	KindBool
	KindList
)

// Value is a string, a bool, or a list of strings.
type Value struct {
	kind Kind
	str  string
	b    bool
	list []string
}

// StringValue returns a string Value.
func StringValue(s string) Value { return Value{kind: KindString, str: s} }

// BoolValue returns a bool Value.
func BoolValue(b bool) Value { return Value{kind: KindBool, b: b} }

// ListValue returns a list Value. The slice is copied.
func ListValue(items ...string) Value {
	return Value{kind: KindList, list: append([]string(nil), items...)}
}

// Kind returns the variant tag.
func (v Value) Kind() Kind { return v.kind }

// Bool returns the boolean and whether v holds one.
func (v Value) Bool() (bool, bool) { return v.b, v.kind == KindBool }

// List returns a copy of the list and whether v holds one.
func (v Value) List() ([]string, bool) {
	return append([]string(nil), v.list...), v.kind == KindList
}

// String renders any variant as text: lists are comma separated.
func (v Value) String() string {
	switch v.kind {
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	case KindList:
		return strings.Join(v.list, ",")
	default:
		return v.str
	}
}

// IsZero reports whether v is an empty string, false, or an empty list.
func (v Value) IsZero() bool {
	switch v.kind {
	case KindBool:
		return !v.b
	case KindList:
		return len(v.list) == 0
	default:
		return v.str == ""
	}
}

// Context is the mutable state shared by the steps of one wizard run.
type Context struct {
	Language       string
	RuntimeVersion string
	ProjectPath    string

	values map[Key]Value
}

// NewContext returns an empty Context.
func NewContext(language, runtimeVersion, projectPath string) *Context {
	return &Context{
		Language:       language,
		RuntimeVersion: runtimeVersion,
		ProjectPath:    projectPath,
		values:         make(map[Key]Value),
	}
}

// Get returns the value stored under k.
func (c *Context) Get(k Key) (Value, bool) {
	v, ok := c.values[k]
	return v, ok
}

// Has reports whether k holds a non-zero value.
func (c *Context) Has(k Key) bool {
	v, ok := c.values[k]
	return ok && !v.IsZero()
}

// String returns the text form of k's value, or "" when unset.
func (c *Context) String(k Key) string {
	return c.values[k].String()
}

// Set stores v under k.
func (c *Context) Set(k Key, v Value) {
	c.values[k] = v
}

// SetString is shorthand for Set(k, StringValue(s)).
func (c *Context) SetString(k Key, s string) {
	c.Set(k, StringValue(s))
}

// Delete removes k.
func (c *Context) Delete(k Key) {
	delete(c.values, k)
}

// Keys returns all keys sorted by name.
func (c *Context) Keys() []Key {
	keys := make([]Key, 0, len(c.values))
	for k := range c.values {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].name < keys[j].name })
	return keys
}

// Tokens returns the token keys, longest first so that a token never loses
// to a shorter token that is its prefix.
func (c *Context) Tokens() []Key {
	var tokens []Key
	for k := range c.values {
		if k.IsToken() {
			tokens = append(tokens, k)
		}
	}
	sort.Slice(tokens, func(i, j int) bool {
		if len(tokens[i].name) != len(tokens[j].name) {
			return len(tokens[i].name) > len(tokens[j].name)
		}
		return tokens[i].name < tokens[j].name
	})
	return tokens
}

// ReplaceTokens substitutes every token key found in text with its value.
// The text is scanned once; substituted values are not rescanned.
func (c *Context) ReplaceTokens(text string) string {
	tokens := c.Tokens()
	if len(tokens) == 0 {
		return text
	}
	pairs := make([]string, 0, 2*len(tokens))
	for _, k := range tokens {
		pairs = append(pairs, k.name, c.values[k].String())
	}
	return strings.NewReplacer(pairs...).Replace(text)
}

// GoString helps test failure output.
func (c *Context) GoString() string {
	var b strings.Builder
	b.WriteString("wizard.Context{")
	for i, k := range c.Keys() {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s=%q", k.name, c.values[k].String())
	}
	b.WriteString("}")
	return b.String()
}
