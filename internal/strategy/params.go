package strategy

// Params carries strategy-specific parameters. Values typically arrive from
// JSON request bodies, so numeric entries may decode as float64 even when a
// parameter is conceptually an integer; the getters normalize this.
type Params map[string]any

// Int returns the integer value for key, or def when the key is absent or
// not numeric.
func (p Params) Int(key string, def int) int {
	v, ok := p[key]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return def
}

// Float returns the float value for key, or def when the key is absent or
// not numeric.
func (p Params) Float(key string, def float64) float64 {
	v, ok := p[key]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return def
}

// Bool returns the boolean value for key, or def when the key is absent or
// not a bool.
func (p Params) Bool(key string, def bool) bool {
	v, ok := p[key]
	if !ok {
		return def
	}
	b, ok := v.(bool)
	if !ok {
		return def
	}
	return b
}
