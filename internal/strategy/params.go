package strategy

// Params carries one job's strategy parameters. Values arrive from yaml or
// JSON decoding, so numbers may be int, int64, or float64; the accessors
// normalize them.
type Params map[string]any

// Int returns the named parameter as an int, or def when absent.
func (p Params) Int(key string, def int) int {
	switch v := p[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return def
	}
}

// Float returns the named parameter as a float64, or def when absent.
func (p Params) Float(key string, def float64) float64 {
	switch v := p[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return def
	}
}

// Bool returns the named parameter as a bool, or def when absent.
func (p Params) Bool(key string, def bool) bool {
	if v, ok := p[key].(bool); ok {
		return v
	}
	return def
}

// Str returns the named parameter as a string, or def when absent.
func (p Params) Str(key, def string) string {
	if v, ok := p[key].(string); ok {
		return v
	}
	return def
}
