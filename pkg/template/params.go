package template

// ParameterSet maps placeholder keys to their replacement values. It is
// constructed per render; the same set always yields the same output.
type ParameterSet map[string]string

// Merge returns a new ParameterSet combining p with overrides, the latter
// winning on key collisions. Neither input is mutated.
func (p ParameterSet) Merge(overrides ParameterSet) ParameterSet {
	out := make(ParameterSet, len(p)+len(overrides))
	for key, value := range p {
		out[key] = value
	}
	for key, value := range overrides {
		out[key] = value
	}
	return out
}

// Covers reports whether p supplies a value for every listed key.
func (p ParameterSet) Covers(keys []string) bool {
	for _, key := range keys {
		if _, ok := p[key]; !ok {
			return false
		}
	}
	return true
}
