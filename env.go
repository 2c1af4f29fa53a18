package mention

// EnvKey is the key under which map environments collect handles.
const EnvKey = "mentions"

// Recorder is implemented by environments that collect rendered handles.
// Implementations must only append.
type Recorder interface {
	RecordMention(handle string)
}

// Env is a ready-made environment that collects rendered handles in document
// order.
type Env struct {
	Mentions []string
}

// RecordMention appends handle to e.Mentions.
func (e *Env) RecordMention(handle string) {
	if e == nil {
		return
	}
	e.Mentions = append(e.Mentions, handle)
}

// Record appends handle to the mention list of env and reports whether env
// could take it. Supported environments are Recorder implementations and
// map[string]any, where the list lives under EnvKey and is created when
// absent. Anything else is skipped.
func Record(env any, handle string) bool {
	switch e := env.(type) {
	case *Env:
		if e == nil {
			return false
		}
		e.RecordMention(handle)
		return true
	case Recorder:
		e.RecordMention(handle)
		return true
	case map[string]any:
		if e == nil {
			return false
		}
		switch list := e[EnvKey].(type) {
		case nil:
			e[EnvKey] = []string{handle}
		case []string:
			e[EnvKey] = append(list, handle)
		default:
			return false
		}
		return true
	}
	return false
}

// Mentions returns the handles recorded in env so far.
func Mentions(env any) []string {
	switch e := env.(type) {
	case *Env:
		if e != nil {
			return e.Mentions
		}
	case map[string]any:
		if list, ok := e[EnvKey].([]string); ok {
			return list
		}
	}
	return nil
}
