package errors

// Code classifies why a file could not be formatted. Every code collapses into
// the same failed outcome; the code only shapes the message shown to the user.
type Code int

const (
	NotFound Code = iota + 1
	ParseError
	IOError
	Internal
)

// Name returns a stable string identifier for the code.
func (c Code) Name() string {
	switch c {
	case NotFound:
		return "NotFound"
	case ParseError:
		return "ParseError"
	case IOError:
		return "IOError"
	case Internal:
		return "Internal"
	default:
		return "UnknownError"
	}
}
