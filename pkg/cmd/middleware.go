package cmd

// Middleware wraps a command: checks, logging, error mapping.
type Middleware func(Command) Command

// Apply wraps c with mws. The first middleware in the list runs innermost, so
// the last one sees the invocation first.
func Apply(c Command, mws ...Middleware) Command {
	for _, mw := range mws {
		c = mw(c)
	}
	return c
}
