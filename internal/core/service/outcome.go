package service

// GenerationResult is the outcome of the upstream call.
type GenerationResult struct {
	Reply string
	Err   error
}

// PersistenceResult is the outcome of appending the exchange to history.
type PersistenceResult struct {
	Err error
}

// resolveOutcome decides what the caller sees. A successful generation is
// always returned, whatever happened to persistence; persistence failures
// are reported separately by the caller.
func resolveOutcome(gen GenerationResult, _ PersistenceResult) (string, error) {
	if gen.Err != nil {
		return "", gen.Err
	}
	return gen.Reply, nil
}
