package mymcp

// ValidationError reports malformed call input: empty SQL, a
// multi-statement payload, or bad parameter bindings. Validation
// failures never reach the database.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}
