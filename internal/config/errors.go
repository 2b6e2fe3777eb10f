package config

// ConfigurationError indicates a missing or invalid model selection or
// credential. It is fatal at startup; a failed mid-session model switch
// reports it and keeps the previous configuration.
type ConfigurationError struct {
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return e.Reason + ": " + e.Err.Error()
	}
	return e.Reason
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}
