package domain

// CommonOptions contains options shared by the CLI and the orchestrator
type CommonOptions struct {
	Verbose bool
	Force   bool
	Token   string
}

// DefaultCommonOptions returns CommonOptions with default values
func DefaultCommonOptions() CommonOptions {
	return CommonOptions{
		Verbose: false,
		Force:   false,
	}
}
