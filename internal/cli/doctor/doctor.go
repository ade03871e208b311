package doctor

import "context"

// Status is the outcome of a single check.
type Status string

const (
	StatusOK    Status = "ok"
	StatusWarn  Status = "warn"
	StatusError Status = "error"
)

// Result describes one check outcome.
type Result struct {
	Name    string
	Status  Status
	Details string
}

// Check inspects one aspect of the deployment. Returning stop halts the
// remaining checks, used when later checks depend on this one.
type Check struct {
	Name string
	Run  func(ctx context.Context) (res Result, stop bool)
}

// Run executes checks in order until one asks to stop.
func Run(ctx context.Context, checks []Check) []Result {
	results := make([]Result, 0, len(checks))
	for _, check := range checks {
		res, stop := check.Run(ctx)
		if res.Name == "" {
			res.Name = check.Name
		}
		results = append(results, res)
		if stop {
			break
		}
	}
	return results
}

// HasFailures reports whether any result is an error.
func HasFailures(results []Result) bool {
	for _, res := range results {
		if res.Status == StatusError {
			return true
		}
	}
	return false
}
