package progress

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithParallelism bounds the goroutines used to score scenario days.
func WithParallelism(n int) Option {
	return func(e *Evaluator) {
		e.parallelism = n
	}
}
