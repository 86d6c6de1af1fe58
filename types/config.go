package types

// DefaultMaxWhileIterations bounds the action executor's "while" loop so a
// malformed or runaway condition can't hang a Step.
const DefaultMaxWhileIterations = 10000

// DefaultBatchSize is how many queued events the facade's cooperative
// real-time driver processes before yielding via runtime.Gosched().
const DefaultBatchSize = 10

// Config carries the engine's tunables, built through functional options.
type Config struct {
	Logger              Logger
	MaxWhileIterations  int
	DriverBatchSize     int
	RandSeed            int64
	Properties          map[string]string
}

// DefaultRandSeed seeds the facade's RNG when the caller never supplies
// WithRandSeed — fixed rather than time-based, so an unconfigured facade is
// still deterministic across runs.
const DefaultRandSeed = 1

// NewConfig builds a Config with defaults, then applies opts in order.
func NewConfig(opts ...Option) Config {
	c := Config{
		Logger:             DefaultLogger(),
		MaxWhileIterations: DefaultMaxWhileIterations,
		DriverBatchSize:    DefaultBatchSize,
		RandSeed:           DefaultRandSeed,
		Properties:         map[string]string{},
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}
