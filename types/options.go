package types

// Option mutates a Config at construction time. Options never fail to
// apply, so they return no error.
type Option func(*Config)

// WithLogger overrides the default stderr Logger.
func WithLogger(l Logger) Option {
	return func(c *Config) { c.Logger = l }
}

// WithMaxWhileIterations overrides the "while" loop iteration cap.
func WithMaxWhileIterations(n int) Option {
	return func(c *Config) { c.MaxWhileIterations = n }
}

// WithDriverBatchSize overrides how many events the real-time driver
// processes per cooperative batch.
func WithDriverBatchSize(n int) Option {
	return func(c *Config) { c.DriverBatchSize = n }
}

// WithRandSeed overrides the seed for the facade's RNG, used by the expr
// package's random/random_range builtins. The RNG is part of a loaded
// module's state (seeded once, advanced once per draw), so two runs built
// with the same seed and fed the same events draw the same sequence.
func WithRandSeed(seed int64) Option {
	return func(c *Config) { c.RandSeed = seed }
}

// WithProperty sets a single free-form engine property.
func WithProperty(key, value string) Option {
	return func(c *Config) {
		if c.Properties == nil {
			c.Properties = map[string]string{}
		}
		c.Properties[key] = value
	}
}
