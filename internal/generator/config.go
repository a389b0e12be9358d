package generator

// Config drives the synthetic user generator.
type Config struct {
	Count    int
	Seed     int64
	IDPrefix string
}

// DefaultConfig returns the fixture settings the dashboard ships with.
func DefaultConfig() Config {
	return Config{
		Count:    500,
		IDPrefix: "LSQFf587g",
	}
}
