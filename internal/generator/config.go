package generator

// Config drives the synthetic workbook generator.
type Config struct {
	NumCases          int
	TransfersPerStage int
	Seed              int64
}

// DefaultConfig returns baseline settings that produce a workbook exercising
// every graph feature: grouped routes, multi-input transfers, swaps, bridges,
// and VASP endpoints.
func DefaultConfig() Config {
	return Config{
		NumCases:          2,
		TransfersPerStage: 4,
		Seed:              42,
	}
}
