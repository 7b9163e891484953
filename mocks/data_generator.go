package mocks

import (
	"math"
	"math/rand"
	"strconv"
	"time"

	"github.com/rxtech-lab/argo-features/internal/config"
	"github.com/rxtech-lab/argo-features/internal/types"
)

// DukascopyLayout is the timestamp layout of Dukascopy candle exports.
const DukascopyLayout = "02.01.2006 15:04:05.000"

// DataGenerator generates realistic daily candle tables for testing.
type DataGenerator struct {
	rng *rand.Rand
}

// NewDataGenerator creates a new DataGenerator with the given seed.
// Use a fixed seed for reproducible results in tests.
func NewDataGenerator(seed int64) *DataGenerator {
	return &DataGenerator{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// GeneratorConfig configures how a table is generated.
type GeneratorConfig struct {
	// Name is copied into the generated table
	Name string
	// IndexColumn holds the rendered timestamps
	IndexColumn string
	// Layout formats the timestamps
	Layout string
	// StartDate is the first day of the series
	StartDate time.Time
	// Count is the number of days to generate
	Count int
	// SkipWeekends leaves Saturdays and Sundays out, like exchange data
	SkipWeekends bool
	// InitialPrice is the starting price
	InitialPrice float64
	// Volatility controls price movement (0.01 = 1% typical daily volatility)
	Volatility float64
	// Trend is the drift factor (-0.01 to 0.01 for bearish to bullish)
	Trend float64
	// VolumeBase is the average volume per day
	VolumeBase float64
	// VolumeVariance is the variance in volume (0.0 to 1.0)
	VolumeVariance float64
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Name:           "TEST",
		IndexColumn:    config.DefaultIndexColumn,
		Layout:         DukascopyLayout,
		StartDate:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Count:          250,
		InitialPrice:   100.0,
		Volatility:     0.01, // 1% per day
		Trend:          0.0,  // neutral
		VolumeBase:     10000,
		VolumeVariance: 0.3,
	}
}

// Generate creates an OHLCV table whose index column is still part of Columns,
// the way a loader sees a file before splitting the index out.
// Prices follow a geometric Brownian motion.
func (g *DataGenerator) Generate(cfg GeneratorConfig) types.RawTable {
	columns := []string{cfg.IndexColumn, "Open", "High", "Low", "Close", "Volume"}
	table := types.RawTable{
		Name:    cfg.Name,
		Columns: columns,
		Values:  make(map[string][]string, len(columns)),
	}

	currentPrice := cfg.InitialPrice
	currentDate := cfg.StartDate

	for i := 0; i < cfg.Count; i++ {
		for cfg.SkipWeekends && isWeekend(currentDate) {
			currentDate = currentDate.AddDate(0, 0, 1)
		}

		open := currentPrice

		// Box-Muller transform for a normal draw
		u1 := g.rng.Float64()
		u2 := g.rng.Float64()
		z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)

		priceChange := cfg.Volatility * z
		drift := cfg.Trend / float64(cfg.Count)

		close := open * (1 + priceChange + drift)
		if close <= 0 {
			close = open * 0.99 // Prevent negative prices
		}

		highExtension := math.Abs(g.rng.Float64() * cfg.Volatility * open * 0.5)
		lowExtension := math.Abs(g.rng.Float64() * cfg.Volatility * open * 0.5)

		high := math.Max(open, close) + highExtension
		low := math.Min(open, close) - lowExtension
		if low <= 0 {
			low = math.Min(open, close) * 0.99
		}

		volumeVariation := 1.0 + (g.rng.Float64()*2-1)*cfg.VolumeVariance
		volume := cfg.VolumeBase * volumeVariation
		if volume < 0 {
			volume = cfg.VolumeBase * 0.1
		}

		table.Values[cfg.IndexColumn] = append(table.Values[cfg.IndexColumn], currentDate.Format(cfg.Layout))
		table.Values["Open"] = append(table.Values["Open"], formatDecimals(open, 4))
		table.Values["High"] = append(table.Values["High"], formatDecimals(high, 4))
		table.Values["Low"] = append(table.Values["Low"], formatDecimals(low, 4))
		table.Values["Close"] = append(table.Values["Close"], formatDecimals(close, 4))
		table.Values["Volume"] = append(table.Values["Volume"], formatDecimals(volume, 2))

		currentPrice = close
		currentDate = currentDate.AddDate(0, 0, 1)
	}

	return table
}

// GenerateSources generates one table per path, keyed by path so the result can
// back a MemoryLoader. Each table starts offsetDays after the previous one.
func (g *DataGenerator) GenerateSources(paths []string, baseConfig GeneratorConfig, offsetDays int) map[string]types.RawTable {
	tables := make(map[string]types.RawTable, len(paths))

	for i, path := range paths {
		cfg := baseConfig
		cfg.Name = path
		cfg.StartDate = baseConfig.StartDate.AddDate(0, 0, i*offsetDays)
		// Vary initial price and volatility slightly per source
		cfg.InitialPrice = baseConfig.InitialPrice * (0.8 + g.rng.Float64()*0.4)
		cfg.Volatility = baseConfig.Volatility * (0.8 + g.rng.Float64()*0.4)

		tables[path] = g.Generate(cfg)
	}

	return tables
}

func isWeekend(t time.Time) bool {
	return t.Weekday() == time.Saturday || t.Weekday() == time.Sunday
}

// formatDecimals renders val rounded to the specified number of decimal places.
func formatDecimals(val float64, decimals int) string {
	pow := math.Pow(10, float64(decimals))

	return strconv.FormatFloat(math.Round(val*pow)/pow, 'f', -1, 64)
}
