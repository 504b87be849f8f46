package basic

const (
	// DefaultMaxHeight 預設最高層數
	DefaultMaxHeight = 32
	// DefaultSeed 預設隨機種子，固定種子讓節點高度可重現
	DefaultSeed uint64 = 15445
)

type config struct {
	maxHeight int
	seed      uint64
}

func defaultConfig() config {
	return config{
		maxHeight: DefaultMaxHeight,
		seed:      DefaultSeed,
	}
}

// Option 設定 SkipList 的建構參數，建構後不可再變更
type Option func(*config)

// WithMaxHeight 設定最高層數，必須 >= 1
func WithMaxHeight(n int) Option {
	return func(c *config) {
		c.maxHeight = n
	}
}

// WithSeed 設定高度產生器的種子
func WithSeed(seed uint64) Option {
	return func(c *config) {
		c.seed = seed
	}
}
