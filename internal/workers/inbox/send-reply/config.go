package sendreply

import "time"

type Config struct {
	Timeout time.Duration
	// ResolveOnReply moves the record to resolved once the reply is recorded.
	ResolveOnReply bool
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 30 * time.Second,
	}
}
