package cfg

type Cfg struct {
	// Remote API
	Session    string
	ConfigFile string
	UserAgent  string
	Locale     string

	// Storage
	DBPath    string
	RedisAddr string
	PosterTTL int

	// Application configuration
	Port              string
	WorkerCount       int
	RefreshInterval   int
	PosterConcurrency int
	APIAccessKey      string
	NtfyTopic         string

	// Application metadata
	Timezone string
	Debug    bool
	Version  string
}
