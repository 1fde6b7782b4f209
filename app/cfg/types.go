package cfg

type Cfg struct {
	// Content configuration
	PostsDir string
	DBPath   string

	// Site metadata
	SiteTitle       string
	SiteDescription string
	SiteAuthor      string
	BaseUrl         string

	// Application configuration
	Port              string
	WorkerCount       int
	SchedulerInterval int
	APIAccessKey      string

	// Application metadata
	Timezone string
	Debug    bool
	Version  string
}
