package cfg

type Cfg struct {
	// Content and output
	ContentDir string
	OutputDir  string
	FeedConfig string
	Verify     bool

	// Build ledger
	DBPath string

	// Preview server
	Serve           bool
	Port            string
	RebuildInterval int

	// Application metadata
	Timezone string
	Debug    bool
	Version  string
}
