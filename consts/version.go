package consts

// These will be injected via -ldflags at build time
var (
	gitSha    string = "unknown"
	gitTag    string = "unknown"
	buildDate string = "unknown"
)

func Version() string {
	return gitTag
}

func GetBuildInfo() map[string]string {
	return map[string]string{
		"revision": gitSha,
		"version":  gitTag,
		"built":    buildDate,
	}
}
