package pipeline

// Pipeline states in the order a full run reaches them
const (
	StateSourceFetched    = "SOURCE_FETCHED"
	StateConfigured       = "CONFIGURED"
	StateBuiltDebug       = "BUILT(debug)"
	StateBuiltRelease     = "BUILT(release)"
	StateInstalledDebug   = "INSTALLED(debug)"
	StateInstalledRelease = "INSTALLED(release)"
	StateMerged           = "MERGED"
	StatePackaged         = "PACKAGED"

	// StateFailed is recorded in place of the next state when a step fails
	StateFailed = "FAILED"
)

// States lists the states of a full run
var States = []string{
	StateSourceFetched,
	StateConfigured,
	StateBuiltDebug,
	StateBuiltRelease,
	StateInstalledDebug,
	StateInstalledRelease,
	StateMerged,
	StatePackaged,
}

func builtState(variant string) string {
	if variant == "Debug" {
		return StateBuiltDebug
	}

	return StateBuiltRelease
}

func installedState(variant string) string {
	if variant == "Debug" {
		return StateInstalledDebug
	}

	return StateInstalledRelease
}
