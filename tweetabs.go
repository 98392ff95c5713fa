// The public face of this module for its users.

package tweetabs

import (
	"flag"

	"github.com/sirupsen/logrus"

	tweetabs_internal "github.com/pinard/tweetabs/internal"
)

type StripKind = tweetabs_internal.StripKind

const (
	StripTweet  = tweetabs_internal.StripTweet
	StripUser   = tweetabs_internal.StripUser
	StripOpaque = tweetabs_internal.StripOpaque
)

type StripKey = tweetabs_internal.StripKey
type Strip = tweetabs_internal.Strip
type StripSet = tweetabs_internal.StripSet
type TweetPayload = tweetabs_internal.TweetPayload
type UserProfile = tweetabs_internal.UserProfile

type Tab = tweetabs_internal.Tab
type TabKind = tweetabs_internal.TabKind
type Registry = tweetabs_internal.Registry
type Selection = tweetabs_internal.Selection

type RemoteApi = tweetabs_internal.RemoteApi
type RemoteApiFactory = tweetabs_internal.RemoteApiFactory
type TimelineKind = tweetabs_internal.TimelineKind
type ViewSink = tweetabs_internal.ViewSink
type TabLabel = tweetabs_internal.TabLabel

type RuntimeConfig = tweetabs_internal.RuntimeConfig
type TabsConfig = tweetabs_internal.TabsConfig
type IdOutputConfig = tweetabs_internal.IdOutputConfig

// DefaultTabsConfig returns a *TabsConfig primed with the five always-on
// periodic timelines, suitable as the starting point for main's config
// before LoadConfig overlays a "tabs:" YAML section on it.
func DefaultTabsConfig() *TabsConfig {
	return tweetabs_internal.DefaultTabsConfig()
}

// The instance should be primed w/ the desired default *before* invoking
// the runner, typically from an init(). Its value may be modified via
// config and command line args.
func SetDefaultInstance(instance string) {
	tweetabs_internal.Instance = instance
}

// Set the config flag default value, typically to
// <default_instance>-config.yaml:
func SetDefaultConfigFile(filePath string) {
	if configFlag := flag.Lookup(tweetabs_internal.CONFIG_FLAG_NAME); configFlag != nil {
		if err := configFlag.Value.Set(filePath); err == nil {
			configFlag.DefValue = filePath
		}
	}
}

// Update build info: version (semver) and git info. This function should be
// called *before* the runner is invoked, typically from an init() function.
func UpdateBuildInfo(version, gitInfo string) {
	tweetabs_internal.Version = version
	tweetabs_internal.GitInfo = gitInfo
}

// Get the instance, which is typically set from the command line or config.
func GetInstance() string {
	return tweetabs_internal.Instance
}

// The root logger. Needed only for tests where the logger is captured (see
// testutils/log_collector.go), its actual type is obscured.
func GetRootLogger() any { return tweetabs_internal.RootLogger }

// Create new component logger w/ comp=compName field:
func NewCompLogger(comp string) *logrus.Entry {
	return tweetabs_internal.NewCompLogger(comp)
}

// When logging files, the log file name is derived from the file path
// typically relative to the module root dir. The logger maintains a list of
// prefixes to strip and the following function will add the caller's module
// path to it. The latter is inferred from the caller's file path, going up
// N dirs. Typically the call is made from main.init() so the parameter is 0
// (assuming that main.go is at the root dir of the module).
func AddCallerSrcPathPrefixToLogger(upNDirs int) {
	tweetabs_internal.AddCallerSrcPathPrefixToLogger(upNDirs, 1)
}

// The runner is the entry point for a tweetabs instance. tabsConfig should
// be primed with defaults, newRemoteApi builds the concrete RemoteApi
// client (credentials, transport and all). It returns only when the
// process is interrupted via a signal, or if initialization failed; its
// return value should be used as process exit status.
func Run(tabsConfig *TabsConfig, newRemoteApi RemoteApiFactory) int {
	return tweetabs_internal.Run(tabsConfig, newRemoteApi)
}
