// Command tweetabsd is the tweetabs process entry point.
package main

import (
	"fmt"
	"os"

	"github.com/pinard/tweetabs"
)

const DEFAULT_INSTANCE = "tweetabsd"

// Set by the release build via -ldflags; left blank in dev builds.
var (
	Version string
	GitInfo string
)

var mainLog = tweetabs.NewCompLogger("main")

func init() {
	tweetabs.AddCallerSrcPathPrefixToLogger(0)
	tweetabs.SetDefaultInstance(DEFAULT_INSTANCE)
	tweetabs.SetDefaultConfigFile(fmt.Sprintf("%s-config.yaml", DEFAULT_INSTANCE))
	tweetabs.UpdateBuildInfo(Version, GitInfo)
}

func main() {
	mainLog.Info("Start")
	os.Exit(tweetabs.Run(tweetabs.DefaultTabsConfig(), newRemoteApi))
}
