// Runtime configuration.
//
// The configuration is loaded from a YAML file, with the following structure:
//
//  tweetabs_config:
//    instance: tweetabs
//    shutdown_max_wait: 5s
//    threaded: false
//    image_loader_capacity: 64MB
//    log_config:
//      ...
//    scheduler_config:
//      ...
//    rate_budget_config:
//      ...
//  tabs:
//    account_name: pinard
//    public_timeline: true
//    friends_timeline: true
//    ...
//    id_inputs:
//      - watched_ids.txt
//    id_outputs:
//      - path: archive.txt
//        inputs: [Public, Friends]
//
// The "tweetabs_config" section maps to RuntimeConfig, defined in this
// package. The "tabs" section maps to TabsConfig, which describes which of
// the fixed periodic tabs to instantiate at startup and how to wire up any
// file-backed source/sink tabs (§9.1, §4.9).

package tweetabs_internal

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/docker/go-units"
	"gopkg.in/yaml.v3"
)

const (
	TWEETABS_CONFIG_SECTION_NAME = "tweetabs_config"
	TABS_CONFIG_SECTION_NAME     = "tabs"

	RUNTIME_CONFIG_INSTANCE_DEFAULT              = "tweetabs"
	RUNTIME_CONFIG_SHUTDOWN_MAX_WAIT_DEFAULT     = 5 * time.Second
	RUNTIME_CONFIG_IMAGE_LOADER_CAPACITY_DEFAULT = "32MB"
)

// RuntimeConfig is the ambient, cross-cutting configuration: everything
// that isn't about which tabs to build.
type RuntimeConfig struct {
	// The instance name, default "tweetabs". May be overridden by
	// --instance.
	Instance string `yaml:"instance"`

	// How long to wait for a graceful shutdown. A negative value signifies
	// indefinite wait and 0 stands for no wait at all (exit abruptly).
	ShutdownMaxWait time.Duration `yaml:"shutdown_max_wait"`

	// Threaded selects the deployment mode where every RemoteApi call is
	// routed through a single dedicated worker goroutine rather than run
	// directly on the scheduler loop (§9.7).
	Threaded bool `yaml:"threaded"`

	// ImageLoaderCapacity is a human-readable byte size ("64MB", "1GiB")
	// bounding the advisory in-memory cache a view uses for avatar/media
	// thumbnails; the scheduler and strip layer never consult it, it's
	// purely a hint passed down to whatever view is attached (§6, §11).
	ImageLoaderCapacity string `yaml:"image_loader_capacity"`

	LoggerConfig     *LoggerConfig     `yaml:"log_config"`
	SchedulerConfig  *SchedulerConfig  `yaml:"scheduler_config"`
	RateBudgetConfig *RateBudgetConfig `yaml:"rate_budget_config"`
}

func DefaultRuntimeConfig() *RuntimeConfig {
	return &RuntimeConfig{
		Instance:            RUNTIME_CONFIG_INSTANCE_DEFAULT,
		ShutdownMaxWait:     RUNTIME_CONFIG_SHUTDOWN_MAX_WAIT_DEFAULT,
		ImageLoaderCapacity: RUNTIME_CONFIG_IMAGE_LOADER_CAPACITY_DEFAULT,
		LoggerConfig:        DefaultLoggerConfig(),
		SchedulerConfig:     DefaultSchedulerConfig(),
		RateBudgetConfig:    DefaultRateBudgetConfig(),
	}
}

// ImageLoaderCapacityBytes parses ImageLoaderCapacity, e.g. "64MB" -> 64000000.
func (c *RuntimeConfig) ImageLoaderCapacityBytes() (int64, error) {
	if c.ImageLoaderCapacity == "" {
		return 0, nil
	}
	return units.FromHumanSize(c.ImageLoaderCapacity)
}

// IdOutputConfig describes one file-backed Union sink (§4.9): Path is
// where its strips are persisted, Inputs names the tabs feeding it, by the
// name each would be given at construction time (e.g. "Public", "Friends").
type IdOutputConfig struct {
	Path   string   `yaml:"path"`
	Inputs []string `yaml:"inputs"`
}

// TabsConfig selects which of the fixed periodic tabs to build at startup
// and how to wire up file-backed tabs; there is no general plugin
// mechanism here, unlike a config section for an open set of generators,
// because the tab catalogue is fixed (§9.1).
type TabsConfig struct {
	AccountName string `yaml:"account_name"`

	PublicTimeline     bool `yaml:"public_timeline"`
	FriendsTimeline    bool `yaml:"friends_timeline"`
	RepliesTimeline    bool `yaml:"replies_timeline"`
	DirectTimeline     bool `yaml:"direct_timeline"`
	DirectSentTimeline bool `yaml:"direct_sent_timeline"`
	Followers          bool `yaml:"followers"`
	Following          bool `yaml:"following"`
	UserTimeline       bool `yaml:"user_timeline"`

	IdInputs  []string         `yaml:"id_inputs"`
	IdOutputs []IdOutputConfig `yaml:"id_outputs"`
}

func DefaultTabsConfig() *TabsConfig {
	return &TabsConfig{
		PublicTimeline:  true,
		FriendsTimeline: true,
		RepliesTimeline: true,
		DirectTimeline:  true,
		UserTimeline:    true,
	}
}

// LoadConfig loads the configuration from the specified YAML file (or
// buffer, for testing):
//   - the tweetabs_config section is returned as a *RuntimeConfig
//   - the tabs section is decoded into tabsConfig, which should have been
//     primed with defaults beforehand.
func LoadConfig(cfgFile string, tabsConfig *TabsConfig, buf []byte) (*RuntimeConfig, error) {
	if buf == nil {
		f, err := os.Open(cfgFile)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		buf, err = io.ReadAll(f)
		if err != nil {
			return nil, fmt.Errorf("file: %q: %v", cfgFile, err)
		}
	}

	docNode := yaml.Node{}
	err := yaml.Unmarshal(buf, &docNode)
	if err != nil {
		return nil, fmt.Errorf("file: %q: %v", cfgFile, err)
	}

	runtimeConfig := DefaultRuntimeConfig()
	if docNode.Kind == yaml.DocumentNode && len(docNode.Content) > 0 {
		rootNode := docNode.Content[0]
		if rootNode.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("file: %q: invalid YAML root node %q", cfgFile, rootNode.Tag)
		}
		var toCfg any = nil
		for _, n := range rootNode.Content {
			if n.Kind == yaml.ScalarNode {
				switch n.Value {
				case TWEETABS_CONFIG_SECTION_NAME:
					toCfg = runtimeConfig
				case TABS_CONFIG_SECTION_NAME:
					if tabsConfig != nil {
						toCfg = tabsConfig
					} else {
						toCfg = nil
					}
				default:
					toCfg = nil
				}
				continue
			}
			if n.Kind == yaml.MappingNode && toCfg != nil {
				if err = n.Decode(toCfg); err != nil {
					return nil, fmt.Errorf("file: %q: %v", cfgFile, err)
				}
			}
			toCfg = nil
		}
	}

	return runtimeConfig, nil
}
