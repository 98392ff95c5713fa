// ViewSink is the notification surface a runtime pushes to whatever is
// presenting tabs to a user (§6 Interfaces). It is the Go analogue of the
// original's direct GUI callbacks: this module never renders anything, it
// only reports what changed.

package tweetabs_internal

// ViewSink receives every user-visible change a Runtime makes. All methods
// are called synchronously from the scheduler goroutine, so an
// implementation must not block or reenter the runtime.
type ViewSink interface {
	StripAdded(tabId string, strip Strip)
	StripRemoved(tabId string, key StripKey)
	TabCreated(tabId string)
	TabDestroyed(tabId string)
	TabRenamed(tabId string, name string)
	TabLabelUpdated(tabId string, label TabLabel)
	Message(text string)
	Error(err error)
}

// TabLabel is the display-relevant subset of a tab's state, recomputed and
// pushed on every change that affects how a tab should be drawn (frozen
// padlock, hidden eye, selection highlight, dirty-output marker).
type TabLabel struct {
	Name     string
	Frozen   bool
	Hidden   bool
	Selected Selection
	Modified bool
}

// NullViewSink discards every notification; used by components under test
// and by headless deployments that only care about persisted state.
type NullViewSink struct{}

func (NullViewSink) StripAdded(string, Strip)         {}
func (NullViewSink) StripRemoved(string, StripKey)    {}
func (NullViewSink) TabCreated(string)                {}
func (NullViewSink) TabDestroyed(string)              {}
func (NullViewSink) TabRenamed(string, string)        {}
func (NullViewSink) TabLabelUpdated(string, TabLabel) {}
func (NullViewSink) Message(string)                   {}
func (NullViewSink) Error(error)                      {}

// LogViewSink is the reference sink: it turns every notification into a
// structured log line at the component logger's level, named after the
// event. Useful for the threaded/headless deployment mode where no GUI is
// attached (§9.7).
type LogViewSink struct{}

var viewLog = NewCompLogger("view")

func (LogViewSink) StripAdded(tabId string, strip Strip) {
	viewLog.WithField("tab", tabId).Debugf("strip added: %s", strip)
}

func (LogViewSink) StripRemoved(tabId string, key StripKey) {
	viewLog.WithField("tab", tabId).Debugf("strip removed: %s", key)
}

func (LogViewSink) TabCreated(tabId string) {
	viewLog.Infof("tab created: %s", tabId)
}

func (LogViewSink) TabDestroyed(tabId string) {
	viewLog.Infof("tab destroyed: %s", tabId)
}

func (LogViewSink) TabRenamed(tabId string, name string) {
	viewLog.Infof("tab %s renamed: %q", tabId, name)
}

func (LogViewSink) TabLabelUpdated(tabId string, label TabLabel) {
	viewLog.WithField("tab", tabId).Debugf("label updated: %+v", label)
}

func (LogViewSink) Message(text string) {
	viewLog.Info(text)
}

func (LogViewSink) Error(err error) {
	viewLog.Error(err)
}
