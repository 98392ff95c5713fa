// BuildTabs turns a TabsConfig into the actual tab graph: the selected
// periodic tabs, any IdInput tabs, and any IdOutput tabs wired to the
// inputs named in config (§9.1, §4.9).

package tweetabs_internal

import "fmt"

func BuildTabs(reg *Registry, sched *Scheduler, caller *RemoteApiCaller, cfg *TabsConfig) error {
	if cfg.PublicTimeline {
		NewPublicTimeline(reg, sched, caller)
	}
	if cfg.FriendsTimeline {
		NewFriendsTimeline(reg, sched, caller)
	}
	if cfg.RepliesTimeline {
		NewRepliesTimeline(reg, sched, caller)
	}
	if cfg.DirectTimeline {
		NewDirectTimeline(reg, sched, caller)
	}
	if cfg.DirectSentTimeline {
		NewDirectSentTimeline(reg, sched, caller)
	}
	if cfg.Followers {
		NewFollowers(reg, sched, caller)
	}
	if cfg.Following {
		NewFollowing(reg, sched, caller)
	}
	if cfg.UserTimeline {
		NewUserTimeline(reg, sched, caller, cfg.AccountName)
	}

	for _, path := range cfg.IdInputs {
		if _, err := reg.NewIdInput(path); err != nil {
			return err
		}
	}

	for _, out := range cfg.IdOutputs {
		inputs := make([]*Tab, 0, len(out.Inputs))
		for _, name := range out.Inputs {
			in, err := reg.Lookup(name)
			if err != nil {
				return fmt.Errorf("id_output %q: input %q: %w", out.Path, name, err)
			}
			inputs = append(inputs, in)
		}
		if _, err := reg.NewIdOutput(out.Path, inputs...); err != nil {
			return err
		}
	}

	return nil
}

// CloseAllTabs closes every tab still registered, flushing any unsaved
// IdOutput tabs (§4.6, §4.9). Tabs with no outputs are closed first, pass
// after pass: closing a supplier refreshes its consumers, which would drop
// strips from an IdOutput before it saves them.
func CloseAllTabs(reg *Registry) {
	for reg.Count() > 0 {
		progress := false
		for _, t := range reg.byOrdinal {
			if len(t.outputs) == 0 {
				t.Close()
				progress = true
			}
		}
		if !progress {
			for _, t := range reg.byOrdinal {
				t.Close()
			}
		}
	}
}
