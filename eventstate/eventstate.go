// Package eventstate persists the set of outstanding subscription
// triggers across a run, so a crashed or interrupted apply can resume
// exactly where it left off instead of re-running every resource.
package eventstate

import (
	"encoding/json"
	"path/filepath"

	fuserrors "github.com/fuselage-sh/fuselage/errors"
	"github.com/fuselage-sh/fuselage/platform"
)

// fileName is the saved-state file's name within the configured state
// directory ("<state_path>/events.saved").
const fileName = "events.saved"

// triggerValue is the one value ever stored against a set trigger,
// mirroring the source's `{resource-id: "*"}` map shape.
const triggerValue = "*"

// EventState persists `{resource-id: "*"}` at a configured path so a
// Runner can detect, after a crash, which resources still owe an apply
// because a trigger they were waiting on fired but was never consumed.
type EventState struct {
	plat      platform.Platform
	path      string
	simulate  bool
	triggers  map[string]string
	loaded    bool
}

// Open resolves the resume/no_resume/plain-start contract from spec §4.G
// and returns a ready-to-use EventState. resume and noResume must not
// both be true; that mutual exclusivity is the runner's job to enforce
// before calling Open (spec ties it to Runner.new, not EventState.open).
func Open(plat platform.Platform, statePath string, resume, noResume, simulate bool) (*EventState, error) {
	es := &EventState{
		plat:     plat,
		path:     filepath.Join(statePath, fileName),
		simulate: simulate,
	}

	if !simulate {
		if err := plat.MakeDirs(statePath); err != nil {
			return nil, fuserrors.Wrap(fuserrors.KindExecution, "", err)
		}
	}

	exists := plat.Exists(es.path)

	switch {
	case exists && !resume && !noResume:
		return nil, fuserrors.SavedEventsAndNoInstruction
	case noResume:
		if exists {
			if err := plat.Unlink(es.path); err != nil {
				return nil, fuserrors.Wrap(fuserrors.KindExecution, "", err)
			}
		}
		es.triggers = map[string]string{}
		es.loaded = true
	case resume:
		// Deferred: read lazily on first access, per spec §4.G.
	default:
		es.triggers = map[string]string{}
		es.loaded = true
	}

	return es, nil
}

func (es *EventState) ensureLoaded() error {
	if es.loaded {
		return nil
	}
	data, err := es.plat.Get(es.path)
	if err != nil {
		es.triggers = map[string]string{}
		es.loaded = true
		return nil
	}
	var triggers map[string]string
	if err := json.Unmarshal(data, &triggers); err != nil {
		return fuserrors.Wrap(fuserrors.KindParse, "", err)
	}
	if triggers == nil {
		triggers = map[string]string{}
	}
	es.triggers = triggers
	es.loaded = true
	return nil
}

// SetTrigger marks id as having an outstanding trigger and persists the
// change immediately.
func (es *EventState) SetTrigger(id string) error {
	if err := es.ensureLoaded(); err != nil {
		return err
	}
	es.triggers[id] = triggerValue
	return es.persist()
}

// UnsetTrigger clears id's trigger and persists the change immediately.
func (es *EventState) UnsetTrigger(id string) error {
	if err := es.ensureLoaded(); err != nil {
		return err
	}
	delete(es.triggers, id)
	return es.persist()
}

// IsTriggerSet reports whether id currently has an outstanding trigger.
func (es *EventState) IsTriggerSet(id string) bool {
	if err := es.ensureLoaded(); err != nil {
		return false
	}
	return es.triggers[id] == triggerValue
}

func (es *EventState) persist() error {
	if es.simulate {
		return nil
	}
	data, err := json.Marshal(es.triggers)
	if err != nil {
		return fuserrors.Wrap(fuserrors.KindExecution, "", err)
	}
	return es.plat.Put(es.path, data, 0600)
}

// Success removes the saved-state file: called once a bundle apply
// completes in full, so no state survives a clean run.
func (es *EventState) Success() error {
	if es.simulate {
		return nil
	}
	if !es.plat.Exists(es.path) {
		return nil
	}
	return es.plat.Unlink(es.path)
}
