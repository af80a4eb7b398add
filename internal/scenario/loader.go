package scenario

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

var ErrUnknownScenario = errors.New("unknown scenario")

// Paths helper for default/scenario/task files.
type Paths struct {
	BaseDir string // base directory, e.g., ./config
}

func (p Paths) DefaultPath() string {
	return filepath.Join(p.BaseDir, "default.yaml")
}
func (p Paths) ScenarioPath(name string) string {
	return filepath.Join(p.BaseDir, "scenarios", name+".yaml")
}
func (p Paths) TaskPath(name, task string) string {
	return filepath.Join(p.BaseDir, "scenarios", name, "tasks", task+".yaml")
}

// Files lists the layer files a (scenario, task) pair reads, in merge order.
func (p Paths) Files(name, task string) []string {
	files := []string{p.DefaultPath()}
	if name != "" {
		files = append(files, p.ScenarioPath(name))
		if task != "" {
			files = append(files, p.TaskPath(name, task))
		}
	}
	return files
}

// Loader reads YAML configs and merges default → scenario → task.
type Loader struct {
	paths Paths

	mu    sync.RWMutex
	cache map[string]RawConfig // key: "scenario" or "scenario/task" or "$default"
}

// NewLoader creates a config loader with the given base directory.
func NewLoader(baseDir string) *Loader {
	return &Loader{
		paths: Paths{BaseDir: baseDir},
		cache: make(map[string]RawConfig),
	}
}

func (l *Loader) Paths() Paths { return l.paths }

func cacheKey(name, task string) string {
	switch {
	case name == "":
		return "$default"
	case task == "":
		return name
	default:
		return name + "/" + task
	}
}

// LoadMerged loads and merges default → scenario → task. Both name and task
// are optional, but a named layer must exist. It returns the merged
// RawConfig (without normalization).
func (l *Loader) LoadMerged(name, task string) (RawConfig, error) {
	key := cacheKey(name, task)
	l.mu.RLock()
	if cfg, ok := l.cache[key]; ok {
		l.mu.RUnlock()
		return cfg, nil
	}
	l.mu.RUnlock()

	// default file may be absent; everything can live in the scenario
	defCfg, _, err := readYAML(l.paths.DefaultPath())
	if err != nil {
		return RawConfig{}, fmt.Errorf("read default: %w", err)
	}
	merged := defCfg
	if name != "" {
		scCfg, found, err := readYAML(l.paths.ScenarioPath(name))
		if err != nil {
			return RawConfig{}, fmt.Errorf("read scenario %s: %w", name, err)
		}
		if !found {
			return RawConfig{}, fmt.Errorf("%w: %s", ErrUnknownScenario, name)
		}
		merged = mergeRaw(merged, scCfg)
	}
	if name != "" && task != "" {
		taskCfg, found, err := readYAML(l.paths.TaskPath(name, task))
		if err != nil {
			return RawConfig{}, fmt.Errorf("read task %s/%s: %w", name, task, err)
		}
		if !found {
			return RawConfig{}, fmt.Errorf("%w: %s/%s", ErrUnknownScenario, name, task)
		}
		merged = mergeRaw(merged, taskCfg)
	}

	l.mu.Lock()
	l.cache[key] = merged
	l.mu.Unlock()

	return merged, nil
}

// Invalidate clears loader's cache. Call after hot-reload detects changes.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache = make(map[string]RawConfig)
}

// readYAML loads a YAML file into RawConfig after a schema check. Missing
// files return a zero cfg and found=false, no error.
func readYAML(path string) (RawConfig, bool, error) {
	var cfg RawConfig
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return RawConfig{}, false, nil
		}
		return RawConfig{}, false, err
	}
	if err := CheckSchema(b); err != nil {
		return RawConfig{}, true, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return RawConfig{}, true, err
	}
	return cfg, true, nil
}

// mergeRaw performs a deep merge: 'b' overrides 'a' where set.
// Attributes merge by name; unknown names are appended in b's order.
func mergeRaw(a, b RawConfig) RawConfig {
	out := a

	// top-level scalars
	if b.Version != "" {
		out.Version = b.Version
	}
	if b.Notes != "" {
		out.Notes = b.Notes
	}

	// layout
	switch {
	case out.Layout == nil && b.Layout != nil:
		c := *b.Layout
		out.Layout = &c
	case out.Layout != nil && b.Layout != nil:
		c := *out.Layout
		if b.Layout.Width != nil {
			c.Width = b.Layout.Width
		}
		if b.Layout.Height != nil {
			c.Height = b.Layout.Height
		}
		out.Layout = &c
	}

	// physics
	if b.Physics.Speed != nil {
		out.Physics.Speed = b.Physics.Speed
	}
	if b.Physics.Friction != nil {
		out.Physics.Friction = b.Physics.Friction
	}
	if b.Physics.MaxBounces != nil {
		out.Physics.MaxBounces = b.Physics.MaxBounces
	}
	if b.Physics.Randomness != nil {
		out.Physics.Randomness = b.Physics.Randomness
	}
	if b.Physics.MaxSteps != nil {
		out.Physics.MaxSteps = b.Physics.MaxSteps
	}

	// attributes; copy so cached layers are never written through
	out.Attributes = append([]AttributeConfig(nil), a.Attributes...)
	for _, ba := range b.Attributes {
		idx := -1
		for i := range out.Attributes {
			if out.Attributes[i].Name == ba.Name {
				idx = i
				break
			}
		}
		if idx < 0 {
			out.Attributes = append(out.Attributes, ba)
			continue
		}
		cur := &out.Attributes[idx]
		if ba.Player != nil {
			cur.Player = ba.Player
		}
		if ba.Task != nil {
			cur.Task = ba.Task
		}
		if ba.AutoFail != nil {
			cur.AutoFail = ba.AutoFail
		}
		if ba.Bonus != nil {
			cur.Bonus = ba.Bonus
		}
	}

	return out
}
