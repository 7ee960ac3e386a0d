package runner

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// DefaultFlagSet names the single flag set of an automation config that
// references no shared sets.
const DefaultFlagSet = "flags"

// Manifest describes a batch: which scripts to run, with which flags, how many times.
//
//	batch_name: nightly
//	output_file: out/{batch_name}/{set_name}-{instance}.xml
//	run_delay: 0.5
//	flag_sets:
//	  chrome:  {browser: chrome}
//	  firefox: {browser: firefox}
//	automation_configs:
//	  - automation_name: checkout
//	    flags: {user: alice}
//	    flag_sets: [chrome, firefox]
//	    instances: 2
//	    log_level: info
type Manifest struct {
	BatchName string `yaml:"batch_name"`
	// OutputFile is a path pattern for each instance's output_file flag.
	// {batch_name}, {set_name} and {instance} are substituted.
	OutputFile string `yaml:"output_file"`
	// RunDelay staggers instance starts. Numbers are seconds; strings use time.ParseDuration.
	RunDelay    *time.Duration            `yaml:"run_delay"`
	FlagSets    map[string]map[string]any `yaml:"flag_sets"`
	Automations []AutomationConfig        `yaml:"automation_configs"`
}

// AutomationConfig is one entry of a manifest.
type AutomationConfig struct {
	Name     string         `yaml:"automation_name"`
	Flags    map[string]any `yaml:"flags"`
	FlagSets []string       `yaml:"flag_sets"`
	// Instances is the number of runs per flag set. Missing or negative means 1.
	Instances *int   `yaml:"instances"`
	LogLevel  string `yaml:"log_level"`
}

// LoadManifest reads a YAML or JSON manifest file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	return ParseManifest(data)
}

// ParseManifest decodes a YAML or JSON manifest.
func ParseManifest(data []byte) (*Manifest, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidManifest, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: empty document", ErrInvalidManifest)
	}
	if _, ok := raw["automation_configs"].([]any); !ok {
		return nil, fmt.Errorf("%w: automation_configs must be a list", ErrInvalidManifest)
	}

	var m Manifest
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "yaml",
		WeaklyTypedInput: true,
		Result:           &m,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			secondsToDurationHook,
			mapstructure.StringToTimeDurationHookFunc(),
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build manifest decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidManifest, err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func secondsToDurationHook(from, to reflect.Type, data any) (any, error) {
	if to != reflect.TypeOf(time.Duration(0)) {
		return data, nil
	}
	switch v := data.(type) {
	case int:
		return time.Duration(v) * time.Second, nil
	case float64:
		return time.Duration(v * float64(time.Second)), nil
	}
	return data, nil
}

// Validate checks that every entry names a script and references known flag sets.
func (m *Manifest) Validate() error {
	for i, ac := range m.Automations {
		if ac.Name == "" {
			return fmt.Errorf("%w: automation_configs[%d] has no automation_name", ErrInvalidManifest, i)
		}
		for _, set := range ac.FlagSets {
			if _, ok := m.FlagSets[set]; !ok {
				return fmt.Errorf("%w: automation_configs[%d] references unknown flag set %q", ErrInvalidManifest, i, set)
			}
		}
	}
	return nil
}

// Delay returns the run delay, or def when the manifest does not set one.
func (m *Manifest) Delay(def time.Duration) time.Duration {
	if m.RunDelay == nil {
		return def
	}
	return *m.RunDelay
}

// Instance is one planned run of a batch.
type Instance struct {
	Script   string
	SetName  string
	Number   int
	LogLevel string
	Flags    map[string]any
}

// Plan expands the manifest into instances: one per flag set and repeat, in
// manifest order. Flag set values override the entry's own flags.
func (m *Manifest) Plan(batchName string) []Instance {
	var out []Instance
	for _, ac := range m.Automations {
		repeats := 1
		if ac.Instances != nil && *ac.Instances >= 0 {
			repeats = *ac.Instances
		}

		for _, set := range m.flagSetsOf(ac) {
			for n := 1; n <= repeats; n++ {
				flags := maps.Clone(set.flags)
				if flags == nil {
					flags = map[string]any{}
				}
				if m.OutputFile != "" {
					path := expandPattern(m.OutputFile, batchName, set.name, n)
					if abs, err := filepath.Abs(path); err == nil {
						path = abs
					}
					flags["output_file"] = path
				}
				out = append(out, Instance{
					Script:   ac.Name,
					SetName:  set.name,
					Number:   n,
					LogLevel: strings.TrimSpace(ac.LogLevel),
					Flags:    flags,
				})
			}
		}
	}
	return out
}

type namedFlags struct {
	name  string
	flags map[string]any
}

func (m *Manifest) flagSetsOf(ac AutomationConfig) []namedFlags {
	if len(ac.FlagSets) == 0 {
		return []namedFlags{{name: DefaultFlagSet, flags: maps.Clone(ac.Flags)}}
	}
	sets := make([]namedFlags, 0, len(ac.FlagSets))
	for _, name := range slices.Compact(slices.Clone(ac.FlagSets)) {
		merged := maps.Clone(ac.Flags)
		if merged == nil {
			merged = map[string]any{}
		}
		maps.Copy(merged, m.FlagSets[name])
		sets = append(sets, namedFlags{name: name, flags: merged})
	}
	return sets
}

func expandPattern(pattern, batchName, setName string, instance int) string {
	n := strconv.Itoa(instance)
	return strings.NewReplacer(
		"{batch_name}", batchName,
		"{set_name}", setName,
		"{instance}", n,
		"%{batch_name}", batchName,
		"%{set_name}", setName,
		"%{instance}", n,
	).Replace(pattern)
}
