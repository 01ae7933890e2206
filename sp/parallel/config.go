package parallel

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lguimbarda/min-sp/sp/core"
)

// DefaultBufferSize is the default capacity of branch channels.
// A small buffer reduces goroutine synchronization overhead without
// letting the dispatcher run far ahead of the branches.
const DefaultBufferSize = 64

// Unbounded, used as BufferSize, gives every branch an unbounded output
// queue, so branches never block on output. Input channels keep
// DefaultBufferSize.
const Unbounded = -1

// ErrNoBranches is returned by Eval when called without branches.
var ErrNoBranches = errors.New("parallel: no branches")

// MergePolicy decides the order in which branch outputs are merged.
type MergePolicy int

const (
	// RoundRobin takes the k-th output from the k-th branch in rotation,
	// waiting for it if needed. The interleaving is reproducible and does
	// not depend on branch speed. Branches whose input ran out are retired
	// from the rotation.
	RoundRobin MergePolicy = iota
	// FirstReady takes whichever branch output is available first. Order
	// within one branch is kept; the interleaving across branches is not
	// deterministic.
	FirstReady
)

func (m MergePolicy) String() string {
	switch m {
	case RoundRobin:
		return "round_robin"
	case FirstReady:
		return "first_ready"
	default:
		return fmt.Sprintf("MergePolicy(%d)", int(m))
	}
}

// ParseMergePolicy parses the names used in configuration files.
func ParseMergePolicy(name string) (MergePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "round_robin", "round-robin", "roundrobin", "":
		return RoundRobin, nil
	case "first_ready", "first-ready", "firstready", "race":
		return FirstReady, nil
	default:
		return 0, fmt.Errorf("parallel: unknown merge policy %q", name)
	}
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (m *MergePolicy) UnmarshalYAML(value *yaml.Node) error {
	var name string
	if err := value.Decode(&name); err != nil {
		return err
	}
	parsed, err := ParseMergePolicy(name)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (m MergePolicy) MarshalYAML() (any, error) {
	return m.String(), nil
}

// Config holds the tunables of a parallel evaluation.
type Config struct {
	// BufferSize is the capacity of each branch's input channel and
	// output queue. 0 makes input hand-offs synchronous; Unbounded
	// removes the limit on outputs. A round-robin output queue also grows
	// past BufferSize while the merge waits on a slower branch.
	BufferSize int `yaml:"buffer_size"`
	// Merge selects the merge policy.
	Merge MergePolicy `yaml:"merge"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		BufferSize: DefaultBufferSize,
		Merge:      RoundRobin,
	}
}

// Validate checks the configuration for invalid values.
func (c Config) Validate() error {
	if c.BufferSize < Unbounded {
		return fmt.Errorf("parallel: buffer size must be >= %d, got %d", Unbounded, c.BufferSize)
	}
	if c.Merge != RoundRobin && c.Merge != FirstReady {
		return fmt.Errorf("parallel: invalid merge policy %v", c.Merge)
	}
	return nil
}

// LoadConfig reads a YAML configuration. Fields missing from the document
// keep their default values; unknown fields are an error.
//
//	buffer_size: 16
//	merge: first_ready
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parallel: decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseConfig is LoadConfig over an in-memory document.
func ParseConfig(data []byte) (Config, error) {
	return LoadConfig(bytes.NewReader(data))
}

// Option is a functional option for configuring Eval.
type Option func(*settings)

type settings struct {
	Config
	logger   *slog.Logger
	evalOpts []core.EvalOption
}

// WithConfig replaces the whole configuration.
func WithConfig(cfg Config) Option {
	return func(s *settings) {
		s.Config = cfg
	}
}

// WithBufferSize sets the capacity of branch channels.
func WithBufferSize(size int) Option {
	return func(s *settings) {
		s.BufferSize = size
	}
}

// WithMerge sets the merge policy.
func WithMerge(policy MergePolicy) Option {
	return func(s *settings) {
		s.Merge = policy
	}
}

// WithLogger sets the logger for lifecycle events, logged at Debug level.
// The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// WithEvalOptions passes options to the evaluation of every branch, for
// example hooks from the observe package. Hooks run on the branch
// goroutines and must be safe for concurrent use.
func WithEvalOptions(opts ...core.EvalOption) Option {
	return func(s *settings) {
		s.evalOpts = append(s.evalOpts, opts...)
	}
}

func applyOptions(opts ...Option) settings {
	s := settings{Config: DefaultConfig()}
	for _, opt := range opts {
		if opt != nil {
			opt(&s)
		}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}
