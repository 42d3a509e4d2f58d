package platform

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sarchlab/vplat/mem/dmi"
	"github.com/sarchlab/vplat/sim"
)

// Duration is a simulated duration written as a Go duration string, e.g.,
// "10ns".
type Duration time.Duration

// UnmarshalYAML parses a duration string.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	v, err := time.ParseDuration(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}

	*d = Duration(v)

	return nil
}

// Seconds converts the duration to simulated time.
func (d Duration) Seconds() sim.VTimeInSec {
	return sim.VTimeInSec(time.Duration(d).Seconds())
}

// Addr is an address or a size. It can be written in decimal or with a 0x,
// 0o or 0b prefix.
type Addr uint64

// UnmarshalYAML parses a number with an optional base prefix.
func (a *Addr) UnmarshalYAML(node *yaml.Node) error {
	v, err := strconv.ParseUint(strings.ReplaceAll(node.Value, "_", ""), 0, 64)
	if err != nil {
		return fmt.Errorf("line %d: invalid address %q", node.Line, node.Value)
	}

	*a = Addr(v)

	return nil
}

// Config describes a platform.
type Config struct {
	Name       string            `yaml:"name"`
	Quantum    Duration          `yaml:"quantum"`
	Verbose    bool              `yaml:"verbose"`
	Memories   []MemoryConfig    `yaml:"memories"`
	Routers    []RouterConfig    `yaml:"routers"`
	Generators []GeneratorConfig `yaml:"generators"`
}

// MemoryConfig describes a RAM or a ROM.
type MemoryConfig struct {
	Name         string   `yaml:"name"`
	Size         Addr     `yaml:"size"`
	BusWidth     int      `yaml:"bus_width"`
	ReadLatency  Duration `yaml:"read_latency"`
	WriteLatency Duration `yaml:"write_latency"`
	Access       string   `yaml:"access"`
	ReadOnly     bool     `yaml:"read_only"`
	NoDMI        bool     `yaml:"no_dmi"`
}

// RouterConfig describes a router. Outputs names the target that each out
// port connects to.
type RouterConfig struct {
	Name     string          `yaml:"name"`
	InPorts  int             `yaml:"in_ports"`
	BusWidth int             `yaml:"bus_width"`
	Outputs  []string        `yaml:"outputs"`
	Mappings []MappingConfig `yaml:"mappings"`
}

// MappingConfig maps an address window to an out port. A default mapping
// has no window.
type MappingConfig struct {
	Port    int  `yaml:"port"`
	Start   Addr `yaml:"start"`
	Size    Addr `yaml:"size"`
	Offset  Addr `yaml:"offset"`
	Default bool `yaml:"default"`
}

// Range returns the upstream window of the mapping.
func (m MappingConfig) Range() dmi.Range {
	return dmi.RangeOfSize(uint64(m.Start), uint64(m.Size))
}

// GeneratorConfig describes a traffic generator issuing random accesses.
type GeneratorConfig struct {
	Name       string   `yaml:"name"`
	Target     string   `yaml:"target"`
	BusWidth   int      `yaml:"bus_width"`
	Count      int      `yaml:"count"`
	Seed       int64    `yaml:"seed"`
	Start      Addr     `yaml:"start"`
	Size       Addr     `yaml:"size"`
	AccessSize int      `yaml:"access_size"`
	ReadRatio  float64  `yaml:"read_ratio"`
	Think      Duration `yaml:"think"`
	StartAt    Duration `yaml:"start_at"`
	NoDMI      bool     `yaml:"no_dmi"`
	Verify     bool     `yaml:"verify"`
}

// LoadConfig reads and validates a YAML platform description.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

// ParseConfig decodes and validates a YAML platform description.
func ParseConfig(data []byte) (*Config, error) {
	cfg := &Config{}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Quantum == 0 {
		c.Quantum = Duration(
			time.Duration(float64(DefaultQuantum) * float64(time.Second)))
	}

	for i := range c.Memories {
		if c.Memories[i].BusWidth == 0 {
			c.Memories[i].BusWidth = 64
		}

		if c.Memories[i].Access == "" {
			c.Memories[i].Access = "rw"
		}
	}

	for i := range c.Routers {
		if c.Routers[i].BusWidth == 0 {
			c.Routers[i].BusWidth = 64
		}

		if c.Routers[i].InPorts == 0 {
			c.Routers[i].InPorts = 1
		}
	}

	for i := range c.Generators {
		if c.Generators[i].BusWidth == 0 {
			c.Generators[i].BusWidth = 64
		}

		if c.Generators[i].AccessSize == 0 {
			c.Generators[i].AccessSize = 4
		}
	}
}

// ParseAccess converts "none", "r", "w" or "rw" into an access mode.
func ParseAccess(s string) (dmi.Access, error) {
	switch strings.ToLower(s) {
	case "none":
		return dmi.AccessNone, nil
	case "r", "read":
		return dmi.AccessRead, nil
	case "w", "write":
		return dmi.AccessWrite, nil
	case "rw", "readwrite":
		return dmi.AccessReadWrite, nil
	}

	return dmi.AccessNone, fmt.Errorf("unknown access mode %q", s)
}

// Validate checks the configuration for problems that would make building
// the platform panic. All the problems are reported together.
func (c *Config) Validate() error {
	v := validator{
		cfg:     c,
		names:   make(map[string]bool),
		widths:  make(map[string]int),
		claimed: make(map[string]string),
	}

	v.check()

	return errors.Join(v.errs...)
}

type validator struct {
	cfg     *Config
	errs    []error
	names   map[string]bool
	widths  map[string]int
	claimed map[string]string
}

func (v *validator) fail(format string, args ...any) {
	v.errs = append(v.errs, fmt.Errorf(format, args...))
}

func (v *validator) check() {
	if !validName(v.cfg.Name) {
		v.fail("invalid platform name %q", v.cfg.Name)
	}

	if v.cfg.Quantum < 0 {
		v.fail("quantum must not be negative")
	}

	for _, m := range v.cfg.Memories {
		v.checkMemory(m)
	}

	for _, r := range v.cfg.Routers {
		v.declareRouter(r)
	}

	for _, r := range v.cfg.Routers {
		v.checkRouter(r)
	}

	for _, g := range v.cfg.Generators {
		v.checkGenerator(g)
	}
}

func (v *validator) declare(name string) bool {
	if !validName(name) {
		v.fail("invalid component name %q", name)
		return false
	}

	if v.names[name] {
		v.fail("duplicate component name %q", name)
		return false
	}

	v.names[name] = true

	return true
}

func (v *validator) checkMemory(m MemoryConfig) {
	if !v.declare(m.Name) {
		return
	}

	v.widths[m.Name] = m.BusWidth

	if m.Size == 0 {
		v.fail("memory %s has no size", m.Name)
	}

	if m.BusWidth < 0 {
		v.fail("memory %s has invalid bus width %d", m.Name, m.BusWidth)
	}

	if _, err := ParseAccess(m.Access); err != nil {
		v.fail("memory %s: %w", m.Name, err)
	}
}

func (v *validator) declareRouter(r RouterConfig) {
	if !v.declare(r.Name) {
		return
	}

	for i := 0; i < r.InPorts; i++ {
		v.widths[fmt.Sprintf("%s.In%d", r.Name, i)] = r.BusWidth
	}
}

func (v *validator) checkRouter(r RouterConfig) {
	if r.InPorts < 0 {
		v.fail("router %s has invalid number of in ports", r.Name)
	}

	if len(r.Outputs) == 0 {
		v.fail("router %s has no outputs", r.Name)
	}

	for i, out := range r.Outputs {
		v.connect(fmt.Sprintf("%s.Out%d", r.Name, i), r.BusWidth, out)
	}

	hasDefault := false
	windows := make([]MappingConfig, 0, len(r.Mappings))

	for _, m := range r.Mappings {
		if m.Port < 0 || m.Port >= len(r.Outputs) {
			v.fail("router %s maps to port %d, which does not exist",
				r.Name, m.Port)
			continue
		}

		if m.Default {
			if hasDefault {
				v.fail("router %s has more than one default mapping", r.Name)
			}

			hasDefault = true

			continue
		}

		if m.Size == 0 {
			v.fail("router %s has an empty mapping at 0x%x", r.Name, m.Start)
			continue
		}

		if uint64(m.Start)+uint64(m.Size)-1 < uint64(m.Start) {
			v.fail("router %s has a mapping beyond the address space at 0x%x",
				r.Name, m.Start)
			continue
		}

		for _, prev := range windows {
			if prev.Range().Overlaps(m.Range()) {
				v.fail("router %s: mapping %s overlaps with %s",
					r.Name, m.Range(), prev.Range())
			}
		}

		windows = append(windows, m)
	}
}

func (v *validator) checkGenerator(g GeneratorConfig) {
	if !v.declare(g.Name) {
		return
	}

	v.connect(g.Name+".Init", g.BusWidth, g.Target)

	if g.Count < 0 {
		v.fail("generator %s has a negative count", g.Name)
	}

	if g.AccessSize <= 0 || uint64(g.AccessSize) > uint64(g.Size) {
		v.fail("generator %s cannot fit %d-byte accesses in %d bytes",
			g.Name, g.AccessSize, g.Size)
	}

	if g.ReadRatio < 0 || g.ReadRatio > 1 {
		v.fail("generator %s has read ratio %g outside [0, 1]",
			g.Name, g.ReadRatio)
	}
}

func (v *validator) connect(initiator string, width int, target string) {
	targetWidth, found := v.widths[target]
	if !found {
		v.fail("%s connects to unknown target %q", initiator, target)
		return
	}

	if other, bound := v.claimed[initiator]; bound {
		v.fail("%s is already connected to %s", initiator, other)
		return
	}

	v.claimed[initiator] = target

	if targetWidth != width {
		v.fail("%s (%d bits) and %s (%d bits) have different bus widths",
			initiator, width, target, targetWidth)
	}
}

func validName(name string) bool {
	if name == "" {
		return false
	}

	for _, token := range strings.Split(name, ".") {
		if token == "" || strings.ContainsAny(token, " \t\n") {
			return false
		}
	}

	return true
}
