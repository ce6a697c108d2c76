// Package config carries the optimizer configuration: the optimization
// level, the registry of named passes, the syntax dialect override, and
// the target strings the front end accepts.
package config

type Pass int

const (
	PassPeephole Pass = iota
	PassCount
)

type Info struct {
	Name        string
	Enabled     bool
	Description string
}

type Config struct {
	Passes  map[Pass]Info
	PassMap map[string]Pass

	Level        int
	Dialect      string // "intel", "att", or "" for auto-detect
	Architecture string
	TargetCPU    string

	// AMDOptimize is accepted and stored for compatibility with the
	// front-end flags; no current pass consults it.
	AMDOptimize bool
	NoOptimize  bool
	PreserveAll bool

	// Options absorbs unrecognized front-end flags. They are kept but
	// drive nothing.
	Options map[string]string

	// extra tracks enable/disable requests for pass names this build
	// does not know. Accepted silently per the front-end contract.
	extra map[string]bool
}

func New(architecture string) *Config {
	cfg := &Config{
		Passes:       make(map[Pass]Info),
		PassMap:      make(map[string]Pass),
		Level:        2,
		Architecture: architecture,
		TargetCPU:    "generic",
		AMDOptimize:  true,
		Options:      make(map[string]string),
		extra:        make(map[string]bool),
	}

	passes := map[Pass]Info{
		PassPeephole: {"peephole", true, "Local single-instruction rewrites (self-move removal, zero-move to xor)."},
	}

	cfg.Passes = passes
	for p, info := range passes {
		cfg.PassMap[info.Name] = p
	}
	return cfg
}

// SetLevel clamps the optimization level into [0,4]. Only zero versus
// non-zero changes behavior today.
func (c *Config) SetLevel(level int) {
	if level < 0 {
		level = 0
	}
	if level > 4 {
		level = 4
	}
	c.Level = level
}

// EnablePass turns a named pass on. "all" enables every known pass.
// Unknown names are recorded and otherwise ignored.
func (c *Config) EnablePass(name string) {
	if name == "all" {
		for p := Pass(0); p < PassCount; p++ {
			c.setPass(p, true)
		}
		return
	}
	if p, ok := c.PassMap[name]; ok {
		c.setPass(p, true)
		return
	}
	c.extra[name] = true
}

// DisablePass turns a named pass off. "all" disables every known pass.
func (c *Config) DisablePass(name string) {
	if name == "all" {
		for p := Pass(0); p < PassCount; p++ {
			c.setPass(p, false)
		}
		return
	}
	if p, ok := c.PassMap[name]; ok {
		c.setPass(p, false)
		return
	}
	c.extra[name] = false
}

func (c *Config) setPass(p Pass, enabled bool) {
	if info, ok := c.Passes[p]; ok {
		info.Enabled = enabled
		c.Passes[p] = info
	}
}

func (c *Config) PassEnabled(p Pass) bool { return c.Passes[p].Enabled }

// SetDialect records a forced syntax dialect. Anything other than
// "intel" or "att" leaves detection to the optimizer.
func (c *Config) SetDialect(name string) {
	switch name {
	case "intel", "att":
		c.Dialect = name
	default:
		c.Dialect = ""
	}
}

func (c *Config) SetOption(key, value string) {
	c.Options[key] = value
}

func (c *Config) Option(key string) (string, bool) {
	v, ok := c.Options[key]
	return v, ok
}
