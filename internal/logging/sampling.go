package logging

import (
	"sort"

	"go.uber.org/zap/zapcore"
)

// newSampledCore wraps core with level-aware sampling. Each level listed in
// cfg.Levels gets its own sampler; unlisted levels, and Error and above, are
// never sampled.
func newSampledCore(core zapcore.Core, cfg SamplingConfig) zapcore.Core {
	if !cfg.Enabled || len(cfg.Levels) == 0 {
		return core
	}

	levels := make([]zapcore.Level, 0, len(cfg.Levels))
	for level := range cfg.Levels {
		if level < zapcore.ErrorLevel {
			levels = append(levels, level)
		}
	}
	sort.Slice(levels, func(i, j int) bool { return levels[i] < levels[j] })

	sampled := make(map[zapcore.Level]bool, len(levels))
	cores := make([]zapcore.Core, 0, len(levels)+1)
	for _, level := range levels {
		rate := cfg.Levels[level]
		sampled[level] = true
		cores = append(cores, zapcore.NewSamplerWithOptions(
			&levelFilterCore{Core: core, only: level, exact: true},
			cfg.Tick.Duration(),
			rate.Initial,
			rate.Thereafter,
		))
	}
	cores = append(cores, &levelFilterCore{Core: core, skip: sampled})

	return zapcore.NewTee(cores...)
}

// levelFilterCore passes either exactly one level or every level not in skip.
type levelFilterCore struct {
	zapcore.Core
	only  zapcore.Level
	exact bool
	skip  map[zapcore.Level]bool
}

func (c *levelFilterCore) Enabled(lvl zapcore.Level) bool {
	if c.exact && lvl != c.only {
		return false
	}
	if c.skip[lvl] {
		return false
	}
	return c.Core.Enabled(lvl)
}

func (c *levelFilterCore) Check(e zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if !c.Enabled(e.Level) {
		return ce
	}
	return c.Core.Check(e, ce)
}

// With creates a child core that preserves level filtering.
func (c *levelFilterCore) With(fields []zapcore.Field) zapcore.Core {
	return &levelFilterCore{
		Core:  c.Core.With(fields),
		only:  c.only,
		exact: c.exact,
		skip:  c.skip,
	}
}
