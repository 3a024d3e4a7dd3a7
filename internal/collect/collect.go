// Package collect deduplicates resolved call-site references into a
// PreparedMethod.
package collect

import (
	"path/filepath"

	"go.uber.org/zap"

	"github.com/phobologic/llmexplain/internal/model"
)

// Collector builds PreparedMethods. The zero value is usable and discards
// duplicate-reference warnings.
type Collector struct {
	logger *zap.Logger
}

// New returns a Collector that reports duplicate references to logger.
func New(logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collector{logger: logger}
}

// Collect inserts refs by identifier in order. When an identifier repeats,
// the first occurrence is kept and a warning is logged; the later source
// provider is never called.
func (c *Collector) Collect(target model.TargetFunction, refs []model.RawReference) *model.PreparedMethod {
	logger := c.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	method := model.NewPreparedMethod(target)
	for _, ref := range refs {
		if method.Has(ref.Identifier) {
			logger.Warn("duplicate reference, keeping first",
				zap.String("identifier", ref.Identifier),
				zap.String("function", target.Name),
			)
			continue
		}
		var src string
		if ref.Source != nil {
			src = ref.Source()
		}
		method.Add(model.Reference{Identifier: ref.Identifier, Source: src})
	}
	return method
}

// Identifier is the identity key of a reference: the base name of the file
// containing the callee joined with the callee name.
func Identifier(file, callee string) string {
	return filepath.Base(file) + ":" + callee
}
