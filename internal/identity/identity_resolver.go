package identity

import (
	"strings"

	"go.uber.org/zap"
)

// Resolver matches free-form employee names against a directory. The same
// instance is injected into every data-source analyzer; matching logic must
// not be duplicated elsewhere.
type Resolver struct {
	logger *zap.Logger
}

func NewResolver(logger ...*zap.Logger) *Resolver {
	l := zap.L().Named("identity.resolver")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("identity.resolver")
	}
	return &Resolver{logger: l}
}

// Match finds the candidate that best matches name. Matching order:
// exact match after normalization, then substring containment in either
// direction. Returns ok=false when nothing matches; callers must treat an
// unresolved name as "no data", never as zero activity.
func (r *Resolver) Match(name string, candidates []string) (string, bool) {
	target := Normalize(name)
	if target == "" {
		return "", false
	}

	for _, c := range candidates {
		if Normalize(c) == target {
			return c, true
		}
	}

	for _, c := range candidates {
		n := Normalize(c)
		if n == "" {
			continue
		}
		if strings.Contains(n, target) || strings.Contains(target, n) {
			r.logger.Debug("resolved name by containment",
				zap.String("query", name),
				zap.String("matched", c),
			)
			return c, true
		}
	}

	return "", false
}

// Resolve looks up the directory row for a free-form display name.
func (r *Resolver) Resolve(name string, dir *Directory) (Employee, bool) {
	if dir == nil {
		return Employee{}, false
	}
	matched, ok := r.Match(name, dir.DisplayNames())
	if !ok {
		return Employee{}, false
	}
	username, ok := dir.byNormalizedName[Normalize(matched)]
	if !ok {
		return Employee{}, false
	}
	return dir.ByUsername(username)
}
