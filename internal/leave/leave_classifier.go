package leave

import (
	"regexp"
	"strings"
	"unicode"

	"go.uber.org/zap"
)

// Result is a classified leave reason.
type Result struct {
	Category   Category
	Confidence float64
}

// ruleMatcher is one high-precision rule: if any of its patterns hits, the
// reason is resolved immediately with a fixed confidence, no vector space
// needed. Rules are tried in declaration order before the TF-IDF fallback.
type ruleMatcher struct {
	category   string
	confidence float64
	patterns   []*regexp.Regexp
}

// Classifier maps free-text leave reasons onto the fixed category table:
// an ordered list of rule matchers, then cosine similarity against the
// per-category keyword corpus.
type Classifier struct {
	rules     []ruleMatcher
	model     *tfidfModel
	threshold float64
	logger    *zap.Logger
}

// NewClassifier fits the vector space once. threshold is the minimum cosine
// similarity the fallback accepts; below it the reason lands in "other".
func NewClassifier(threshold float64, logger ...*zap.Logger) *Classifier {
	l := zap.L().Named("leave.classifier")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.classifier")
	}
	if threshold <= 0 {
		threshold = 0.15
	}

	docs := make([]string, len(categories))
	for i, c := range categories {
		docs[i] = preprocess(strings.Join(c.Keywords, " "))
	}

	return &Classifier{
		rules: []ruleMatcher{
			{
				category:   CategorySick,
				confidence: 0.95,
				patterns: compileWordPatterns(
					"ốm|bệnh|đau|sốt|ho|cảm|không khỏe|sick|ill|fever",
					"khám bệnh|chữa bệnh|bác sĩ|bệnh viện|phòng khám|doctor|hospital",
					"thuốc|điều trị|y tế|sức khỏe|medical",
				),
			},
			{
				category:   CategoryRemote,
				confidence: 0.90,
				patterns: compileWordPatterns(
					"remote|wfh|work from home|làm việc tại nhà|làm việc từ xa",
					"ở nhà làm việc|không đến công ty|home office",
				),
			},
			{
				category:   CategoryBusiness,
				confidence: 0.88,
				patterns: compileWordPatterns(
					"công tác|business trip|meeting|họp|hội nghị",
					"gặp khách hàng|partner|đối tác|conference",
					"ra ngoài công tác|đi công tác",
				),
			},
		},
		model:     newTFIDFModel(docs),
		threshold: threshold,
		logger:    l,
	}
}

// Classify returns the category and confidence for a leave reason.
// Confidence is always within [0, 1] and empty input is "other"/0, never
// an error.
func (c *Classifier) Classify(reason string) Result {
	processed := preprocess(reason)
	if processed == "" {
		return Result{Category: defaultCategory, Confidence: 0}
	}

	for _, rule := range c.rules {
		for _, p := range rule.patterns {
			if p.MatchString(processed) {
				return Result{
					Category:   CategoryByKey(rule.category),
					Confidence: rule.confidence,
				}
			}
		}
	}

	sims := c.model.Similarities(processed)
	bestIdx, best := -1, 0.0
	for i, s := range sims {
		if s > best {
			best, bestIdx = s, i
		}
	}

	if bestIdx >= 0 && best >= c.threshold {
		c.logger.Debug("reason classified by similarity",
			zap.String("category", categories[bestIdx].Key),
			zap.Float64("similarity", best),
		)
		return Result{Category: categories[bestIdx], Confidence: clamp01(best)}
	}

	return Result{Category: defaultCategory, Confidence: 0}
}

// preprocess lowercases and strips punctuation so keyword matching sees a
// single-space-separated token stream.
func preprocess(text string) string {
	lowered := strings.ToLower(text)
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return ' '
	}, lowered)
	return strings.Join(strings.Fields(mapped), " ")
}

// compileWordPatterns anchors each alternation on token boundaries.
// regexp's \b is ASCII-only, which silently misses Vietnamese letters, so
// boundaries are expressed against the normalized single-space stream.
func compileWordPatterns(alternations ...string) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, len(alternations))
	for i, alt := range alternations {
		patterns[i] = regexp.MustCompile(`(^| )(` + alt + `)( |$)`)
	}
	return patterns
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
