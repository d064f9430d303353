package predictive

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/recollectdb/recollect/internal/model"
)

func TestTokenize(t *testing.T) {
	tokens := Tokenize("Hello, World! hello")
	assert.Len(t, tokens, 2)
	assert.True(t, tokens["hello"])
	assert.True(t, tokens["world"])
	assert.Empty(t, Tokenize(""))
}

func TestMemoryTokensIncludesCategoryAndTags(t *testing.T) {
	m := model.Memory{
		Content:  "piano lesson",
		Category: "hobby",
		Tags:     []string{"music", "weekly"},
	}
	tokens := MemoryTokens(&m)
	for _, want := range []string{"piano", "lesson", "hobby", "music", "weekly"} {
		assert.True(t, tokens[want], "missing token %q", want)
	}
}

func TestJaccard(t *testing.T) {
	a := Tokenize("red green blue")
	b := Tokenize("green blue yellow")
	assert.InDelta(t, 0.5, Jaccard(a, b), 1e-9)

	assert.Equal(t, 1.0, Jaccard(a, a))
	assert.Equal(t, 0.0, Jaccard(a, Tokenize("")))
	assert.Equal(t, 0.0, Jaccard(nil, b))
}

func TestPredictionErrorComplementsRelevance(t *testing.T) {
	m := model.Memory{Content: "walked the dog in the park"}
	rel := ContextRelevance("dog park", &m)
	assert.Greater(t, rel, 0.0)
	assert.InDelta(t, 1.0-rel, PredictionError("dog park", &m), 1e-9)

	unrelated := model.Memory{Content: "tax filing deadline"}
	assert.Equal(t, 1.0, PredictionError("dog park", &unrelated))
}

func TestNoveltyScoreDecaysWithActivation(t *testing.T) {
	fresh := model.Memory{ActivationCount: 0}
	worn := model.Memory{ActivationCount: 9}

	assert.Greater(t, NoveltyScore(&fresh, 0.5), NoveltyScore(&worn, 0.5))
	assert.InDelta(t, 0.6*1.0+0.4*0.5, NoveltyScore(&fresh, 0.5), 1e-9)
	assert.InDelta(t, 0.6*0.1+0.4*0.5, NoveltyScore(&worn, 0.5), 1e-9)

	// Negative counts and out-of-range errors are clamped.
	bad := model.Memory{ActivationCount: -3}
	assert.Equal(t, 1.0, NoveltyScore(&bad, 7.0))
}

func TestQueryAmbiguity(t *testing.T) {
	assert.Equal(t, 1.0, QueryAmbiguity(""))

	short := QueryAmbiguity("ramen")
	long := QueryAmbiguity("that ramen shop near the station we visited last autumn with everyone")
	assert.Greater(t, short, long, "short queries are more ambiguous")

	// Repetition counts against the raw token list, not the unique set.
	repeated := QueryAmbiguity("go go go go go")
	varied := QueryAmbiguity("plan trip pack tickets museum")
	assert.Greater(t, repeated, varied)

	for _, q := range []string{"", "a", "a b c", "lots of words in this query here now"} {
		v := QueryAmbiguity(q)
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
}

func TestAdaptiveSearchParams(t *testing.T) {
	// Ambiguous context widens the walk relative to a specific one.
	wideB, wideD := AdaptiveSearchParams("go", 3, 3, 5)
	narrowB, narrowD := AdaptiveSearchParams("the pottery class schedule for march and april sessions", 3, 3, 5)
	assert.GreaterOrEqual(t, wideB, narrowB)
	assert.GreaterOrEqual(t, wideD, narrowD)

	// Results stay within the hard bounds whatever is requested.
	b, d := AdaptiveSearchParams("anything", 100, 100, 5)
	assert.LessOrEqual(t, b, 8)
	assert.LessOrEqual(t, d, 5)
	b, d = AdaptiveSearchParams("anything", -1, -1, 5)
	assert.GreaterOrEqual(t, b, 1)
	assert.GreaterOrEqual(t, d, 1)

	// A thin seed pool raises ambiguity.
	fewB, _ := AdaptiveSearchParams("pottery class schedule", 3, 3, 1)
	manyB, _ := AdaptiveSearchParams("pottery class schedule", 3, 3, 10)
	assert.GreaterOrEqual(t, fewB, manyB)
}
