package integrity

import (
	"encoding/json"
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePayload() map[string]any {
	return map[string]any{
		"reportId":      "5f0c6a8e-3d43-4c1b-9a0e-1b7f3c2d9e10",
		"datasetId":     "9b2e4d61-7a55-4f0e-8f43-6c1d2e3f4a5b",
		"userId":        "mock-user-001",
		"timestamp":     "2026-10-15T08:30:00.000Z",
		"analyticsHash": `{"riskScore":42,"totalRecords":1000}`,
		"aiReportHash":  `{"confidenceScore":88,"executiveSummary":"Rainfall is stable."}`,
	}
}

func TestCanonicalize_SortsKeysAtEveryDepth(t *testing.T) {
	got, err := Canonicalize(map[string]any{
		"b": 1,
		"a": map[string]any{"z": true, "m": []any{map[string]any{"y": 1, "x": 2}}},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"a":{"m":[{"x":2,"y":1}],"z":true},"b":1}`, got)
}

func TestCanonicalize_StructFieldOrderDoesNotMatter(t *testing.T) {
	type ab struct {
		B int `json:"b"`
		A int `json:"a"`
	}
	fromStruct, err := Canonicalize(ab{B: 2, A: 1})
	require.NoError(t, err)
	fromMap, err := Canonicalize(map[string]any{"a": 1, "b": 2})
	require.NoError(t, err)
	assert.Equal(t, fromMap, fromStruct)
}

func TestCanonicalize_NoHTMLEscaping(t *testing.T) {
	got, err := Canonicalize(map[string]any{"q": "a<b && c>d"})
	require.NoError(t, err)
	assert.Equal(t, `{"q":"a<b && c>d"}`, got)
}

func TestCanonicalize_PreservesNumberLiterals(t *testing.T) {
	got, err := Canonicalize(map[string]any{"big": json.Number("12345678901234567890"), "f": 0.1})
	require.NoError(t, err)
	assert.Equal(t, `{"big":12345678901234567890,"f":0.1}`, got)
}

func TestHash_Deterministic(t *testing.T) {
	p := samplePayload()
	first, err := Hash(p)
	require.NoError(t, err)
	second, err := Hash(p)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first, 64)
	assert.Equal(t, strings.ToLower(first), first)
}

func TestHash_IndependentOfInsertionOrder(t *testing.T) {
	a := map[string]any{"x": map[string]any{"k1": 1, "k2": 2}, "y": "v"}
	b := map[string]any{"y": "v", "x": map[string]any{"k2": 2, "k1": 1}}

	ha, err := Hash(a)
	require.NoError(t, err)
	hb, err := Hash(b)
	require.NoError(t, err)
	assert.Equal(t, ha, hb)
}

func TestHash_SensitiveToSingleCharacterMutation(t *testing.T) {
	base := samplePayload()
	baseDigest, err := Hash(base)
	require.NoError(t, err)

	for key, value := range base {
		s := value.(string)
		for _, pos := range []int{0, len(s) / 2, len(s) - 1} {
			mutated := samplePayload()
			b := []byte(s)
			b[pos] ^= 0x01
			mutated[key] = string(b)

			digest, err := Hash(mutated)
			require.NoError(t, err)
			assert.NotEqual(t, baseDigest, digest, "mutation of %s at %d went undetected", key, pos)
		}
	}
}

func TestHash_KnownVector(t *testing.T) {
	// sha256 of `{"a":"b"}`
	digest, err := Hash(map[string]any{"a": "b"})
	require.NoError(t, err)
	assert.Equal(t, Sum(`{"a":"b"}`), digest)
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", Sum(""))
}

func TestHash_Unserializable(t *testing.T) {
	cyclic := map[string]any{}
	cyclic["self"] = cyclic

	cases := map[string]map[string]any{
		"cycle":   cyclic,
		"nan":     {"v": math.NaN()},
		"inf":     {"v": math.Inf(1)},
		"channel": {"v": make(chan int)},
		"func":    {"v": func() {}},
	}

	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Hash(payload)
			assert.ErrorIs(t, err, ErrUnserializable)
		})
	}
}

func TestHash_EmptyPayload(t *testing.T) {
	_, err := Hash(nil)
	assert.ErrorIs(t, err, ErrEmptyPayload)
}

func TestVerify_RoundTrip(t *testing.T) {
	p := samplePayload()
	digest, err := Hash(p)
	require.NoError(t, err)

	assert.True(t, Verify(p, digest))
	assert.True(t, Verify(p, strings.ToUpper(digest)), "hex comparison is case-insensitive")
}

func TestVerify_DetectsTampering(t *testing.T) {
	p := samplePayload()
	digest, err := Hash(p)
	require.NoError(t, err)

	p["analyticsHash"] = `{"riskScore":43,"totalRecords":1000}`
	assert.False(t, Verify(p, digest))
}

func TestVerify_MissingInputsNeverVerify(t *testing.T) {
	digest, err := Hash(samplePayload())
	require.NoError(t, err)

	assert.False(t, Verify(nil, digest))
	assert.False(t, Verify(map[string]any{}, digest))
	assert.False(t, Verify(samplePayload(), ""))
	assert.False(t, Verify(map[string]any{"v": math.NaN()}, digest))
}

func TestVerify_ConcurrentCalls(t *testing.T) {
	p := samplePayload()
	digest, err := Hash(p)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]bool, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = Verify(p, digest)
		}(i)
	}
	wg.Wait()

	for i, ok := range results {
		assert.True(t, ok, "call %d", i)
	}
}
