package joincode

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateLengthAndAlphabet(t *testing.T) {
	for _, length := range []int{ClientCodeLength, ServerCodeLength} {
		code := Generate(length, DefaultAlphabet)
		assert.Len(t, code, length)
		for _, r := range code {
			assert.True(t, strings.ContainsRune(DefaultAlphabet, r), "unexpected character %q", r)
		}
	}
}

func TestGenerateCodesDiffer(t *testing.T) {
	// Collisions in a 1e12+ space across 100 draws would point at a
	// broken random source.
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		seen[Generate(ServerCodeLength, DefaultAlphabet)] = struct{}{}
	}
	assert.Greater(t, len(seen), 95)
}

func TestGenerateUniqueSkipsExisting(t *testing.T) {
	// Block every 1-character code except "Z"; the only acceptable draw
	// is the one remaining.
	existing := make(map[string]struct{})
	for _, a := range DefaultAlphabet {
		if a != 'Z' {
			existing[string(a)] = struct{}{}
		}
	}

	code, err := GenerateUnique(1, existing, 1000)
	require.NoError(t, err)
	assert.Equal(t, "Z", code)
}

func TestGenerateUniqueExhausted(t *testing.T) {
	// Fill the whole 1-character-alphabet space: every draw collides.
	existing := make(map[string]struct{})
	for _, a := range DefaultAlphabet {
		for _, b := range DefaultAlphabet {
			existing[string(a)+string(b)] = struct{}{}
		}
	}

	_, err := GenerateUnique(2, existing, 50)
	assert.ErrorIs(t, err, ErrGenerationExhausted)
}

func TestGenerateUniqueAgainstStore(t *testing.T) {
	calls := 0
	exists := func(ctx context.Context, code string) (bool, error) {
		calls++
		// Reject the first two candidates, accept the third.
		return calls < 3, nil
	}

	code, err := GenerateUniqueAgainstStore(context.Background(), ServerCodeLength, nil, exists, 10)
	require.NoError(t, err)
	assert.Len(t, code, ServerCodeLength)
	assert.Equal(t, 3, calls)
}

func TestGenerateUniqueAgainstStoreAllTaken(t *testing.T) {
	exists := func(ctx context.Context, code string) (bool, error) {
		return true, nil
	}

	_, err := GenerateUniqueAgainstStore(context.Background(), ServerCodeLength, nil, exists, 5)
	assert.ErrorIs(t, err, ErrGenerationExhausted)
}

func TestGenerateUniqueAgainstStorePropagatesError(t *testing.T) {
	boom := errors.New("store down")
	exists := func(ctx context.Context, code string) (bool, error) {
		return false, boom
	}

	_, err := GenerateUniqueAgainstStore(context.Background(), ServerCodeLength, nil, exists, 5)
	assert.ErrorIs(t, err, boom)
}

func TestGenerateClassCodeSetPairwiseDistinct(t *testing.T) {
	exists := func(ctx context.Context, code string) (bool, error) {
		return false, nil
	}

	set, err := GenerateClassCodeSet(context.Background(), exists)
	require.NoError(t, err)

	assert.Len(t, set.Student, ServerCodeLength)
	assert.Len(t, set.Teacher, ServerCodeLength)
	assert.Len(t, set.Parent, ServerCodeLength)
	assert.NotEqual(t, set.Student, set.Teacher)
	assert.NotEqual(t, set.Student, set.Parent)
	assert.NotEqual(t, set.Teacher, set.Parent)
}

func TestGenerateClassCodeSetFailsWholeBatch(t *testing.T) {
	calls := 0
	exists := func(ctx context.Context, code string) (bool, error) {
		calls++
		// First code succeeds, then the store reports everything taken.
		return calls > 1, nil
	}

	_, err := GenerateClassCodeSet(context.Background(), exists)
	assert.ErrorIs(t, err, ErrGenerationExhausted)
}

func TestGenerateClientCodeSetPairwiseDistinct(t *testing.T) {
	set, err := GenerateClientCodeSet()
	require.NoError(t, err)

	assert.Len(t, set.Student, ClientCodeLength)
	assert.NotEqual(t, set.Student, set.Teacher)
	assert.NotEqual(t, set.Student, set.Parent)
	assert.NotEqual(t, set.Teacher, set.Parent)
}
