// Package joincode issues the short random codes that grant entry to an
// organization or class. Generation is best-effort unique: candidates are
// rejected against a local set and, for authoritative codes, against the
// persisted code space. True exclusivity is guaranteed only by the unique
// indexes on the code columns; callers must treat a store-level uniqueness
// violation as "regenerate and try again", not as a bug here.
package joincode

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
)

// DefaultAlphabet excludes visually confusable characters (I, O, 0, 1).
const DefaultAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const (
	// ClientCodeLength is used for optimistic codes minted without a
	// store check. ServerCodeLength codes are checked against the store.
	// The two lengths are separate uniqueness spaces and must not be
	// mixed.
	ClientCodeLength = 6
	ServerCodeLength = 8

	// DefaultMaxAttempts bounds the rejection loop. With a 32-character
	// alphabet the 8-character space holds over a trillion codes, so
	// exhaustion is effectively impossible — but it is still surfaced,
	// never swallowed.
	DefaultMaxAttempts = 100
)

// ErrGenerationExhausted is returned when every candidate within the
// attempt budget collided.
var ErrGenerationExhausted = errors.New("joincode: exhausted attempts generating a unique code")

// ExistsFunc answers whether a code is already present anywhere in the
// persisted code space.
type ExistsFunc func(ctx context.Context, code string) (bool, error)

// CodeSet is the three role-channel codes issued to a class.
type CodeSet struct {
	Student string `json:"student_code"`
	Teacher string `json:"teacher_code"`
	Parent  string `json:"parent_code"`
}

// Generate draws length characters independently and uniformly at random
// from alphabet.
func Generate(length int, alphabet string) string {
	max := big.NewInt(int64(len(alphabet)))
	buf := make([]byte, length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails if the OS entropy source is
			// broken; nothing sensible to do but stop.
			panic(fmt.Sprintf("joincode: read random: %v", err))
		}
		buf[i] = alphabet[n.Int64()]
	}
	return string(buf)
}

// GenerateUnique draws codes of the given length until one is absent from
// existing, failing with ErrGenerationExhausted after maxAttempts draws.
// Purely local; the caller's store constraint remains the authority.
func GenerateUnique(length int, existing map[string]struct{}, maxAttempts int) (string, error) {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	for attempt := 0; attempt < maxAttempts; attempt++ {
		code := Generate(length, DefaultAlphabet)
		if _, used := existing[code]; used {
			continue
		}
		return code, nil
	}
	return "", ErrGenerationExhausted
}

// GenerateUniqueAgainstStore draws codes until one passes both the cheap
// local check and the store existence check. Two concurrent callers can
// still both accept the same candidate; the losing insert is rejected by
// the store's unique index and the caller restarts generation.
func GenerateUniqueAgainstStore(ctx context.Context, length int, existing map[string]struct{}, exists ExistsFunc, maxAttempts int) (string, error) {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	for attempt := 0; attempt < maxAttempts; attempt++ {
		code := Generate(length, DefaultAlphabet)
		if _, used := existing[code]; used {
			continue
		}
		inUse, err := exists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("check code in store: %w", err)
		}
		if !inUse {
			return code, nil
		}
	}
	return "", ErrGenerationExhausted
}

// GenerateClassCodeSet issues the three class codes, threading each issued
// code into the local set so the batch is pairwise distinct on top of the
// per-code store check. If any draw exhausts its attempts the whole batch
// fails and nothing is persisted — codes only reach the store in the
// caller's single insert, so there is nothing to roll back.
func GenerateClassCodeSet(ctx context.Context, exists ExistsFunc) (CodeSet, error) {
	used := make(map[string]struct{}, 3)

	student, err := GenerateUniqueAgainstStore(ctx, ServerCodeLength, used, exists, DefaultMaxAttempts)
	if err != nil {
		return CodeSet{}, fmt.Errorf("student code: %w", err)
	}
	used[student] = struct{}{}

	teacher, err := GenerateUniqueAgainstStore(ctx, ServerCodeLength, used, exists, DefaultMaxAttempts)
	if err != nil {
		return CodeSet{}, fmt.Errorf("teacher code: %w", err)
	}
	used[teacher] = struct{}{}

	parent, err := GenerateUniqueAgainstStore(ctx, ServerCodeLength, used, exists, DefaultMaxAttempts)
	if err != nil {
		return CodeSet{}, fmt.Errorf("parent code: %w", err)
	}

	return CodeSet{Student: student, Teacher: teacher, Parent: parent}, nil
}

// GenerateClientCodeSet issues three pairwise-distinct optimistic codes
// with no store check, relying entirely on the unique indexes to catch
// collisions at insert time.
func GenerateClientCodeSet() (CodeSet, error) {
	used := make(map[string]struct{}, 3)

	student, err := GenerateUnique(ClientCodeLength, used, DefaultMaxAttempts)
	if err != nil {
		return CodeSet{}, fmt.Errorf("student code: %w", err)
	}
	used[student] = struct{}{}

	teacher, err := GenerateUnique(ClientCodeLength, used, DefaultMaxAttempts)
	if err != nil {
		return CodeSet{}, fmt.Errorf("teacher code: %w", err)
	}
	used[teacher] = struct{}{}

	parent, err := GenerateUnique(ClientCodeLength, used, DefaultMaxAttempts)
	if err != nil {
		return CodeSet{}, fmt.Errorf("parent code: %w", err)
	}

	return CodeSet{Student: student, Teacher: teacher, Parent: parent}, nil
}
