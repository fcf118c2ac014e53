package primitive

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digital.vasic.pavlov/pkg/introspect"
)

type point struct {
	X, Y int
	tag  string
}

func TestStrictEqual(t *testing.T) {
	shared := []int{1, 2}
	m := map[string]int{"a": 1}

	tests := []struct {
		name     string
		actual   any
		expected any
		want     bool
	}{
		{"same ints", 5, 5, true},
		{"different ints", 5, 6, false},
		{"int vs int64", 5, int64(5), false},
		{"int vs string", 5, "5", false},
		{"same strings", "a", "a", true},
		{"both nil", nil, nil, true},
		{"nil vs undefined", nil, introspect.Undefined, false},
		{"undefined vs undefined", introspect.Undefined, introspect.Undefined, true},
		{"same slice reference", shared, shared, true},
		{"equal but distinct slices", []int{1, 2}, []int{1, 2}, false},
		{"same map reference", m, m, true},
		{"equal structs", point{1, 2, "x"}, point{1, 2, "x"}, true},
		{"array holding slices", [1]any{[]int{1}}, [1]any{[]int{1}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := StrictEqual(tt.actual, tt.expected, "")
			if tt.want {
				assert.NoError(t, err)
				assert.Error(t, NotStrictEqual(tt.actual, tt.expected, ""))
			} else {
				assert.Error(t, err)
				assert.NoError(t, NotStrictEqual(tt.actual, tt.expected, ""))
			}
		})
	}
}

func TestEqual_Loose(t *testing.T) {
	assert.NoError(t, Equal(5, int64(5), ""))
	assert.NoError(t, Equal(nil, introspect.Undefined, ""))
	assert.NoError(t, Equal([]byte("ab"), []byte("ab"), ""))
	assert.Error(t, Equal(5, "5", ""))
	assert.Error(t, Equal(nil, 0, ""))
	assert.NoError(t, NotEqual(5, 6, ""))
	assert.Error(t, NotEqual(int32(7), 7, ""))
}

func TestDeepEqual(t *testing.T) {
	assert.NoError(t, DeepEqual([]int{1, 2}, []int{1, 2}, ""))
	assert.NoError(t, DeepEqual(point{1, 2, "a"}, point{1, 2, "a"}, ""))
	assert.Error(t, DeepEqual(point{1, 2, "a"}, point{1, 2, "b"}, ""))
	assert.NoError(t, DeepEqual(map[string]any{"k": []any{1}}, map[string]any{"k": []any{1}}, ""))
	assert.NoError(t, NotDeepEqual([]int{1}, []int{2}, ""))
	assert.Error(t, NotDeepEqual(nil, introspect.Undefined, ""))
}

func TestOk(t *testing.T) {
	assert.NoError(t, Ok(true, "never"))

	err := Ok(false, "must hold")
	require.Error(t, err)
	assert.Equal(t, "must hold", err.Error())
}

func TestAssertionError_MessageAndFields(t *testing.T) {
	err := StrictEqual(5, 6, "asserting 5 is equal to 6")
	require.Error(t, err)

	ae, ok := AsAssertion(err)
	require.True(t, ok)
	assert.Equal(t, "asserting 5 is equal to 6", ae.Message)
	assert.Equal(t, 5, ae.Actual)
	assert.Equal(t, 6, ae.Expected)
	assert.Equal(t, OpStrictEqual, ae.Operator)
	assert.False(t, ae.Generated)
	assert.True(t, errors.Is(err, ErrAssertion))
}

func TestAssertionError_GeneratedMessage(t *testing.T) {
	err := StrictEqual("a", "b", "")
	ae, ok := AsAssertion(err)
	require.True(t, ok)
	assert.True(t, ae.Generated)
	assert.Contains(t, ae.Message, `"a" !== "b"`)
}

func TestAssertionError_WrappedStillMatches(t *testing.T) {
	wrapped := fmt.Errorf("step 3: %w", Fail("nope"))

	assert.ErrorIs(t, wrapped, ErrAssertion)
	ae, ok := AsAssertion(wrapped)
	require.True(t, ok)
	assert.Equal(t, "nope", ae.Message)
}

func TestAssertionError_Details(t *testing.T) {
	err := DeepEqual(map[string]int{"a": 1}, map[string]int{"a": 2}, "maps differ")
	ae, ok := AsAssertion(err)
	require.True(t, ok)

	details := ae.Details()
	assert.Contains(t, details, "maps differ")
	assert.Contains(t, details, "operator: deepEqual")
	assert.Contains(t, details, "actual:")
	assert.Contains(t, details, "expected:")
}
