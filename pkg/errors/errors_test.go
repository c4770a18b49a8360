package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusCode(t *testing.T) {
	cases := map[ErrorCode]int{
		CodeValidationFailed: http.StatusBadRequest,
		CodeNotFound:         http.StatusNotFound,
		CodeRecipeNotFound:   http.StatusNotFound,
		CodeStorageFull:      http.StatusInsufficientStorage,
		CodePartialReplace:   http.StatusInternalServerError,
		CodeDatabaseError:    http.StatusInternalServerError,
	}

	for code, want := range cases {
		err := NewAppError(code, "msg", "")
		assert.Equal(t, want, err.StatusCode(), "code %s", code)
	}
}

func TestIs_SeesThroughWrapping(t *testing.T) {
	// Arrange
	appErr := NewStorageFullError(5_000_000, 4_000_000)
	wrapped := fmt.Errorf("save recipes: %w", appErr)

	// Act & Assert
	assert.True(t, Is(wrapped, CodeStorageFull))
	assert.False(t, Is(wrapped, CodeValidationFailed))
	assert.Equal(t, CodeStorageFull, GetCode(wrapped))
	assert.Equal(t, CodeInternal, GetCode(stderrors.New("plain")))
}

func TestPartialReplaceError_KeepsCause(t *testing.T) {
	cause := stderrors.New("insert failed")

	err := NewPartialReplaceError("meal_plans", cause)

	require.ErrorIs(t, err, cause)
	assert.Equal(t, "meal_plans", err.Metadata["collection"])
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil, "unused"))

	original := NewValidationError("title is required")
	assert.Same(t, original, Wrap(original, "ignored"))

	wrapped := Wrap(stderrors.New("boom"), "load failed")
	assert.Equal(t, CodeInternal, wrapped.Code)
	assert.Equal(t, "load failed", wrapped.Message)
}

func TestWarningString(t *testing.T) {
	w := NewStorageTooLargeWarning("recipes", 10, 5)
	assert.Equal(t, WarnStorageTooLarge, w.Code)
	assert.Contains(t, w.String(), "recipes")

	c := NewStorageCorruptWarning("mealPlan", nil)
	assert.Equal(t, "STORAGE_CORRUPT [mealPlan]", c.String())
}

func TestWarningCollector(t *testing.T) {
	t.Run("nested callers share one collector", func(t *testing.T) {
		// Arrange
		ctx, outer := WithWarnings(context.Background())

		// Act
		inner, same := WithWarnings(ctx)
		ReportWarning(inner, NewStorageCorruptWarning("recipes", stderrors.New("bad json")))

		// Assert
		assert.Same(t, outer, same)
		require.Len(t, outer.Warnings(), 1)
		assert.Equal(t, WarnStorageCorrupt, outer.Warnings()[0].Code)
	})

	t.Run("nil warning and missing collector are ignored", func(t *testing.T) {
		ctx, c := WithWarnings(context.Background())

		ReportWarning(ctx, nil)
		ReportWarning(context.Background(), NewStorageTooLargeWarning("mealPlan", 10, 5))

		assert.Zero(t, c.Len())
		assert.Nil(t, WarningsFrom(context.Background()).Warnings())
	})

	t.Run("since skips earlier warnings", func(t *testing.T) {
		ctx, c := WithWarnings(context.Background())
		ReportWarning(ctx, NewStorageCorruptWarning("recipes", nil))
		mark := c.Len()
		ReportWarning(ctx, NewStorageTooLargeWarning("mealPlan", 10, 5))

		later := c.Since(mark)

		require.Len(t, later, 1)
		assert.Equal(t, "mealPlan", later[0].Key)
		assert.Nil(t, c.Since(5))
	})
}

func TestWarningUserMessage(t *testing.T) {
	assert.Equal(t,
		"Saved recipes data could not be read and has been cleared. Starting fresh!",
		NewStorageCorruptWarning("recipes", nil).UserMessage())
	assert.Contains(t, NewStorageTooLargeWarning("mealPlan", 10, 5).UserMessage(), "too large")
}
