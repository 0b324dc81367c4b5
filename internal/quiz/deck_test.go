package quiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeckAppendValidates(t *testing.T) {
	deck := Deck{textItem("a", "x")}

	_, err := deck.Append(textItem("b", "y"), Item{ID: "c", Type: TypeTextQuestion})
	assert.ErrorIs(t, err, ErrEmptyAnswerSet)
	assert.Len(t, deck, 1)

	next, err := deck.Append(textItem("b", "y"))
	require.NoError(t, err)
	assert.Len(t, next, 2)
	assert.Len(t, deck, 1)
}

func TestDeckReplaceKeepsID(t *testing.T) {
	deck := Deck{textItem("a", "x"), textItem("b", "y")}

	next, err := deck.Replace(1, textItem("new", "z"))
	require.NoError(t, err)
	assert.Equal(t, "b", next[1].ID)
	assert.Equal(t, []string{"z"}, next[1].CorrectAnswers)
	assert.Equal(t, []string{"y"}, deck[1].CorrectAnswers)
}

func TestDeckRemove(t *testing.T) {
	deck := Deck{textItem("a", "x"), textItem("b", "y"), textItem("c", "z")}

	next, err := deck.Remove(1)
	require.NoError(t, err)
	require.Len(t, next, 2)
	assert.Equal(t, "a", next[0].ID)
	assert.Equal(t, "c", next[1].ID)
	assert.Equal(t, 1, next.IndexOf("c"))
	assert.Equal(t, -1, next.IndexOf("b"))
	assert.Len(t, deck, 3)
}

func TestDeckOutOfRange(t *testing.T) {
	deck := Deck{textItem("a", "x")}

	for _, index := range []int{-1, 1, 5} {
		_, err := deck.At(index)
		assert.ErrorIs(t, err, ErrItemNotFound)
		_, err = deck.Remove(index)
		assert.ErrorIs(t, err, ErrItemNotFound)
		_, err = deck.Replace(index, textItem("z", "z"))
		assert.ErrorIs(t, err, ErrItemNotFound)
	}
}
