package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryBackForward(t *testing.T) {
	doc := MustParse(`<html><body></body></html>`)
	h := doc.History()

	var popped []string
	h.OnPopState(func(e Entry) { popped = append(popped, e.State) })

	h.Push(Entry{State: "overview", URL: "#overview"})
	h.Push(Entry{State: "predict", URL: "#predict"})
	h.Push(Entry{State: "model", URL: "#model"})
	require.Equal(t, 3, h.Len())

	assert.True(t, h.Back())
	cur, _ := h.Current()
	assert.Equal(t, "predict", cur.State)
	assert.Equal(t, 3, h.Len(), "back must not add entries")

	assert.True(t, h.Forward())
	assert.False(t, h.Forward())
	assert.Equal(t, []string{"predict", "model"}, popped)

	h.Back()
	h.Push(Entry{State: "analytics"})
	assert.Equal(t, 3, h.Len(), "push drops forward entries")
}

func TestHistoryTraverse(t *testing.T) {
	doc := MustParse(`<html><body></body></html>`)
	h := doc.History()
	var popped []string
	h.OnPopState(func(e Entry) { popped = append(popped, e.State) })

	h.Push(Entry{State: "overview"})
	h.Push(Entry{State: "predict"})

	h.Traverse("overview")
	cur, _ := h.Current()
	assert.Equal(t, "overview", cur.State)

	h.Traverse("predict")
	cur, _ = h.Current()
	assert.Equal(t, "predict", cur.State)

	h.Traverse("model")
	assert.Equal(t, []string{"overview", "predict", "model"}, popped)
	assert.Equal(t, 2, h.Len())
}

func TestHistoryPushRecordsPatch(t *testing.T) {
	doc := MustParse(`<html><body></body></html>`)
	doc.History().Push(Entry{State: "predict", Title: "AI Price Prediction", URL: "#predict"})

	patches := doc.Flush()
	require.Len(t, patches, 1)
	assert.Equal(t, Patch{Kind: PatchPush, State: "predict", Title: "AI Price Prediction", URL: "#predict"}, patches[0])
}
