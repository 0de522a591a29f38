package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricedash/internal/dom"
)

const page = `<html><body><div id="toast-region"></div></body></html>`

func TestShowEscapesAndDismisses(t *testing.T) {
	doc := dom.MustParse(page)
	c := NewCenter(doc, 20*time.Millisecond)
	defer c.Close()

	id := c.Error("Erreur: <bad>")
	require.Equal(t, "toast-1", id)

	toast := doc.ByID(id)
	require.NotNil(t, toast)
	assert.True(t, toast.HasClass("toast-error"))
	assert.Equal(t, "Erreur: <bad>", toast.Text())
	assert.Contains(t, doc.ByID(RegionID).InnerHTML(), "&lt;bad&gt;")

	assert.Eventually(t, func() bool { return doc.ByID(id) == nil }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, c.Active())
}

func TestDismissEarly(t *testing.T) {
	doc := dom.MustParse(page)
	c := NewCenter(doc, time.Hour)
	defer c.Close()

	first := c.Success("Prédiction générée avec succès!")
	second := c.Show(Info, "second")
	assert.Equal(t, 2, c.Active())

	c.Dismiss(first)
	assert.Nil(t, doc.ByID(first))
	assert.NotNil(t, doc.ByID(second))
	assert.Equal(t, 1, c.Active())
}

func TestShowWithoutRegion(t *testing.T) {
	doc := dom.MustParse(`<html><body></body></html>`)
	c := NewCenter(doc, time.Second)
	assert.Equal(t, "", c.Error("ignored"))
	assert.Equal(t, 0, c.Active())
}

func TestClosedCenterIgnoresShow(t *testing.T) {
	doc := dom.MustParse(page)
	c := NewCenter(doc, time.Second)
	c.Close()
	assert.Equal(t, "", c.Success("late"))
	assert.Empty(t, doc.ByID(RegionID).InnerHTML())
}
