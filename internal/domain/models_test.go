package domain_test

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"

	"docex/internal/domain"
)

func TestPageRange(t *testing.T) {
	doc := domain.RawDocument{PageStart: 2, PageEnd: 3}
	start, end, ok := doc.PageRange()
	assert.True(t, ok)
	assert.Equal(t, 2, start)
	assert.Equal(t, 3, end)
	assert.Equal(t, "2-3", doc.PageRangeString())

	// Both bounds must be set for a range to apply.
	doc = domain.RawDocument{PageStart: 2}
	_, _, ok = doc.PageRange()
	assert.False(t, ok)
	assert.Equal(t, "", doc.PageRangeString())

	doc = domain.RawDocument{PageEnd: 3}
	_, _, ok = doc.PageRange()
	assert.False(t, ok)

	doc = domain.RawDocument{}
	_, _, ok = doc.PageRange()
	assert.False(t, ok)
}

func TestPageImage_DataURI(t *testing.T) {
	page := domain.PageImage{
		PageNumber: 1,
		MIMEType:   "image/png",
		Data:       []byte{0x89, 0x50, 0x4e, 0x47},
	}

	want := "data:image/png;base64," + base64.StdEncoding.EncodeToString(page.Data)
	assert.Equal(t, want, page.DataURI())
}
