package scraper

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagepulse/internal/adapters/browser"
)

var feedPosts = browser.Document.Find(".//post")

func newTestScroller(max int) *ScrollController {
	c := NewScrollController(testSelectors(), max)
	c.Settle = 0
	c.LoadingTimeout = 0
	return c
}

func TestScrollUntil_CutoffAfterLoadedPosts_StopsAfterOneScroll(t *testing.T) {
	// Arrange
	s := newFakeSession()
	s.onScroll = func(f *fakeSession) {
		f.counts[feedPosts.XPath] = 3
		f.setAttr(feedPosts.FromEnd(0).Find(".//ts"), "title", "Tuesday, March 3, 2020 at 10:04 AM")
	}
	cutoff := time.Date(2021, 1, 1, 0, 0, 0, 0, time.Local)

	// Act
	res, err := newTestScroller(1000).ScrollUntil(context.Background(), s, cutoff)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, res.Scrolls)
	assert.True(t, res.Reached)
	require.NotNil(t, res.LastDate)
	assert.Equal(t, 2020, res.LastDate.Year())
	assert.Equal(t, 1, s.scrolls)
}

func TestScrollUntil_CeilingHit_StopsWithoutError(t *testing.T) {
	// Arrange
	s := newFakeSession()
	s.counts[feedPosts.XPath] = 1
	s.setAttr(feedPosts.FromEnd(0).Find(".//ts"), "title", "2020-03-03")
	cutoff := time.Date(2019, 1, 1, 0, 0, 0, 0, time.Local)

	// Act
	res, err := newTestScroller(5).ScrollUntil(context.Background(), s, cutoff)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 5, res.Scrolls)
	assert.False(t, res.Reached)
	assert.Equal(t, 5, s.scrolls)
}

func TestScrollUntil_KeepsScrollingUntilOlderPostLoads(t *testing.T) {
	// Arrange
	dates := []string{"2020-05-01", "2020-04-01", "2020-02-15"}
	s := newFakeSession()
	s.onScroll = func(f *fakeSession) {
		f.counts[feedPosts.XPath] = f.scrolls
		f.setAttr(feedPosts.FromEnd(0).Find(".//ts"), "title", dates[f.scrolls-1])
	}
	cutoff := time.Date(2020, 3, 1, 0, 0, 0, 0, time.Local)

	// Act
	res, err := newTestScroller(1000).ScrollUntil(context.Background(), s, cutoff)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 3, res.Scrolls)
	assert.True(t, res.Reached)
}

func TestScrollUntil_UndatedLastPost_WalksBackward(t *testing.T) {
	// Arrange
	s := newFakeSession()
	s.counts[feedPosts.XPath] = 3
	s.setAttr(feedPosts.FromEnd(0).Find(".//ts"), "title", "not a date")
	s.setAttr(feedPosts.FromEnd(1).Find(".//ts"), "title", "2018-07-01")
	cutoff := time.Date(2019, 1, 1, 0, 0, 0, 0, time.Local)

	// Act
	res, err := newTestScroller(10).ScrollUntil(context.Background(), s, cutoff)

	// Assert
	require.NoError(t, err)
	require.NotNil(t, res.LastDate)
	assert.Equal(t, 2018, res.LastDate.Year())
	assert.Equal(t, 1, res.Scrolls)
}

func TestScrollUntil_NoDatedPost_Stops(t *testing.T) {
	// Arrange
	s := newFakeSession()
	s.counts[feedPosts.XPath] = 2

	// Act
	res, err := newTestScroller(10).ScrollUntil(context.Background(), s, time.Now())

	// Assert
	require.NoError(t, err)
	assert.Nil(t, res.LastDate)
	assert.False(t, res.Reached)
	assert.Equal(t, 1, res.Scrolls)
}

func TestScrollUntil_CancelledContext_ReturnsError(t *testing.T) {
	// Arrange
	s := newFakeSession()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := newTestScroller(10)
	c.Settle = time.Second

	// Act
	_, err := c.ScrollUntil(ctx, s, time.Now())

	// Assert
	assert.ErrorIs(t, err, context.Canceled)
}
