package scraper

import (
	"context"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"pagepulse/pkg/log"
)

// Selectors holds the XPath expressions used against the page markup.
// Paths starting with "." are relative to the element they are applied to.
type Selectors struct {
	Feed struct {
		Post      string `yaml:"post"`
		Loading   string `yaml:"loading"`
		Timestamp string `yaml:"timestamp"`
		PageTitle string `yaml:"page_title"`
	} `yaml:"feed"`

	Post struct {
		Link           string `yaml:"link"`
		LinkFallback   string `yaml:"link_fallback"`
		Message        string `yaml:"message"`
		NoteDate       string `yaml:"note_date"`
		NoteBody       string `yaml:"note_body"`
		Video          string `yaml:"video"`
		AttachmentLink string `yaml:"attachment_link"`
		Reactions      string `yaml:"reactions"`
		CommentsCount  string `yaml:"comments_count"`
		Shares         string `yaml:"shares"`
	} `yaml:"post"`

	Comments struct {
		Comment     string `yaml:"comment"`
		Reply       string `yaml:"reply"`
		ToExpand    string `yaml:"to_expand"`
		MoreReplies string `yaml:"more_replies"`
		Text        string `yaml:"text"`
		Image       string `yaml:"image"`
		Reactions   string `yaml:"reactions"`
		Commenter   string `yaml:"commenter"`
	} `yaml:"comments"`
}

// DefaultSelectors matches the classic desktop page markup.
func DefaultSelectors() Selectors {
	var s Selectors

	s.Feed.Post = `.//div[contains(@class, "userContentWrapper")]`
	s.Feed.Loading = `//span[@aria-valuetext="Loading..."]`
	s.Feed.Timestamp = `.//span[contains(@class, "timestampContent")]/..`
	s.Feed.PageTitle = `//*[@id="seo_h1_tag"]//span`

	s.Post.Link = `.//a[contains(@class, "_3hg-")]`
	s.Post.LinkFallback = `.//span[contains(@class, "timestampContent")]/../..`
	s.Post.Message = `.//div[@data-testid="post_message"]`
	s.Post.NoteDate = `.//a[contains(@class, "_39g5")]`
	s.Post.NoteBody = `.//div[contains(@class, "_39k5")]`
	s.Post.Video = `.//div[@data-testid="post_message"]/following-sibling::div//video`
	s.Post.AttachmentLink = `.//div[@data-testid="post_message"]/following-sibling::div//a`
	s.Post.Reactions = `.//a[@data-testid="UFI2ReactionsCount/root"]/span[2]/span/span`
	s.Post.CommentsCount = `.//a[contains(@class, "_3hg-")]`
	s.Post.Shares = `.//a[@data-testid="UFI2SharesCount/root"]`

	s.Comments.Comment = `.//div[@aria-label="Comment"]`
	s.Comments.Reply = `../..//div[@aria-label="Comment reply"]`
	s.Comments.ToExpand = `.//span[contains(@class, "_4ssp")]`
	s.Comments.MoreReplies = `.//a[contains(@class, "_5v47")]`
	s.Comments.Text = `.//span[@dir="ltr"]`
	s.Comments.Image = `.//div[@class="_2txe"]`
	s.Comments.Reactions = `.//span[@class="_1lld"]`
	s.Comments.Commenter = `.//*[@class="_6qw4"]`

	return s
}

// SelectorConfig serves the current Selectors and reloads them when the
// backing YAML file changes, so markup fixes apply to a long scrape without
// restarting it.
type SelectorConfig struct {
	mu          sync.RWMutex
	current     Selectors
	filePath    string
	lastModTime time.Time
}

// NewSelectorConfig serves fixed selectors with no backing file.
func NewSelectorConfig(s Selectors) *SelectorConfig {
	return &SelectorConfig{current: s}
}

// LoadSelectors reads filePath over the defaults. Keys missing from the file
// keep their default value.
func LoadSelectors(filePath string) (*SelectorConfig, error) {
	c := &SelectorConfig{filePath: filePath, current: DefaultSelectors()}
	if err := c.reload(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *SelectorConfig) reload() error {
	info, err := os.Stat(c.filePath)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(c.filePath)
	if err != nil {
		return err
	}

	next := DefaultSelectors()
	if err := yaml.Unmarshal(data, &next); err != nil {
		return err
	}

	c.mu.Lock()
	c.current = next
	c.lastModTime = info.ModTime()
	c.mu.Unlock()

	return nil
}

// Watch re-reads the file every interval while ctx is alive. A file that
// fails to parse keeps the previous selectors in force. A non-positive
// interval disables reloading.
func (c *SelectorConfig) Watch(ctx context.Context, interval time.Duration) {
	if c.filePath == "" || interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		info, err := os.Stat(c.filePath)
		if err != nil {
			continue
		}

		c.mu.RLock()
		changed := info.ModTime().After(c.lastModTime)
		c.mu.RUnlock()
		if !changed {
			continue
		}

		if err := c.reload(); err != nil {
			log.GlobalWarn("selector reload failed", "path", c.filePath, "error", err)
			continue
		}
		log.GlobalInfo("selectors reloaded", "path", c.filePath)
	}
}

// Current returns a snapshot of the selectors (thread-safe).
func (c *SelectorConfig) Current() Selectors {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}
