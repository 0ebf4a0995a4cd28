package param

import (
	"slices"
	"time"
)

// Crawl 一次批量爬取的站点与日期范围,日期均包含在内
type Crawl struct {
	Sites []string  `json:"sites"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (c *Crawl) IsValid() bool {
	if len(c.Sites) == 0 ||
		c.Start.IsZero() ||
		c.End.IsZero() ||
		day(c.End).Before(day(c.Start)) {
		return false
	}
	return !slices.Contains(c.Sites, "")
}

func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// UniqueSites 去掉重复站点,保留第一次出现的顺序
func (c *Crawl) UniqueSites() []string {
	seen := make(map[string]struct{}, len(c.Sites))
	out := make([]string, 0, len(c.Sites))
	for _, s := range c.Sites {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
