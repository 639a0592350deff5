package service

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
	"github.com/user/shortdrama/internal/model"
	"golang.org/x/sync/singleflight"
)

type dramaImportStore interface {
	Upsert(drama *model.Drama) error
}

// ImportResult 一次导入的统计
type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

// ImporterService 管理端剧目导入器：抓取剧目列表页并解析入库
type ImporterService struct {
	dramas dramaImportStore
	client *http.Client
	sf     singleflight.Group // 防止并发重复导入同一来源
}

// NewImporterService 创建导入器
func NewImporterService(dramas dramaImportStore) *ImporterService {
	return &ImporterService{
		dramas: dramas,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// ImportFromURL 抓取并导入列表页，同一 URL 的并发请求合并为一次抓取
func (s *ImporterService) ImportFromURL(url string) (*ImportResult, error) {
	result, err, _ := s.sf.Do(url, func() (interface{}, error) {
		return s.importOnce(url)
	})
	if err != nil {
		return nil, err
	}
	return result.(*ImportResult), nil
}

func (s *ImporterService) importOnce(url string) (*ImportResult, error) {
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("请求失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("请求返回状态码: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("解析 HTML 失败: %w", err)
	}

	return s.importDocument(doc), nil
}

// importDocument 遍历列表页条目并逐条入库
func (s *ImporterService) importDocument(doc *goquery.Document) *ImportResult {
	result := &ImportResult{}

	doc.Find(".drama-item").Each(func(i int, sel *goquery.Selection) {
		drama := parseDramaItem(sel)
		if drama.Title == "" {
			result.Skipped++
			return
		}

		if err := s.dramas.Upsert(drama); err != nil {
			log.Error().Err(err).Str("title", drama.Title).Msg("剧目入库失败")
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", drama.Title, err))
			return
		}
		result.Imported++
	})

	log.Info().Int("imported", result.Imported).Int("skipped", result.Skipped).Msg("剧目导入完成")
	return result
}

// parseDramaItem 解析单个剧目条目
func parseDramaItem(sel *goquery.Selection) *model.Drama {
	drama := &model.Drama{
		Title:       strings.TrimSpace(sel.Find(".title").Text()),
		Description: strings.TrimSpace(sel.Find(".description").Text()),
		Category:    strings.TrimSpace(sel.Find(".category").Text()),
		Duration:    strings.TrimSpace(sel.Find(".duration").Text()),
		Status:      model.DramaStatusUpdating,
	}

	if poster, ok := sel.Find("img.poster").Attr("src"); ok {
		drama.Poster = strings.TrimSpace(poster)
	}

	if rating, err := strconv.ParseFloat(strings.TrimSpace(sel.Find(".rating").Text()), 64); err == nil && rating >= 0 && rating <= 10 {
		drama.Rating = rating
	}

	if episodes, err := strconv.Atoi(strings.TrimSpace(sel.Find(".episodes").Text())); err == nil {
		drama.EpisodeCount = episodes
	}

	// 标签与演员以顿号或逗号分隔
	drama.Tags = splitList(sel.Find(".tags").Text())
	drama.Cast = splitList(sel.Find(".cast").Text())

	switch strings.TrimSpace(sel.Find(".status").Text()) {
	case "已完结":
		drama.Status = model.DramaStatusCompleted
	case "即将上线":
		drama.Status = model.DramaStatusComingSoon
	}

	if release := strings.TrimSpace(sel.Find(".release-date").Text()); release != "" {
		if t, err := time.Parse("2006-01-02", release); err == nil {
			drama.ReleaseDate = t
		}
	}
	if drama.ReleaseDate.IsZero() {
		drama.ReleaseDate = time.Now()
	}

	return drama
}

// splitList 切开顿号/逗号分隔的列表文本
func splitList(raw string) []string {
	raw = strings.NewReplacer("、", ",", "，", ",").Replace(raw)
	parts := strings.Split(raw, ",")
	items := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			items = append(items, p)
		}
	}
	return items
}
