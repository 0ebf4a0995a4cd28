package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/LouYuanbo1/permitcrawler/internal/config"
	"github.com/LouYuanbo1/permitcrawler/internal/domain/model"
	"github.com/LouYuanbo1/permitcrawler/internal/infra/persistence/es"
	"github.com/LouYuanbo1/permitcrawler/internal/logger"
	"github.com/LouYuanbo1/permitcrawler/internal/normalize"
	"github.com/LouYuanbo1/permitcrawler/internal/service/batch"
	"github.com/LouYuanbo1/permitcrawler/internal/service/crawler"
	"github.com/LouYuanbo1/permitcrawler/param"
	"github.com/urfave/cli/v2"
)

// allSites --site 的特殊值,表示站点表中的全部站点
const allSites = "all"

func newApp() *cli.App {
	return &cli.App{
		Name:  "permitcrawler",
		Usage: "爬取各县市建造执照与使用执照资料并输出 Excel",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "YAML 配置文件路径,不指定时使用内置配置"},
			&cli.StringFlag{Name: "log-level", Usage: "覆盖配置中的日志级别"},
			&cli.StringFlag{Name: "es-address", Usage: "覆盖配置中的 Elasticsearch 地址"},
		},
		Commands: []*cli.Command{
			{
				Name:   "sites",
				Usage:  "列出支持的站点",
				Action: SitesAction,
			},
			{
				Name:  "crawl",
				Usage: "爬取指定站点在日期范围内的执照资料",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{Name: "site", Aliases: []string{"s"}, Usage: "站点名称,可重复指定;all 表示全部站点", Required: true},
					&cli.StringFlag{Name: "start", Usage: "开始日期,例如 2024-01-01 或 113/01/01", Required: true},
					&cli.StringFlag{Name: "end", Usage: "结束日期,包含在内", Required: true},
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "覆盖配置中的输出目录"},
					&cli.IntFlag{Name: "parallelism", Aliases: []string{"p"}, Usage: "覆盖同时爬取的站点数"},
					&cli.BoolFlag{Name: "index", Usage: "同时写入 Elasticsearch"},
				},
				Action: CrawlAction,
			},
			{
				Name:  "show",
				Usage: "从 Elasticsearch 读取单笔执照资料",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "id", Usage: "文档 ID,格式为 站点:来源编号", Required: true},
				},
				Action: ShowAction,
			},
			{
				Name:  "search",
				Usage: "在 Elasticsearch 中查询执照资料",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "site", Usage: "站点名称"},
					&cli.StringFlag{Name: "type", Usage: "执照类别: construction 或 occupancy"},
					&cli.StringFlag{Name: "license", Usage: "核发执照字号"},
					&cli.StringFlag{Name: "text", Aliases: []string{"q"}, Usage: "比对起造人、用途、地号、门牌等文字"},
					&cli.IntFlag{Name: "from", Usage: "略过的笔数"},
					&cli.IntFlag{Name: "size", Value: 20, Usage: "返回笔数"},
				},
				Action: SearchAction,
			},
		},
	}
}

// loadConfig 读取配置并套用命令行覆盖
func loadConfig(c *cli.Context) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path := c.String("config"); path != "" {
		cfg, err = config.LoadConfig(path)
	} else {
		cfg, err = config.ParseConfig(appConfig)
	}
	if err != nil {
		return nil, err
	}

	if level := c.String("log-level"); level != "" {
		cfg.Logging.Level = level
	}
	if addr := c.String("es-address"); addr != "" {
		cfg.Elasticsearch.Address = addr
	}
	if dir := c.String("output"); dir != "" {
		if cfg.Output.Dir, err = filepath.Abs(dir); err != nil {
			return nil, err
		}
	}
	if n := c.Int("parallelism"); n > 0 {
		cfg.Crawl.Parallelism = n
	}
	if c.Bool("index") {
		cfg.Elasticsearch.Enabled = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func SitesAction(c *cli.Context) error {
	for _, s := range crawler.Sites() {
		fmt.Fprintf(c.App.Writer, "%s\t%s\n", s.Name, s.Family)
	}
	return nil
}

func CrawlAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return cli.Exit(fmt.Sprintf("配置错误: %v", err), 2)
	}
	crawl, err := crawlParams(c)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}
	log := logger.NewLogger(cfg.Logging.Level)

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := []batch.Option{batch.WithLogger(log)}
	if cfg.Elasticsearch.Enabled {
		client, err := es.InitTypedEsClient[*model.PermitDoc](&cfg.Elasticsearch, log)
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}
		opts = append(opts, batch.WithIndexer(client))
	}

	factory := crawler.NewFactory(crawler.CollySessionFactory(cfg.Colly))
	report, err := batch.NewRunner(factory, cfg, opts...).Run(ctx, crawl)
	if err != nil {
		if errors.Is(err, crawler.ErrUnsupportedSite) || errors.Is(err, crawler.ErrValidation) {
			return cli.Exit(err.Error(), 2)
		}
		return cli.Exit(err.Error(), 1)
	}

	printReport(c, report)
	if failed := report.Failed(); len(failed) > 0 {
		return cli.Exit(fmt.Sprintf("%d 个站点失败", len(failed)), 1)
	}
	if ctx.Err() != nil {
		return cli.Exit("已取消", 130)
	}
	return nil
}

// openIndex 读取命令不要求配置中启用索引,只要地址可用
func openIndex(c *cli.Context) (es.TypedEsClient[*model.PermitDoc], error) {
	cfg, err := loadConfig(c)
	if err == nil {
		cfg.Elasticsearch.Enabled = true
		err = cfg.Validate()
	}
	if err != nil {
		return nil, cli.Exit(fmt.Sprintf("配置错误: %v", err), 2)
	}
	client, err := es.InitTypedEsClient[*model.PermitDoc](&cfg.Elasticsearch, logger.NewLogger(cfg.Logging.Level))
	if err != nil {
		return nil, cli.Exit(err.Error(), 1)
	}
	return client, nil
}

func ShowAction(c *cli.Context) error {
	client, err := openIndex(c)
	if err != nil {
		return err
	}
	id := c.String("id")
	doc, err := client.GetDoc(c.Context, id)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	if doc == nil {
		return cli.Exit(fmt.Sprintf("找不到文档 %s", id), 1)
	}

	enc := json.NewEncoder(c.App.Writer)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func SearchAction(c *cli.Context) error {
	permitType := c.String("type")
	if permitType != "" && !slices.Contains(model.PermitTypes, model.PermitType(permitType)) {
		return cli.Exit(fmt.Sprintf("%v: 未知的执照类别 %q", crawler.ErrValidation, permitType), 2)
	}
	if c.Int("from") < 0 || c.Int("size") < 1 {
		return cli.Exit(fmt.Sprintf("%v: --from 不能为负,--size 至少为 1", crawler.ErrValidation), 2)
	}
	client, err := openIndex(c)
	if err != nil {
		return err
	}

	query := es.PermitQuery(es.PermitFilter{
		Site:       c.String("site"),
		PermitType: permitType,
		LicenseNo:  c.String("license"),
		Text:       c.String("text"),
	})
	docs, total, err := client.SearchDoc(c.Context, query, c.Int("from"), c.Int("size"))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	w := c.App.Writer
	fmt.Fprintf(w, "共 %d 笔,显示 %d 笔\n", total, len(docs))
	for _, d := range docs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", d.ID, d.IssueDate, d.PermitType, d.LicenseNo)
	}
	return nil
}

func crawlParams(c *cli.Context) (param.Crawl, error) {
	start, err := parseDate(c.String("start"))
	if err != nil {
		return param.Crawl{}, fmt.Errorf("--start: %w", err)
	}
	end, err := parseDate(c.String("end"))
	if err != nil {
		return param.Crawl{}, fmt.Errorf("--end: %w", err)
	}

	sites := c.StringSlice("site")
	if slices.Contains(sites, allSites) {
		sites = crawler.ListSupportedSites()
	}
	p := param.Crawl{Sites: sites, Start: start, End: end}
	if !p.IsValid() {
		return param.Crawl{}, fmt.Errorf("%w: 站点不能为空,结束日期不能早于开始日期", batch.ErrInvalidParams)
	}
	return p, nil
}

// parseDate 接受西元 2006-01-02 或民国 113/01/02
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if d, err := time.Parse(time.DateOnly, s); err == nil {
		return d, nil
	}
	if d, ok := normalize.ParseLocalDate(s); ok && strings.Contains(s, "/") && d.Year()-normalize.EraOffset < 1000 {
		return d, nil
	}
	return time.Time{}, fmt.Errorf("无法解析日期 %q", s)
}

func printReport(c *cli.Context, report *batch.Report) {
	w := c.App.Writer
	fmt.Fprintf(w, "执行编号: %s\n输出目录: %s\n", report.RunID, report.Dir)
	for _, res := range report.Results {
		status := "完成"
		if res.Err != nil {
			status = "失败: " + res.Err.Error()
		}
		fmt.Fprintf(w, "%s\t%d 笔\t%s\n", res.Site, res.Records, status)
		for _, pt := range model.PermitTypes {
			if path, ok := res.Files[pt]; ok {
				fmt.Fprintf(w, "  %s (%d 笔): %s\n", pt.Label(), res.Stats[pt], path)
			}
		}
	}
}
