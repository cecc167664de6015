package report

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"TimeLens/internal/model"
)

// reportTemplate 报表页面模板：项目表格 + 横向时长条形图
// 自包含（内联样式，无外部资源），可直接以 data URL 交给无头浏览器渲染
const reportTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
  body { font-family: -apple-system, "Helvetica Neue", Arial, sans-serif; margin: 32px; color: #222; }
  h1 { font-size: 22px; margin-bottom: 4px; }
  .meta { color: #888; font-size: 12px; margin-bottom: 24px; }
  table { border-collapse: collapse; width: 100%; margin-bottom: 32px; }
  th, td { text-align: left; padding: 8px 12px; border-bottom: 1px solid #e5e5e5; font-size: 14px; }
  th { color: #666; font-weight: 600; }
  .swatch { display: inline-block; width: 12px; height: 12px; border-radius: 3px; margin-right: 8px; vertical-align: middle; }
  .bar-row { margin-bottom: 10px; }
  .bar-label { font-size: 13px; margin-bottom: 2px; }
  .bar { height: 16px; border-radius: 3px; }
</style>
</head>
<body>
<h1>项目时间汇总</h1>
<div class="meta">生成时间 {{.GeneratedAt}} · 共 {{len .Projects}} 个项目 · 合计 {{printf "%.2f" .TotalHours}} 小时</div>
<table>
  <tr><th>项目</th><th>时长（小时）</th><th>占比</th></tr>
  {{range .Projects}}
  <tr>
    <td><span class="swatch" style="background:{{.Color}}"></span>{{.Name}}</td>
    <td>{{printf "%.2f" .Duration}}</td>
    <td>{{printf "%.1f" .Percent}}%</td>
  </tr>
  {{end}}
</table>
{{range .Projects}}
<div class="bar-row">
  <div class="bar-label">{{.Name}}</div>
  <div class="bar" style="background:{{.Color}};width:{{printf "%.1f" .BarPercent}}%"></div>
</div>
{{end}}
</body>
</html>`

var tmpl = template.Must(template.New("report").Parse(reportTemplate))

// projectRow 模板行数据：在 Project 基础上补充占比与条形宽度
type projectRow struct {
	Name       string
	Duration   float64
	Color      string
	Percent    float64 // 占总时长百分比
	BarPercent float64 // 条形宽度（相对最长项目）
}

type reportData struct {
	GeneratedAt string
	TotalHours  float64
	Projects    []projectRow
}

// RenderHTML 将项目列表渲染为自包含的报表HTML
func RenderHTML(projects []*model.Project, now time.Time) (string, error) {
	var total, max float64
	for _, p := range projects {
		total += p.Duration
		if p.Duration > max {
			max = p.Duration
		}
	}

	rows := make([]projectRow, 0, len(projects))
	for _, p := range projects {
		row := projectRow{
			Name:     p.Name,
			Duration: p.Duration,
			Color:    p.Color,
		}
		if total > 0 {
			row.Percent = p.Duration / total * 100
		}
		if max > 0 {
			row.BarPercent = p.Duration / max * 100
		}
		rows = append(rows, row)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, reportData{
		GeneratedAt: now.Format("2006-01-02 15:04"),
		TotalHours:  total,
		Projects:    rows,
	}); err != nil {
		return "", fmt.Errorf("渲染报表模板失败: %w", err)
	}
	return buf.String(), nil
}
