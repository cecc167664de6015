package report

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// 渲染兜底参数
const (
	DefaultTimeoutSec = 30
	DefaultPageWidth  = 900
)

// PrintOptions 无头浏览器打印参数
type PrintOptions struct {
	// Timeout 整个打印流程的超时，为零时取 DefaultTimeoutSec
	Timeout time.Duration
	// Width 渲染视口宽度（像素），为零时取 DefaultPageWidth
	Width int
}

// PrintPDF 通过无头Chromium将自包含HTML打印为PDF
// HTML以 data URL 直接载入，不依赖任何本地HTTP服务
func PrintPDF(parentCtx context.Context, html string, opts PrintOptions) ([]byte, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeoutSec * time.Second
	}
	if opts.Width <= 0 {
		opts.Width = DefaultPageWidth
	}

	ctx, cancel := chromedp.NewContext(parentCtx)
	defer cancel()
	ctx, timeoutCancel := context.WithTimeout(ctx, opts.Timeout)
	defer timeoutCancel()

	dataURL := "data:text/html;base64," + base64.StdEncoding.EncodeToString([]byte(html))

	var pdf []byte
	tasks := chromedp.Tasks{
		chromedp.EmulateViewport(int64(opts.Width), 1200),
		chromedp.Navigate(dataURL),
		// 等待最终绘制
		chromedp.Sleep(300 * time.Millisecond),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			if err != nil {
				return err
			}
			pdf = buf
			return nil
		}),
	}

	if err := chromedp.Run(ctx, tasks); err != nil {
		return nil, fmt.Errorf("无头浏览器打印失败: %w", err)
	}
	return pdf, nil
}
