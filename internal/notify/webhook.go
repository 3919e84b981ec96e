package notify

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"

	"synthesis-tracker/internal/model"
	"synthesis-tracker/pkg/logger"
)

// WebhookNotifier 任务终态Webhook通知器。
// 每个到达终态的任务向配置的URL推送一次JSON快照。
type WebhookNotifier struct {
	url        string
	timeout    time.Duration
	maxRetries int
	client     *fasthttp.Client
	logger     logger.Logger
}

// NewWebhookNotifier 创建Webhook通知器，url为空时返回nil表示禁用
func NewWebhookNotifier(url string, timeout time.Duration, maxRetries int, logger logger.Logger) *WebhookNotifier {
	if url == "" {
		return nil
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &WebhookNotifier{
		url:        url,
		timeout:    timeout,
		maxRetries: maxRetries,
		client:     &fasthttp.Client{},
		logger:     logger,
	}
}

// NotifyJobDone 推送终态任务快照。推送失败只记日志，
// 不影响任务状态，适合挂到广播总线的完成回调上。
func (n *WebhookNotifier) NotifyJobDone(job *model.SynthesisJob) {
	go func() {
		if err := n.deliver(job); err != nil {
			n.logger.Error("webhook delivery for job %s failed: %v", job.ID, err)
		}
	}()
}

// deliver 带重试地投递一次通知
func (n *WebhookNotifier) deliver(job *model.SynthesisJob) error {
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= n.maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Duration(attempt) * time.Second)
		}
		if lastErr = n.post(body); lastErr == nil {
			n.logger.Debug("webhook delivered for job %s (stage %s)", job.ID, job.Stage)
			return nil
		}
		n.logger.Warn("webhook attempt %d for job %s failed: %v", attempt+1, job.ID, lastErr)
	}
	return lastErr
}

func (n *WebhookNotifier) post(body []byte) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(n.url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(body)

	if err := n.client.DoTimeout(req, resp, n.timeout); err != nil {
		return err
	}
	if code := resp.StatusCode(); code < 200 || code >= 300 {
		return fmt.Errorf("webhook endpoint returned status %d", code)
	}
	return nil
}
