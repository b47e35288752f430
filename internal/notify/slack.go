// Package notify posts cycle and error reports to a Slack webhook. Delivery
// is best effort: a failed notification is logged and never affects trading.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// CycleReport is the structured summary sent after each trading cycle.
type CycleReport struct {
	JobName         string
	Strategy        string
	Simulation      bool
	SnapshotsSaved  int
	CheckedHoldings int
	Sold            int
	BuyCandidates   int
	Bought          int
	SnapshotsPruned int64
	HoldingTotal    int64
	CompletedTotal  int64
	SkippedTotal    int64
	TotalPnL        float64
}

// attachment is Slack's legacy color-bar message block.
type attachment struct {
	Color  string  `json:"color"`
	Title  string  `json:"title"`
	Text   string  `json:"text"`
	Fields []field `json:"fields"`
}

type field struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

// Slack sends webhook messages. With an empty webhook URL it degrades to a
// no-op so the bot can run without notifications configured.
type Slack struct {
	client     *resty.Client
	logger     *zap.Logger
	webhookURL string
}

// NewSlack creates the notifier. webhookURL may be empty.
func NewSlack(webhookURL string, logger *zap.Logger) *Slack {
	if webhookURL == "" {
		logger.Warn("No Slack webhook configured, notifications disabled")
	}
	return &Slack{
		client:     resty.New().SetTimeout(10 * time.Second),
		logger:     logger.Named("slack"),
		webhookURL: webhookURL,
	}
}

func (s *Slack) post(ctx context.Context, text string, attachments []attachment) error {
	if s.webhookURL == "" {
		return nil
	}

	payload := map[string]interface{}{"text": text}
	if len(attachments) > 0 {
		payload["attachments"] = attachments
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post(s.webhookURL)
	if err != nil {
		return fmt.Errorf("failed to post to Slack: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("slack webhook returned %s", resp.Status())
	}
	return nil
}

// SendCycleReport posts the end-of-cycle summary. The color bar tracks the
// cumulative P&L.
func (s *Slack) SendCycleReport(ctx context.Context, r CycleReport) error {
	color := "warning"
	switch {
	case r.TotalPnL > 0:
		color = "good"
	case r.TotalPnL < -10:
		color = "danger"
	}

	mode := "live"
	if r.Simulation {
		mode = "simulation"
	}

	att := attachment{
		Color: color,
		Title: fmt.Sprintf("%s cycle report (%s, %s)", r.JobName, r.Strategy, mode),
		Text:  time.Now().Format("2006-01-02 15:04:05"),
		Fields: []field{
			{Title: "Sold / Bought", Value: fmt.Sprintf("%d / %d", r.Sold, r.Bought), Short: true},
			{Title: "Candidates", Value: fmt.Sprintf("%d", r.BuyCandidates), Short: true},
			{Title: "Open positions", Value: fmt.Sprintf("%d", r.HoldingTotal), Short: true},
			{Title: "Completed", Value: fmt.Sprintf("%d", r.CompletedTotal), Short: true},
			{Title: "Snapshots saved", Value: fmt.Sprintf("%d", r.SnapshotsSaved), Short: true},
			{Title: "Total P&L", Value: fmt.Sprintf("$%.4f", r.TotalPnL), Short: true},
		},
	}

	if err := s.post(ctx, fmt.Sprintf("Trading cycle finished: %s", r.JobName), []attachment{att}); err != nil {
		s.logger.Error("Failed to send cycle report", zap.Error(err))
		return err
	}
	return nil
}

// SendErrorReport posts a cycle failure notice.
func (s *Slack) SendErrorReport(ctx context.Context, jobName string, cycleErr error) error {
	att := attachment{
		Color: "danger",
		Title: fmt.Sprintf("%s cycle failed", jobName),
		Text:  cycleErr.Error(),
	}
	if err := s.post(ctx, fmt.Sprintf("Trading cycle failed: %s", jobName), []attachment{att}); err != nil {
		s.logger.Error("Failed to send error report", zap.Error(err))
		return err
	}
	return nil
}
