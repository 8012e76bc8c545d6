package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// InsightGenerator produces a short management commentary for a report.
// Implementations must degrade, not block: the report ships without
// commentary on any failure.
type InsightGenerator interface {
	Commentary(ctx context.Context, rep *EmployeeReport) (string, error)
}

type noopInsight struct{}

func (noopInsight) Commentary(context.Context, *EmployeeReport) (string, error) { return "", nil }

// LLMInsight calls an OpenAI-compatible chat completion endpoint.
type LLMInsight struct {
	apiURL string
	apiKey string
	model  string
	http   *http.Client
	logger *zap.Logger
}

func NewLLMInsight(apiURL, apiKey, model string, logger ...*zap.Logger) *LLMInsight {
	l := zap.L().Named("report.insight")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("report.insight")
	}
	return &LLMInsight{
		apiURL: strings.TrimSuffix(apiURL, "/"),
		apiKey: apiKey,
		model:  model,
		http:   &http.Client{Timeout: 60 * time.Second},
		logger: l,
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (g *LLMInsight) Commentary(ctx context.Context, rep *EmployeeReport) (string, error) {
	prompt := buildInsightPrompt(rep)

	body, err := json.Marshal(chatRequest{
		Model: g.model,
		Messages: []chatMessage{
			{
				Role: "system",
				Content: "Bạn là trợ lý nhân sự. Viết nhận xét ngắn gọn (tối đa 5 câu, tiếng Việt) " +
					"về hoạt động trong tháng của nhân viên dựa trên số liệu được cung cấp. " +
					"Khách quan, mang tính xây dựng.",
			},
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.apiURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		g.logger.Warn("insight endpoint returned non-200",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", raw),
		)
		return "", fmt.Errorf("insight endpoint status %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", err
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("insight endpoint returned no choices")
	}
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

func buildInsightPrompt(rep *EmployeeReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Nhân viên: %s, tháng %02d/%d.\n", rep.EmployeeName, rep.Month, rep.Year)

	if a := rep.Attendance; a != nil {
		s := a.Summary
		fmt.Fprintf(&b, "Chấm công: %d/%d ngày có mặt, %d ngày nghỉ phép, %d ngày thiếu công, đi trễ %d lần, tỷ lệ chuyên cần điều chỉnh %.1f%%. Đánh giá: %s.\n",
			s.DaysPresent, s.TotalWorkingDays, s.DaysTimeoff, s.DaysMissing, s.LateCount, s.AdjustedAttendanceRate, a.Evaluation)
	}
	if t := rep.Tasks; t != nil {
		fmt.Fprintf(&b, "Công việc (WeWork): %d task, hoàn thành %d (%.0f%%), quá hạn %d.\n",
			t.Total, t.Completed, t.CompletionRate, t.Overdue)
	}
	if o := rep.OKR; o != nil {
		fmt.Fprintf(&b, "OKR (%s): %d lần check-in trong tháng.\n", o.CycleName, o.CheckinCount)
	}
	if w := rep.Workflow; w != nil {
		fmt.Fprintf(&b, "Workflow: %d job đang tham gia.\n", w.JobCount)
	}
	if f := rep.Feed; f != nil {
		fmt.Fprintf(&b, "Bài viết nội bộ: %d bài trong tháng.\n", f.PostCount)
	}
	for i, l := range rep.Leaves {
		if i == 0 {
			b.WriteString("Lý do nghỉ đã phân loại: ")
		} else {
			b.WriteString("; ")
		}
		fmt.Fprintf(&b, "%s (%s)", l.Request.Reason, l.Category.Label)
	}
	return b.String()
}
