package report

import (
	"fmt"
	"html/template"
	"strings"
	"time"
)

// HTMLRenderer renders a report into the monthly email layout. The layout
// mirrors the HR email that circulated before this service existed:
// sectioned cards, Vietnamese labels, category color badges.
type HTMLRenderer struct {
	tpl *template.Template
}

func NewHTMLRenderer() *HTMLRenderer {
	funcs := template.FuncMap{
		"date":  func(t time.Time) string { return t.Format("02/01/2006") },
		"clock": func(t *time.Time) string { return formatClock(t) },
		"dateptr": func(t *time.Time) string {
			if t == nil {
				return "—"
			}
			return t.Format("02/01/2006")
		},
		"pct":      func(v float64) string { return fmt.Sprintf("%.1f%%", v) },
		"hours":    func(v float64) string { return fmt.Sprintf("%.2fh", v) },
		"month":    func(m time.Month) string { return fmt.Sprintf("%02d", int(m)) },
		"statusVi": statusLabel,
	}
	return &HTMLRenderer{
		tpl: template.Must(template.New("report").Funcs(funcs).Parse(reportTemplate)),
	}
}

func (r *HTMLRenderer) Render(rep *EmployeeReport) (string, error) {
	var b strings.Builder
	if err := r.tpl.Execute(&b, rep); err != nil {
		return "", err
	}
	return b.String(), nil
}

func formatClock(t *time.Time) string {
	if t == nil {
		return "—"
	}
	return t.Format("15:04")
}

func statusLabel(status string) string {
	switch status {
	case "present":
		return "Có mặt"
	case "timeoff":
		return "Nghỉ phép"
	case "absent":
		return "Thiếu công"
	}
	return status
}

const reportTemplate = `<!DOCTYPE html>
<html lang="vi">
<head>
<meta charset="utf-8">
<style>
  body { font-family: Arial, Helvetica, sans-serif; background: #f4f5f7; margin: 0; padding: 16px; color: #212529; }
  .card { background: #ffffff; border-radius: 8px; padding: 20px; margin-bottom: 16px; max-width: 760px; }
  h1 { font-size: 20px; margin: 0 0 4px; }
  h2 { font-size: 16px; border-bottom: 1px solid #e9ecef; padding-bottom: 6px; }
  table { border-collapse: collapse; width: 100%; font-size: 13px; }
  th, td { border: 1px solid #e9ecef; padding: 6px 8px; text-align: left; }
  th { background: #f8f9fa; }
  .muted { color: #6c757d; font-size: 12px; }
  .warn { color: #b02a37; }
  .badge { display: inline-block; padding: 2px 8px; border-radius: 10px; color: #fff; font-size: 12px; }
</style>
</head>
<body>
<div class="card">
  <h1>📊 Báo cáo hoạt động tháng {{month .Month}}/{{.Year}}</h1>
  <div>👤 <strong>{{.EmployeeName}}</strong>{{if .Username}} ({{.Username}}){{end}}</div>
  <div class="muted">Tạo lúc {{date .GeneratedAt}} · Mã: {{.RunID}}</div>
</div>

{{with .Attendance}}
<div class="card">
  <h2>🕐 Chấm công</h2>
  <table>
    <tr>
      <th>Ngày công</th><th>Có mặt</th><th>Nghỉ phép</th><th>Thiếu công</th>
      <th>Đi trễ</th><th>Về sớm</th><th>Chuyên cần</th><th>Điều chỉnh</th><th>Tổng giờ</th>
    </tr>
    <tr>
      <td>{{.Summary.TotalWorkingDays}}</td>
      <td>{{.Summary.DaysPresent}}</td>
      <td>{{.Summary.DaysTimeoff}}</td>
      <td>{{.Summary.DaysMissing}}</td>
      <td>{{.Summary.LateCount}}</td>
      <td>{{.Summary.EarlyCheckoutCount}}</td>
      <td>{{pct .Summary.AttendanceRate}}</td>
      <td>{{pct .Summary.AdjustedAttendanceRate}}</td>
      <td>{{hours .Summary.TotalWorkingHours}}</td>
    </tr>
  </table>
  <p><strong>Đánh giá:</strong> {{.Evaluation}}</p>

  {{if .Warnings}}
  <p class="warn"><strong>Cảnh báo:</strong></p>
  <ul class="warn">{{range .Warnings}}<li>{{.}}</li>{{end}}</ul>
  {{end}}

  {{if .ActionRequired}}
  <p><strong>Cần xử lý:</strong></p>
  <ul>{{range .ActionRequired}}<li>{{.}}</li>{{end}}</ul>
  {{end}}

  {{if .Summary.WeeklyHours}}
  <h2>📅 Giờ làm theo tuần</h2>
  <table>
    <tr><th>Tuần</th><th>Từ</th><th>Đến</th><th>Tổng giờ</th><th>Đủ quota</th></tr>
    {{range .Summary.WeeklyHours}}
    <tr>
      <td>{{.Week}}</td><td>{{date .StartDate}}</td><td>{{date .EndDate}}</td>
      <td>{{hours .TotalHours}}</td>
      <td>{{if .IsCompliant}}✅{{else}}❌ thiếu {{hours .Shortfall}}{{end}}</td>
    </tr>
    {{end}}
  </table>
  {{end}}

  <h2>📋 Chi tiết theo ngày</h2>
  <table>
    <tr><th>Ngày</th><th>Trạng thái</th><th>Vào</th><th>Ra</th><th>Giờ làm</th><th>Ghi chú</th></tr>
    {{range .Daily}}
    <tr>
      <td>{{date .Date}}</td>
      <td>{{statusVi .Status}}</td>
      <td>{{clock .FirstCheckin}}</td>
      <td>{{clock .LastCheckout}}</td>
      <td>{{hours .WorkingHours}}</td>
      <td>{{range $i, $w := .Warnings}}{{if $i}} · {{end}}{{$w}}{{end}}{{with .TimeoffReason}} ({{.}}){{end}}</td>
    </tr>
    {{end}}
  </table>
</div>
{{end}}

{{if .Leaves}}
<div class="card">
  <h2>🏖️ Nghỉ phép trong tháng</h2>
  <table>
    <tr><th>Từ</th><th>Đến</th><th>Lý do</th><th>Phân loại</th><th>Người duyệt</th></tr>
    {{range .Leaves}}
    <tr>
      <td>{{date .Request.StartDate}}</td>
      <td>{{date .Request.EndDate}}</td>
      <td>{{.Request.Reason}}</td>
      <td><span class="badge" style="background:{{.Category.Color}}">{{.Category.Icon}} {{.Category.Label}}</span></td>
      <td>{{.Request.Approver}}</td>
    </tr>
    {{end}}
  </table>
</div>
{{end}}

{{with .Tasks}}
<div class="card">
  <h2>✅ Công việc (WeWork)</h2>
  <p>Tổng: <strong>{{.Total}}</strong> · Hoàn thành: <strong>{{.Completed}}</strong> ({{pct .CompletionRate}})
     · Đang làm: {{.InProgress}} · Quá hạn: <span class="warn">{{.Overdue}}</span></p>
  {{if .Items}}
  <table>
    <tr><th>Công việc</th><th>Dự án</th><th>Tiến độ</th></tr>
    {{range .Items}}
    <tr><td>{{.Name}}</td><td>{{.ProjectName}}</td><td>{{pct .Complete}}</td></tr>
    {{end}}
  </table>
  {{end}}
</div>
{{end}}

{{with .OKR}}
<div class="card">
  <h2>🎯 OKR — {{.CycleName}}</h2>
  <p>Check-in trong tháng: <strong>{{.CheckinCount}}</strong>{{if .LastCheckinAt}} · Lần cuối: {{dateptr .LastCheckinAt}}{{end}}</p>
</div>
{{end}}

{{with .Workflow}}
<div class="card">
  <h2>🔄 Workflow</h2>
  <p>Đang tham gia <strong>{{.JobCount}}</strong> job</p>
  {{if .Jobs}}
  <ul>{{range .Jobs}}<li>{{.Name}}{{with .Stage}} — {{.}}{{end}}</li>{{end}}</ul>
  {{end}}
</div>
{{end}}

{{with .Feed}}
<div class="card">
  <h2>📰 Hoạt động nội bộ</h2>
  <p>Bài viết trong tháng: <strong>{{.PostCount}}</strong></p>
  {{if .Items}}
  <ul>{{range .Items}}<li>{{.Name}} <span class="muted">({{date .Since}})</span></li>{{end}}</ul>
  {{end}}
</div>
{{end}}

{{if .Insight}}
<div class="card">
  <h2>🤖 Nhận xét</h2>
  <p>{{.Insight}}</p>
</div>
{{end}}

{{if .SectionErrors}}
<div class="card">
  <p class="muted">Một số nguồn dữ liệu không khả dụng khi tạo báo cáo:
  {{range $k, $v := .SectionErrors}}{{$k}}; {{end}}</p>
</div>
{{end}}
</body>
</html>`
