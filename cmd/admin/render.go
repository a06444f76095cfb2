package main

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"fitreport/internal/client"
	"fitreport/internal/database"
	"fitreport/internal/listview"
	"fitreport/internal/workflow"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	titleStyle  = lipgloss.NewStyle().Bold(true).MarginTop(1)
	barStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

var statusLabels = map[string]string{
	string(workflow.StatusWaiting):    "대기",
	string(workflow.StatusInProgress): "진행중",
	string(workflow.StatusApproved):   "승인",
	string(workflow.StatusRejected):   "반려",
	string(workflow.StatusRevision):   "보완",
	string(workflow.StatusSubmitted):  "제출",
	string(workflow.StatusStopped):    "중지",
	database.UserStatusActive:         "활성",
	database.UserStatusInactive:       "비활성",
}

func statusLabel(status string) string {
	if label, ok := statusLabels[status]; ok {
		return label
	}
	return status
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func renderUsers(w io.Writer, page listview.Page[database.User]) {
	t := newTable("ID", "아이디", "이름", "직급", "회사", "연락처", "상태")
	for _, u := range page.Items {
		position := "-"
		if u.Position != nil {
			position = u.Position.Name
		}
		t.Row(strconv.FormatUint(uint64(u.ID), 10), u.UserID, u.Name, position, u.CompanyName, u.Phone, statusLabel(u.Status))
	}
	fmt.Fprintln(w, t.String())
	fmt.Fprintln(w, pagerLine(page.Page, page.TotalPages, page.Total))
}

func renderDocuments(w io.Writer, page listview.Page[database.Document]) {
	t := newTable("ID", "제출자", "종류", "제목", "상태", "단계", "담당", "제출일", "완료일", "사유")
	for _, d := range page.Items {
		reason := ""
		if d.Reason != "" {
			reason = "있음"
			if !d.ReasonRead {
				reason = "새 사유"
			}
		}
		t.Row(
			strconv.FormatUint(uint64(d.ID), 10),
			d.UserName,
			d.DocumentType,
			d.Title,
			statusLabel(d.Status),
			d.ProgressDetails,
			d.ManagerName,
			d.SubmittedDate,
			d.CompletedDate,
			reason,
		)
	}
	fmt.Fprintln(w, t.String())
	fmt.Fprintln(w, pagerLine(page.Page, page.TotalPages, page.Total))
}

// pagerLine renders "‹ 1 … 4 [5] 6 … 10 ›  (총 97건)".
func pagerLine(current, totalPages, total int) string {
	if totalPages == 0 {
		return mutedStyle.Render("(총 0건)")
	}
	parts := []string{"‹"}
	for _, p := range listview.Window(current, totalPages) {
		switch {
		case p == listview.Ellipsis:
			parts = append(parts, "…")
		case p == current:
			parts = append(parts, "["+strconv.Itoa(p)+"]")
		default:
			parts = append(parts, strconv.Itoa(p))
		}
	}
	parts = append(parts, "›")
	return strings.Join(parts, " ") + mutedStyle.Render(fmt.Sprintf("  (총 %d건)", total))
}

type barItem struct {
	label string
	count int
}

// sortedBars orders by count descending, then label.
func sortedBars(counts map[string]int) []barItem {
	items := make([]barItem, 0, len(counts))
	for label, n := range counts {
		items = append(items, barItem{label, n})
	}
	slices.SortFunc(items, func(a, b barItem) int {
		if c := cmp.Compare(b.count, a.count); c != 0 {
			return c
		}
		return strings.Compare(a.label, b.label)
	})
	return items
}

const barWidth = 30

func renderBars(w io.Writer, title string, items []barItem) {
	fmt.Fprintln(w, titleStyle.Render(title))
	peak := 0
	labelWidth := 0
	for _, it := range items {
		peak = max(peak, it.count)
		labelWidth = max(labelWidth, lipgloss.Width(it.label))
	}
	for _, it := range items {
		n := 0
		if peak > 0 {
			n = it.count * barWidth / peak
		}
		if it.count > 0 && n == 0 {
			n = 1
		}
		pad := strings.Repeat(" ", labelWidth-lipgloss.Width(it.label))
		fmt.Fprintf(w, "  %s%s %s %d\n", it.label, pad, barStyle.Render(strings.Repeat("█", n)), it.count)
	}
}

func renderStats(w io.Writer, stats *client.UserStats) {
	fmt.Fprintf(w, "전체 직원: %d명\n", stats.Total)
	renderBars(w, "상태별", []barItem{
		{statusLabel(database.UserStatusActive), stats.ByStatus.Active},
		{statusLabel(database.UserStatusInactive), stats.ByStatus.Inactive},
	})
	renderBars(w, "직급별", sortedBars(stats.ByPosition))
	renderBars(w, "회사별", sortedBars(stats.ByCompany))
}
