package tui

import (
	"fmt"
	"math"
	"strings"

	"btc-dashboard/internal/domain"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	upStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	downStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	priceStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("231"))
	panelStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("63")).Padding(0, 1)
	activeButton = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("231")).Background(lipgloss.Color("33")).Padding(0, 1)
	idleButton   = lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Background(lipgloss.Color("238")).Padding(0, 1)
	lineStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("33"))
)

func (m *Model) View() string {
	var b strings.Builder

	header := titleStyle.Render("Bitcoin Trading Platform")
	live := mutedStyle.Render("Live Update: " + m.ticker.LastUpdateTimestamp.Format("15:04:05"))
	if m.username != "" {
		live = mutedStyle.Render(m.username+" · ") + live
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, header, "  ", live))
	b.WriteString("\n\n")

	b.WriteString(panelStyle.Render(m.renderPrice()))
	b.WriteString("\n")

	chartWidth := m.width - 4
	chartHeight := m.height / 3
	if chartHeight < 6 {
		chartHeight = 6
	}
	chart := m.renderButtons() + "\n\n" + RenderChart(m.series, chartWidth, chartHeight)
	b.WriteString(panelStyle.Render(chart))
	b.WriteString("\n")

	half := (m.width - 6) / 2
	buyers := renderTraders("Top Buyers", m.leaderboard.Buyers, upStyle, half)
	sellers := renderTraders("Top Sellers", m.leaderboard.Sellers, downStyle, half)
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, panelStyle.Render(buyers), panelStyle.Render(sellers)))
	b.WriteString("\n")

	b.WriteString(mutedStyle.Render("Market data updates every 3 seconds • Trading 24/7"))
	b.WriteString("\n")
	if m.err != nil {
		b.WriteString(downStyle.Render("error: " + m.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *Model) renderPrice() string {
	change := m.ticker.FormatChange()
	if m.ticker.LastDelta >= 0 {
		change = upStyle.Render("▲ " + change)
	} else {
		change = downStyle.Render("▼ " + change)
	}

	left := mutedStyle.Render("Bitcoin Price ("+domain.Symbol+")") + "\n" +
		priceStyle.Render(domain.FormatUSD(m.ticker.CurrentPrice)) + "\n" +
		change

	right := mutedStyle.Render("Trading Volume") + "\n" +
		fmt.Sprintf("Day %s  Week %s  Month %s", m.volume.Day, m.volume.Week, m.volume.Month)

	return lipgloss.JoinHorizontal(lipgloss.Top, left, "      ", right)
}

func (m *Model) renderButtons() string {
	parts := []string{titleStyle.Render("Price Chart"), "  "}
	for _, tf := range domain.SupportedTimeframes {
		style := idleButton
		if tf == m.timeframe {
			style = activeButton
		}
		parts = append(parts, style.Render(tf.Title()), " ")
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func renderTraders(title string, traders []domain.Trader, accent lipgloss.Style, width int) string {
	var b strings.Builder
	b.WriteString(accent.Bold(true).Render(title))
	b.WriteString("\n")
	for i, t := range traders {
		line := fmt.Sprintf("%d. %-14s %s", i+1, t.Name, accent.Render(t.Amount))
		b.WriteString(line)
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render(fmt.Sprintf("   Price: %s  Total: %s", t.Price, t.Total)))
		if i < len(traders)-1 {
			b.WriteString("\n")
		}
	}
	return lipgloss.NewStyle().Width(width).Render(b.String())
}

// RenderChart draws series as a scatter line in a width x height grid with
// the y axis spanning the series bounds widened by domain.AxisPadding.
func RenderChart(series domain.ChartSeries, width, height int) string {
	if len(series) == 0 || height < 2 {
		return mutedStyle.Render("no data")
	}

	lo, hi := series.Bounds(domain.AxisPadding)
	axisWidth := len(formatAxis(hi))
	if w := len(formatAxis(lo)); w > axisWidth {
		axisWidth = w
	}

	step := 1
	if plot := width - axisWidth - 2; plot > len(series) {
		step = plot / len(series)
	}
	if step > 4 {
		step = 4
	}

	grid := make([][]rune, height)
	for r := range grid {
		grid[r] = []rune(strings.Repeat(" ", len(series)*step))
	}
	for i, p := range series {
		row := priceRow(p.Price, lo, hi, height)
		grid[row][i*step] = '•'
	}

	var b strings.Builder
	for r, cells := range grid {
		label := ""
		switch r {
		case 0:
			label = formatAxis(hi)
		case height - 1:
			label = formatAxis(lo)
		}
		b.WriteString(mutedStyle.Render(fmt.Sprintf("%*s │", axisWidth, label)))
		b.WriteString(lineStyle.Render(string(cells)))
		b.WriteString("\n")
	}

	b.WriteString(strings.Repeat(" ", axisWidth+1))
	b.WriteString(mutedStyle.Render("└" + strings.Repeat("─", len(series)*step)))
	b.WriteString("\n")
	b.WriteString(strings.Repeat(" ", axisWidth+2))
	b.WriteString(mutedStyle.Render(series[0].Label + strings.Repeat(" ", max(1, len(series)*step-len(series[0].Label)-len(series[len(series)-1].Label))) + series[len(series)-1].Label))
	return b.String()
}

// priceRow maps price into [0, height) with row 0 at the top.
func priceRow(price, lo, hi float64, height int) int {
	if hi <= lo {
		return height - 1
	}
	frac := (price - lo) / (hi - lo)
	row := int(math.Round(float64(height-1) * (1 - frac)))
	if row < 0 {
		row = 0
	}
	if row > height-1 {
		row = height - 1
	}
	return row
}

func formatAxis(v float64) string {
	return fmt.Sprintf("%.0f", v)
}
