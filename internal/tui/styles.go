package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/evtb/evtb/pkg/domain"
	"github.com/evtb/evtb/pkg/token"
)

// Shimmer animation for the logo.
type shimmerTickMsg time.Time

func shimmerTickCmd() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return shimmerTickMsg(t)
	})
}

// renderShimmerLogo renders "E V T B" as a wave running from deep teal
// (#0f3a3a) to electric cyan (#22d3ee).
func renderShimmerLogo(frame int) string {
	const text = "EVTB"
	n := len(text)
	t := float64(frame)

	var out strings.Builder
	for i := 0; i < n; i++ {
		x := float64(i) / float64(n-1)
		phase := t*0.1 - x*3.0 + math.Sin(t*0.023)*2.0

		b := math.Pow(math.Sin(phase)*0.5+0.5, 1.3)
		b = b*0.75 + math.Sin(t*0.035)*0.12 + 0.18
		if b > 1.0 {
			b = 1.0
		} else if b < 0.05 {
			b = 0.05
		}

		r := clampByte(15 + b*(34-15))
		g := clampByte(58 + b*(211-58))
		bl := clampByte(58 + b*(238-58))
		color := fmt.Sprintf("#%02X%02X%02X", r, g, bl)

		out.WriteString(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(color)).Render(string(text[i])))
		if i < n-1 {
			out.WriteString("  ")
		}
	}
	return out.String()
}

func clampByte(v float64) int {
	if v > 255 {
		return 255
	}
	if v < 0 {
		return 0
	}
	return int(v)
}

var (
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e4e4ec")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#c0c4d0"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	helpLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	accentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#22d3ee"))

	searchStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#22d3ee")).
			Bold(true)

	sectionHeaderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#d4a844")).
				Bold(true)

	unreadDotStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#34d474"))

	priceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f59e0b"))

	favoriteStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f87171"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#b45555"))

	selectedRowBg = lipgloss.NewStyle().Background(lipgloss.Color("#1e1e2a"))

	statusColors = map[domain.ProductStatus]lipgloss.Color{
		domain.StatusPending:  lipgloss.Color("#d4a844"),
		domain.StatusApproved: lipgloss.Color("#34d474"),
		domain.StatusRejected: lipgloss.Color("#e06060"),
		domain.StatusSold:     lipgloss.Color("#60a0e0"),
	}

	// Notification type colors
	typeColors = map[string]lipgloss.Color{
		domain.NotifyPostCreated:        lipgloss.Color("#d4a844"),
		domain.NotifyPostApproved:       lipgloss.Color("#34d474"),
		domain.NotifyPostRejected:       lipgloss.Color("#e06060"),
		domain.NotifyPostSold:           lipgloss.Color("#60a0e0"),
		domain.NotifyMessageReceived:    lipgloss.Color("#c084e0"),
		domain.NotifySystemAnnouncement: lipgloss.Color("#22d3ee"),
	}
)

// StatusStyle returns a bold style colored for a listing status.
func StatusStyle(s domain.ProductStatus) lipgloss.Style {
	if c, ok := statusColors[s]; ok {
		return lipgloss.NewStyle().Foreground(c).Bold(true)
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("#606878")).Bold(true)
}

func typeStyle(notificationType string) lipgloss.Style {
	if c, ok := typeColors[notificationType]; ok {
		return lipgloss.NewStyle().Foreground(c)
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("#8890a0"))
}

// TokenBadge renders the token state for headers and `evtb whoami`.
func TokenBadge(st token.Status, now time.Time) string {
	switch {
	case st.Demo:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#c084e0")).Render("demo")
	case !st.Present:
		return dimStyle.Render("signed out")
	case st.State == token.Expired:
		return errorStyle.Render("token expired")
	case st.State == token.ExpiringSoon:
		return priceStyle.Render(fmt.Sprintf("token expires in %s", st.Remaining(now).Round(time.Second)))
	case st.ExpiresAt.IsZero():
		return unreadDotStyle.Render("token valid")
	default:
		return unreadDotStyle.Render(fmt.Sprintf("token valid %s", st.Remaining(now).Round(time.Minute)))
	}
}

// helpEntry renders a single "key label" pair for help bars.
func helpEntry(key, label string) string {
	return helpKeyStyle.Render(key) + " " + helpLabelStyle.Render(label)
}

// helpItem is a selectable link in the help overlay.
type helpItem struct {
	label string
	path  string
}

var helpItems = []helpItem{
	{"API docs", "/swagger"},
	{"Health", "/api/Health"},
	{"Marketplace", "/"},
}

// helpView renders the help overlay with a cursor over the links.
func helpView(baseURL string, cursor int) string {
	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#22d3ee")).
		Bold(true).
		Render("E V T B")
	tagline := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Italic(true).
		Render("EV and battery trading, from the terminal.")

	cmdStyle := lipgloss.NewStyle().Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	sectionStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true)
	linkStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#22d3ee"))

	commands := []struct{ cmd, desc string }{
		{"evtb login", "Sign in with email, Google or Facebook"},
		{"evtb listings", "Browse approved listings"},
		{"evtb notify", "Show your notifications"},
		{"evtb token", "Inspect or refresh the session token"},
		{"evtb logout", "Clear your session"},
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n  %s\n  %s\n\n", title, tagline)
	fmt.Fprintf(&b, "  %s\n", sectionStyle.Render("Commands"))
	for _, c := range commands {
		fmt.Fprintf(&b, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-16s", c.cmd)), descStyle.Render(c.desc))
	}

	fmt.Fprintf(&b, "\n  %s\n", sectionStyle.Render("Links (enter to open)"))
	for i, item := range helpItems {
		label := cmdStyle.Render(fmt.Sprintf("%-16s", item.label))
		prefix := "    "
		if i == cursor {
			label = linkStyle.Render(fmt.Sprintf("%-16s", item.label))
			prefix = "  > "
		}
		fmt.Fprintf(&b, "%s%s  %s\n", prefix, label, descStyle.Render(baseURL+item.path))
	}
	return b.String()
}
