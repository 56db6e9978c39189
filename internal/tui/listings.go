package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/evtb/evtb/pkg/domain"
)

// Market is the part of the API the listings view uses.
// *client.Client satisfies it.
type Market interface {
	ProductsByStatus(ctx context.Context, status domain.ProductStatus) ([]domain.Product, error)
	SearchProducts(ctx context.Context, query string) ([]domain.Product, error)
	UserFavorites(ctx context.Context, userID int64) ([]domain.Favorite, error)
	ToggleFavorite(ctx context.Context, userID, productID int64) (bool, error)
}

type listingsModel struct {
	market    Market
	userID    int64
	products  []domain.Product
	favorites map[int64]bool
	cursor    int
	search    string
	editing   bool
	loading   bool
	err       error
	statusMsg string
	width     int
	height    int
}

type listingsLoadedMsg struct {
	products  []domain.Product
	favorites map[int64]bool
	err       error
}

type favoriteResultMsg struct {
	productID int64
	added     bool
	err       error
}

func newListingsModel(market Market, userID int64) listingsModel {
	return listingsModel{market: market, userID: userID, loading: true, favorites: map[int64]bool{}}
}

func (m listingsModel) Init() tea.Cmd {
	return m.load()
}

func (m listingsModel) load() tea.Cmd {
	market, userID, query := m.market, m.userID, m.search
	if market == nil {
		return nil
	}
	return func() tea.Msg {
		ctx := context.Background()
		var (
			products []domain.Product
			err      error
		)
		if query != "" {
			products, err = market.SearchProducts(ctx, query)
		} else {
			products, err = market.ProductsByStatus(ctx, domain.StatusApproved)
		}
		if err != nil {
			return listingsLoadedMsg{err: err}
		}
		favs := map[int64]bool{}
		if userID != 0 {
			// Favorites are decoration; a failure leaves them unmarked.
			if list, err := market.UserFavorites(ctx, userID); err == nil {
				for _, f := range list {
					favs[f.ProductID] = true
				}
			}
		}
		return listingsLoadedMsg{products: products, favorites: favs}
	}
}

func (m listingsModel) Update(msg tea.Msg) (listingsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case listingsLoadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err != nil {
			return m, nil
		}
		m.products = msg.products
		m.favorites = msg.favorites
		if m.cursor >= len(m.products) {
			m.cursor = 0
		}
		return m, nil

	case favoriteResultMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("favorite failed: %v", msg.err)
			return m, nil
		}
		m.favorites[msg.productID] = msg.added
		if msg.added {
			m.statusMsg = "added to favorites"
		} else {
			m.statusMsg = "removed from favorites"
		}
		return m, nil

	case copyResultMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("copy failed: %v", msg.err)
		} else {
			m.statusMsg = "copied!"
		}
		return m, nil

	case tea.KeyMsg:
		m.statusMsg = ""
		if m.editing {
			return m.updateSearch(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m listingsModel) updateSearch(msg tea.KeyMsg) (listingsModel, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.editing = false
		m.loading = true
		m.cursor = 0
		return m, m.load()
	case "esc":
		m.editing = false
		m.search = ""
		m.loading = true
		return m, m.load()
	default:
		m.search = editRune(m.search, msg.String())
	}
	return m, nil
}

func (m listingsModel) updateList(msg tea.KeyMsg) (listingsModel, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if m.cursor < len(m.products)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "/":
		m.editing = true
		m.search = ""
	case "f":
		if m.userID == 0 {
			m.statusMsg = "sign in to save favorites -- run: evtb login"
			return m, nil
		}
		if p, ok := m.selected(); ok {
			market, userID, productID := m.market, m.userID, p.ID
			return m, func() tea.Msg {
				added, err := market.ToggleFavorite(context.Background(), userID, productID)
				return favoriteResultMsg{productID: productID, added: added, err: err}
			}
		}
	case "c":
		if p, ok := m.selected(); ok {
			id := strconv.FormatInt(p.ID, 10)
			return m, func() tea.Msg {
				return copyResultMsg{err: clipboard.WriteAll(id)}
			}
		}
	case "r":
		m.loading = true
		return m, m.load()
	}
	return m, nil
}

func (m listingsModel) selected() (domain.Product, bool) {
	if m.cursor < 0 || m.cursor >= len(m.products) {
		return domain.Product{}, false
	}
	return m.products[m.cursor], true
}

func (m listingsModel) helpKeys() string {
	if m.editing {
		return helpEntry("enter", "search") + "  " + helpEntry("esc", "clear")
	}
	return helpEntry("j/k", "nav") + "  " + helpEntry("/", "search") + "  " + helpEntry("f", "favorite") + "  " +
		helpEntry("c", "copy id") + "  " + helpEntry("r", "reload")
}

func (m listingsModel) View() string {
	var b strings.Builder
	b.WriteString(" " + sectionHeaderStyle.Render("LISTINGS") + "  ")
	switch {
	case m.editing:
		b.WriteString(searchStyle.Render("/ " + m.search + "█"))
	case m.search != "":
		b.WriteString(searchStyle.Render("/ " + m.search))
	default:
		b.WriteString(dimStyle.Render("/ search..."))
	}
	b.WriteString("\n\n")

	switch {
	case m.loading:
		b.WriteString(" " + dimStyle.Render("loading...") + "\n")
		return b.String()
	case m.err != nil:
		b.WriteString(" " + errorStyle.Render("error: "+m.err.Error()) + "\n")
		return b.String()
	case len(m.products) == 0:
		b.WriteString(" " + dimStyle.Render("no listings found") + "\n")
		return b.String()
	}

	width := m.width
	if width <= 0 {
		width = 80
	}
	for i, p := range m.products {
		heart := "  "
		if m.favorites[p.ID] {
			heart = favoriteStyle.Render("♥") + " "
		}
		title := truncStr(oneLine(p.Title), max(width-36, 10))
		price := priceStyle.Render(FormatVND(p.Price))
		kind := metaStyle.Render(p.ProductType)

		var line string
		if i == m.cursor {
			line = selectedRowBg.Render(" " + accentStyle.Render(">") + " " + heart + selectedStyle.Render(title) + "  " + price + "  " + kind)
		} else {
			line = "   " + heart + normalStyle.Render(title) + "  " + price + "  " + kind
		}
		b.WriteString(line + "\n")

		if i == m.cursor {
			var meta []string
			if p.Brand != "" || p.Model != "" {
				meta = append(meta, strings.TrimSpace(p.Brand+" "+p.Model))
			}
			if p.Year > 0 {
				meta = append(meta, strconv.Itoa(p.Year))
			}
			if p.BatteryCapacity > 0 {
				meta = append(meta, fmt.Sprintf("%.1f kWh", p.BatteryCapacity))
			}
			if p.Condition != "" {
				meta = append(meta, p.Condition)
			}
			meta = append(meta, StatusStyle(p.NormalizedStatus()).Render(string(p.NormalizedStatus())))
			b.WriteString("     " + dimStyle.Render(strings.Join(meta, " · ")) + "\n")
		}
	}

	if m.statusMsg != "" {
		b.WriteString("\n " + accentStyle.Render(m.statusMsg) + "\n")
	}
	return b.String()
}
