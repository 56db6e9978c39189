package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/evtb/evtb/internal/mockapi"
	"github.com/evtb/evtb/internal/notify"
	"github.com/evtb/evtb/internal/storage"
	"github.com/evtb/evtb/internal/tui"
	"github.com/evtb/evtb/pkg/client"
	"github.com/evtb/evtb/pkg/domain"
	"github.com/evtb/evtb/pkg/token"
)

const defaultMockAddr = "127.0.0.1:5055"

var (
	dim  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	bold = lipgloss.NewStyle().Bold(true)
)

func (a *app) runWhoami() error {
	u := a.sess.User()
	if u == nil {
		fmt.Fprintln(a.out, "Not signed in.")
		return nil
	}
	st, err := a.tokens.Status()
	if err != nil {
		return err
	}
	role := u.Role
	if role == "" {
		role = "member"
	}
	fmt.Fprintf(a.out, "%s  %s\n", bold.Render(u.DisplayName()), dim.Render(fmt.Sprintf("#%d %s %s", u.ID, u.Email, role)))
	fmt.Fprintln(a.out, tui.TokenBadge(st, time.Now()))
	return nil
}

func (a *app) runToken(ctx context.Context, args []string) error {
	sub := "status"
	if len(args) > 0 {
		sub = args[0]
	}
	switch sub {
	case "status":
		st, err := a.tokens.Status()
		if err != nil {
			return err
		}
		if !st.Present {
			fmt.Fprintln(a.out, "No token stored.")
			return nil
		}
		fmt.Fprintf(a.out, "state: %s\n", st.State)
		if !st.ExpiresAt.IsZero() {
			fmt.Fprintf(a.out, "expires: %s (%s left)\n",
				st.ExpiresAt.Local().Format(time.RFC3339), st.Remaining(time.Now()).Round(time.Second))
		}
		if st.Demo {
			fmt.Fprintln(a.out, "demo mode: expiry checks are skipped")
		}
		return nil
	case "refresh":
		if _, err := a.requireUser(); err != nil {
			return err
		}
		fresh, err := a.tokens.Refresh(ctx)
		if err != nil {
			if errors.Is(err, token.ErrNoRefreshToken) {
				return fmt.Errorf("this session has no refresh token, sign in again")
			}
			return err
		}
		fmt.Fprintf(a.out, "Token refreshed, valid until %s\n", token.ExpiresAt(fresh).Local().Format(time.RFC3339))
		return nil
	case "copy":
		tok, err := a.tokens.ValidToken(ctx)
		if err != nil {
			return err
		}
		if tok == "" {
			return fmt.Errorf("%w -- run: evtb login", errNoToken)
		}
		if err := clipboard.WriteAll(tok); err != nil {
			return fmt.Errorf("copy token: %w", err)
		}
		fmt.Fprintln(a.out, "Token copied to clipboard.")
		return nil
	default:
		return fmt.Errorf("unknown token command %q (use status, refresh or copy)", sub)
	}
}

var errNoToken = errors.New("no valid token")

func (a *app) runDemo(args []string) error {
	if len(args) == 0 {
		state := "off"
		if a.tokens.DemoMode() {
			state = "on"
		}
		fmt.Fprintf(a.out, "demo mode: %s\n", state)
		return nil
	}
	var on bool
	switch args[0] {
	case "on":
		on = true
	case "off":
	default:
		return fmt.Errorf("usage: evtb demo on|off")
	}
	if err := storage.SetDemoMode(a.store, on); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "demo mode: %s\n", args[0])
	if !on && a.cfg.DemoMode {
		fmt.Fprintln(a.out, "VITE_DEMO_MODE is set, so expiry checks stay off for this environment.")
	}
	return nil
}

func (a *app) runListings(ctx context.Context, args []string) error {
	sub := ""
	if len(args) > 0 {
		sub, args = args[0], args[1:]
	}
	switch sub {
	case "":
		products, err := a.api.ProductsByStatus(ctx, domain.StatusApproved)
		if err != nil {
			return err
		}
		a.printProducts(products)
		return nil
	case "mine":
		u, err := a.requireUser()
		if err != nil {
			return err
		}
		products, err := a.api.ProductsBySeller(ctx, u.ID)
		if err != nil {
			return err
		}
		a.printProducts(products)
		return nil
	case "pending":
		if err := a.requireAdmin(); err != nil {
			return err
		}
		products, err := a.api.ProductsByStatus(ctx, domain.StatusPending)
		if err != nil {
			return err
		}
		a.printProducts(products)
		return nil
	case "search":
		if len(args) == 0 {
			return fmt.Errorf("usage: evtb listings search QUERY")
		}
		products, err := a.api.SearchProducts(ctx, strings.Join(args, " "))
		if err != nil {
			return err
		}
		a.printProducts(products)
		return nil
	case "create":
		return a.createListing(ctx, args)
	case "approve":
		return a.moderate(ctx, args, true)
	case "reject":
		return a.moderate(ctx, args, false)
	case "verify":
		if _, err := a.requireUser(); err != nil {
			return err
		}
		id, err := parseID(args)
		if err != nil {
			return err
		}
		if err := a.api.RequestVerification(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Inspection requested for listing #%d.\n", id)
		return nil
	default:
		return fmt.Errorf("unknown listings command %q", sub)
	}
}

func (a *app) requireAdmin() error {
	if _, err := a.requireUser(); err != nil {
		return err
	}
	if !a.sess.IsAdmin() {
		return fmt.Errorf("this command needs an admin account")
	}
	return nil
}

func (a *app) printProducts(products []domain.Product) {
	if len(products) == 0 {
		fmt.Fprintln(a.out, dim.Render("No listings."))
		return
	}
	for _, p := range products {
		fmt.Fprintf(a.out, "%6d  %-40s  %16s  %s\n",
			p.ID, truncate(p.Title, 40), tui.FormatVND(p.Price),
			tui.StatusStyle(p.NormalizedStatus()).Render(string(p.NormalizedStatus())))
	}
}

func (a *app) createListing(ctx context.Context, imagePaths []string) error {
	u, err := a.requireUser()
	if err != nil {
		return err
	}

	req := client.CreateProductRequest{SellerID: u.ID}
	if req.Title, err = a.prompt("Title: "); err != nil {
		return err
	}
	if req.Description, err = a.prompt("Description: "); err != nil {
		return err
	}
	if req.ProductType, err = a.prompt("Type (vehicle/battery): "); err != nil {
		return err
	}
	req.ProductType = strings.ToLower(req.ProductType)
	price, err := a.prompt("Price (VND): ")
	if err != nil {
		return err
	}
	if req.Price, err = strconv.ParseFloat(strings.ReplaceAll(price, ".", ""), 64); err != nil {
		return fmt.Errorf("invalid price %q", price)
	}
	if req.Brand, err = a.prompt("Brand: "); err != nil {
		return err
	}
	if req.Model, err = a.prompt("Model: "); err != nil {
		return err
	}
	if year, err := a.prompt("Year (optional): "); err != nil {
		return err
	} else if year != "" {
		if req.Year, err = strconv.Atoi(year); err != nil {
			return fmt.Errorf("invalid year %q", year)
		}
	}
	if capacity, err := a.prompt("Battery capacity kWh (optional): "); err != nil {
		return err
	} else if capacity != "" {
		if req.BatteryCapacity, err = strconv.ParseFloat(capacity, 64); err != nil {
			return fmt.Errorf("invalid capacity %q", capacity)
		}
	}
	if req.Condition, err = a.prompt("Condition: "); err != nil {
		return err
	}

	images := make([]client.ImageFile, 0, len(imagePaths))
	for _, path := range imagePaths {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read image: %w", err)
		}
		images = append(images, client.ImageFile{Name: filepath.Base(path), Data: data})
	}

	p, err := a.api.CreateProduct(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Listing #%d created and waiting for review.\n", p.ID)

	if len(images) > 0 {
		n, err := a.api.UploadImages(ctx, p.ID, "product", images)
		if err != nil {
			a.logger.Warn("image upload failed", zap.Int64("product_id", p.ID), zap.Error(err))
			fmt.Fprintln(a.out, "Images could not be uploaded. The listing was kept without them.")
		} else {
			fmt.Fprintf(a.out, "Uploaded %d of %d images.\n", n, len(images))
		}
	}

	if !notify.NotifyPostCreated(ctx, a.notes, u.ID, p.Title) {
		a.logger.Warn("post created notification not delivered", zap.Int64("product_id", p.ID))
	}
	return nil
}

func (a *app) moderate(ctx context.Context, args []string, approve bool) error {
	if err := a.requireAdmin(); err != nil {
		return err
	}
	id, err := parseID(args)
	if err != nil {
		return err
	}
	p, err := a.api.GetProduct(ctx, id)
	if err != nil {
		return err
	}

	if approve {
		if err := a.api.ApproveProduct(ctx, id); err != nil {
			return err
		}
		notify.NotifyPostApproved(ctx, a.notes, p.SellerID, p.Title)
		fmt.Fprintf(a.out, "Listing #%d approved.\n", id)
		return nil
	}

	reason := strings.TrimSpace(strings.Join(args[1:], " "))
	if reason == "" {
		if reason, err = a.prompt("Reason: "); err != nil {
			return err
		}
	}
	if err := a.api.RejectProduct(ctx, id, reason); err != nil {
		return err
	}
	notify.NotifyPostRejected(ctx, a.notes, p.SellerID, p.Title)
	fmt.Fprintf(a.out, "Listing #%d rejected.\n", id)
	return nil
}

func (a *app) runFavorites(ctx context.Context, args []string) error {
	u, err := a.requireUser()
	if err != nil {
		return err
	}
	if len(args) > 0 {
		if args[0] != "toggle" {
			return fmt.Errorf("usage: evtb favorites [toggle ID]")
		}
		id, err := parseID(args[1:])
		if err != nil {
			return err
		}
		added, err := a.api.ToggleFavorite(ctx, u.ID, id)
		if err != nil {
			return err
		}
		if added {
			fmt.Fprintf(a.out, "Saved listing #%d.\n", id)
		} else {
			fmt.Fprintf(a.out, "Removed listing #%d from favorites.\n", id)
		}
		return nil
	}

	favs, err := a.api.UserFavorites(ctx, u.ID)
	if err != nil {
		return err
	}
	if len(favs) == 0 {
		fmt.Fprintln(a.out, dim.Render("No favorites yet."))
		return nil
	}
	for _, f := range favs {
		fmt.Fprintf(a.out, "listing #%d  %s\n", f.ProductID, dim.Render("saved "+f.CreatedAt.Local().Format("2006-01-02")))
	}
	return nil
}

func (a *app) runNotify(ctx context.Context, args []string) error {
	u, err := a.requireUser()
	if err != nil {
		return err
	}
	sub := ""
	if len(args) > 0 {
		sub = args[0]
	}
	switch sub {
	case "test":
		n, err := a.notes.Create(ctx, domain.NewNotification{
			UserID:  u.ID,
			Type:    domain.NotifyTest,
			Title:   "Test notification",
			Content: "If you can read this, notifications are working.",
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Created notification #%d.\n", n.ID)
		return nil
	case "read-all":
		n, err := a.notes.MarkAllAsRead(ctx, u.ID)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Marked %d notifications as read.\n", n)
		return nil
	}

	page := 1
	if sub != "" {
		if page, err = strconv.Atoi(sub); err != nil || page < 1 {
			return fmt.Errorf("unknown notify command %q", sub)
		}
	}
	res, err := a.notes.UserNotifications(ctx, u.ID, page, notify.DefaultPageSize)
	if err != nil {
		return err
	}
	unread, err := a.notes.UnreadCount(ctx, u.ID)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s  %s\n", bold.Render("Notifications"),
		dim.Render(fmt.Sprintf("%d unread, page %d/%d", unread, res.Page, max(res.TotalPages, 1))))
	for _, n := range res.Notifications {
		mark := " "
		if !n.IsRead {
			mark = "•"
		}
		fmt.Fprintf(a.out, "%s %4d  %s  %s\n", mark, n.ID, n.Title, dim.Render(n.Content))
	}
	return nil
}

func (a *app) runHealth(ctx context.Context) error {
	if err := a.api.Health(ctx); err != nil {
		return fmt.Errorf("%s is unhealthy: %w", a.cfg.APIBase, err)
	}
	fmt.Fprintf(a.out, "%s is healthy.\n", a.cfg.APIBase)
	return nil
}

func (a *app) runMockServer(ctx context.Context, args []string) error {
	addr := defaultMockAddr
	if len(args) > 0 {
		addr = args[0]
	}
	fmt.Fprintf(a.out, "Mock notification API on http://%s (ctrl+c to stop)\n", addr)
	return mockapi.New(notify.NewMemoryStore(), a.logger).ListenAndServe(ctx, addr)
}

func parseID(args []string) (int64, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("missing listing ID")
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(args[0], "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid ID %q", args[0])
	}
	return id, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
