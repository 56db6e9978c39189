package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/x/term"

	"github.com/evtb/evtb/internal/browser"
	"github.com/evtb/evtb/pkg/client"
	"github.com/evtb/evtb/pkg/session"
)

const oauthTimeout = 2 * time.Minute

func (a *app) runLogin(ctx context.Context, args []string) error {
	if len(args) > 0 {
		switch args[0] {
		case "--google":
			return a.runOAuth(ctx, client.ProviderGoogle)
		case "--facebook":
			return a.runOAuth(ctx, client.ProviderFacebook)
		default:
			return fmt.Errorf("unknown login option %q (use --google or --facebook)", args[0])
		}
	}

	email, err := a.prompt("Email: ")
	if err != nil {
		return err
	}
	password, err := a.readPassword("Password: ")
	if err != nil {
		return err
	}
	if email == "" || password == "" {
		return fmt.Errorf("email and password are required")
	}

	u, err := a.sess.SignIn(ctx, email, password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Signed in as %s\n", u.DisplayName())
	return nil
}

func (a *app) runRegister(ctx context.Context) error {
	var req session.SignUpRequest
	var err error
	if req.FullName, err = a.prompt("Full name: "); err != nil {
		return err
	}
	if req.Email, err = a.prompt("Email: "); err != nil {
		return err
	}
	if req.Phone, err = a.prompt("Phone (optional): "); err != nil {
		return err
	}
	if req.Password, err = a.readPassword("Password: "); err != nil {
		return err
	}

	u, err := a.sess.SignUp(ctx, req)
	if err != nil {
		if client.IsConflict(err) {
			return fmt.Errorf("an account with that email already exists")
		}
		return err
	}
	if a.sess.User() != nil {
		fmt.Fprintf(a.out, "Welcome, %s. You are signed in.\n", u.DisplayName())
		return nil
	}
	fmt.Fprintf(a.out, "Account created for %s. Sign in with: evtb login\n", u.Email)
	return nil
}

// readPassword reads without echo when stdin is a terminal.
func (a *app) readPassword(label string) (string, error) {
	if f, ok := a.stdin.(*os.File); ok && term.IsTerminal(f.Fd()) {
		fmt.Fprint(a.out, label)
		b, err := term.ReadPassword(f.Fd())
		fmt.Fprintln(a.out)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}
	return a.prompt(label)
}

func (a *app) runLogout() error {
	if a.sess.User() == nil {
		fmt.Fprintln(a.out, "Already logged out.")
		return nil
	}
	if err := a.sess.SignOut(); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}

// runOAuth sends the browser to the provider through the backend, which
// redirects back to a short-lived localhost listener with the token.
func (a *app) runOAuth(ctx context.Context, provider string) error {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("start callback listener: %w", err)
	}
	defer listener.Close() //nolint:errcheck

	stateBytes := make([]byte, 16)
	if _, err := rand.Read(stateBytes); err != nil {
		return fmt.Errorf("generate oauth state: %w", err)
	}
	state := hex.EncodeToString(stateBytes)

	tokenCh := make(chan string, 1)
	errCh := make(chan error, 1)
	mux := http.NewServeMux()
	mux.Handle("/callback", callbackHandler(state, tokenCh, errCh))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if srvErr := srv.Serve(listener); srvErr != nil && srvErr != http.ErrServerClosed {
			select {
			case errCh <- srvErr:
			default:
			}
		}
	}()
	defer func() {
		shutCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutCtx) //nolint:errcheck
	}()

	params := url.Values{}
	params.Set("state", state)
	returnURL := fmt.Sprintf("http://%s/callback?%s", listener.Addr().String(), params.Encode())
	loginURL, err := a.api.OAuthURL(provider, returnURL)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Opening browser to sign in with %s...\n", provider)
	if err := browser.Open(loginURL); err != nil {
		fmt.Fprintf(a.out, "Could not open browser. Visit this URL manually:\n  %s\n", loginURL)
	}

	select {
	case tok := <-tokenCh:
		u, err := a.sess.AdoptToken(ctx, tok)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Signed in as %s\n", u.DisplayName())
		return nil
	case err := <-errCh:
		return fmt.Errorf("oauth callback: %w", err)
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(oauthTimeout):
		return fmt.Errorf("login timed out, no callback received within %s", oauthTimeout)
	}
}

// callbackHandler accepts exactly one redirect carrying the expected state
// and a token query parameter.
func callbackHandler(state string, tokenCh chan<- string, errCh chan<- error) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("state") != state {
			http.Error(w, "invalid state", http.StatusForbidden)
			trySend(errCh, fmt.Errorf("callback state mismatch"))
			return
		}
		if msg := q.Get("error"); msg != "" {
			http.Error(w, "sign in failed", http.StatusBadRequest)
			trySend(errCh, fmt.Errorf("provider returned error: %s", msg))
			return
		}
		tok := strings.TrimSpace(q.Get("token"))
		if tok == "" {
			http.Error(w, "missing token", http.StatusBadRequest)
			trySend(errCh, fmt.Errorf("callback received without token"))
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, callbackHTML) //nolint:errcheck
		select {
		case tokenCh <- tok:
		default:
		}
	})
}

func trySend(ch chan<- error, err error) {
	select {
	case ch <- err:
	default:
	}
}

const callbackHTML = `<!DOCTYPE html>
<html lang="vi">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width,initial-scale=1">
<title>EVTB</title>
<style>
*{margin:0;padding:0;box-sizing:border-box}
body{
  background:#0a0a10;color:#e4e4ec;
  font-family:'SF Mono','Consolas',monospace;
  height:100vh;display:flex;align-items:center;justify-content:center;
}
.card{text-align:center}
.logo{font-size:32px;font-weight:700;letter-spacing:12px;margin-bottom:24px;color:#22d3ee}
.check{
  width:48px;height:48px;margin:0 auto 20px;
  border:2px solid #34d474;border-radius:50%;
  display:flex;align-items:center;justify-content:center;
}
.check svg{width:24px;height:24px}
.msg{font-size:14px;color:#34d474;font-weight:600;margin-bottom:8px}
.sub{font-size:12px;color:#505868}
</style>
</head>
<body>
<div class="card">
  <div class="logo">EVTB</div>
  <div class="check">
    <svg viewBox="0 0 24 24" fill="none" stroke="#34d474" stroke-width="2.5" stroke-linecap="round" stroke-linejoin="round">
      <polyline points="20 6 9 17 4 12"/>
    </svg>
  </div>
  <div class="msg">signed in</div>
  <div class="sub">return to your terminal</div>
</div>
</body>
</html>`
