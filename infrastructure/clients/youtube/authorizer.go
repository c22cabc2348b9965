package youtube

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"youtube-auto-post/infrastructure/logger"

	"golang.org/x/oauth2"
)

// LocalServerAuthorizer runs the installed-app flow: it listens on a
// loopback port, publishes the consent URL and waits for the redirect.
type LocalServerAuthorizer struct {
	port      int
	timeout   time.Duration
	onAuthURL func(authURL string)
}

type AuthorizerOption func(*LocalServerAuthorizer)

// WithAuthURLHandler replaces the default behaviour of logging the consent URL.
func WithAuthURLHandler(fn func(authURL string)) AuthorizerOption {
	return func(a *LocalServerAuthorizer) { a.onAuthURL = fn }
}

// NewLocalServerAuthorizer listens on 127.0.0.1:port; port 0 picks a free one.
func NewLocalServerAuthorizer(port int, timeout time.Duration, opts ...AuthorizerOption) *LocalServerAuthorizer {
	a := &LocalServerAuthorizer{
		port:    port,
		timeout: timeout,
		onAuthURL: func(authURL string) {
			logger.GetLogger().WithField("auth_url", authURL).Warn("YouTube authorization required, open this URL in a browser")
		},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *LocalServerAuthorizer) Authorize(ctx context.Context, cfg *oauth2.Config) (*oauth2.Token, error) {
	ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", a.port))
	if err != nil {
		return nil, fmt.Errorf("failed to start local auth listener: %w", err)
	}
	local := *cfg
	local.RedirectURL = fmt.Sprintf("http://%s/", ln.Addr().String())
	state, err := randomState()
	if err != nil {
		_ = ln.Close()
		return nil, err
	}

	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)
	srv := &http.Server{
		ReadHeaderTimeout: 10 * time.Second,
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			if e := q.Get("error"); e != "" {
				http.Error(w, "Authorization failed: "+e, http.StatusBadRequest)
				select {
				case errCh <- fmt.Errorf("authorization denied: %s", e):
				default:
				}
				return
			}
			if q.Get("state") != state {
				http.Error(w, "state mismatch", http.StatusBadRequest)
				return
			}
			code := q.Get("code")
			if code == "" {
				http.Error(w, "authorization code missing", http.StatusBadRequest)
				return
			}
			_, _ = fmt.Fprint(w, "The authentication flow has completed. You may close this window.")
			select {
			case codeCh <- code:
			default:
			}
		}),
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.GetLogger().WithField("error", err).Error("local auth server stopped")
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	a.onAuthURL(local.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce))

	select {
	case code := <-codeCh:
		tok, err := local.Exchange(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("failed to exchange code for token: %w", err)
		}
		return tok, nil
	case err := <-errCh:
		return nil, err
	case <-ctx.Done():
		return nil, fmt.Errorf("waiting for authorization: %w", ctx.Err())
	}
}

func randomState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
