package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"golang.org/x/oauth2"

	"github.com/wonny/schloss/internal/contracts"
	"github.com/wonny/schloss/pkg/logger"
)

// BrowserOpener presents the consent URL to the user
type BrowserOpener func(authURL string) error

// PrintURL returns an opener that writes the URL to w
func PrintURL(w io.Writer) BrowserOpener {
	return func(authURL string) error {
		_, err := fmt.Fprintf(w, "Open this URL in your browser to authorize:\n\n%s\n\n", authURL)
		return err
	}
}

type callbackResult struct {
	code string
	err  error
}

// Authorize runs the installed-app consent flow with a loopback redirect on
// a random port and returns the exchanged token.
func Authorize(ctx context.Context, conf *oauth2.Config, open BrowserOpener, log *logger.Logger) (*oauth2.Token, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("%w: listen for redirect: %v", contracts.ErrAuth, err)
	}

	flow := *conf
	flow.RedirectURL = fmt.Sprintf("http://%s/", ln.Addr().String())

	state := uuid.NewString()
	verifier := oauth2.GenerateVerifier()
	authURL := flow.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.S256ChallengeOption(verifier))

	results := make(chan callbackResult, 1)
	router := mux.NewRouter()
	router.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		var res callbackResult
		switch {
		case q.Get("state") != state:
			res.err = errors.New("state mismatch in redirect")
		case q.Get("error") != "":
			res.err = fmt.Errorf("authorization denied: %s", q.Get("error"))
		case q.Get("code") == "":
			res.err = errors.New("redirect carried no code")
		default:
			res.code = q.Get("code")
		}

		if res.err != nil {
			http.Error(w, res.err.Error(), http.StatusBadRequest)
		} else {
			fmt.Fprintln(w, "Authorization complete. You may close this window.")
		}

		select {
		case results <- res:
		default:
		}
	}).Methods(http.MethodGet)

	srv := &http.Server{Handler: router, ReadHeaderTimeout: 10 * time.Second}
	go srv.Serve(ln)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.WithField("redirect", flow.RedirectURL).Info("Waiting for OAuth2 authorization")
	if err := open(authURL); err != nil {
		return nil, fmt.Errorf("%w: present consent url: %v", contracts.ErrAuth, err)
	}

	var res callbackResult
	select {
	case res = <-results:
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", contracts.ErrAuth, ctx.Err())
	}
	if res.err != nil {
		return nil, fmt.Errorf("%w: %v", contracts.ErrAuth, res.err)
	}

	tok, err := flow.Exchange(ctx, res.code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("%w: exchange code: %v", contracts.ErrAuth, err)
	}

	log.Info("OAuth2 authorization complete")
	return tok, nil
}
