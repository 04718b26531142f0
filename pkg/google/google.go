package google

import (
	"os"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// refreshSkew refreshes the cached token slightly before its expiry so
// dispatch calls never read an about-to-expire credential.
const refreshSkew = 30 * time.Second

type ItfGoogle interface {
	// Credentials returns the current bearer credential snapshot, refreshing
	// it first when expired. Refresh is serialized; concurrent readers block
	// briefly instead of using a stale token.
	Credentials(ctx context.Context) (*oauth2.Token, error)

	// TokenSource exposes the provider as an oauth2.TokenSource for Google
	// API clients.
	TokenSource(ctx context.Context) oauth2.TokenSource

	GetConfig() *oauth2.Config
}

type googleProvider struct {
	config *oauth2.Config
	log    *logrus.Logger

	mu    sync.Mutex
	token *oauth2.Token
}

func New(logger *logrus.Logger) ItfGoogle {
	scopes := strings.Fields(os.Getenv("GOOGLE_OAUTH_SCOPES"))
	if len(scopes) == 0 {
		scopes = []string{
			"https://www.googleapis.com/auth/spreadsheets",
		}
	}

	oauthConfig := &oauth2.Config{
		ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		RedirectURL:  os.Getenv("GOOGLE_REDIRECT_URL"),
		Scopes:       scopes,
		Endpoint:     google.Endpoint,
	}

	provider := &googleProvider{
		config: oauthConfig,
		log:    logger,
	}

	if refresh := os.Getenv("GOOGLE_REFRESH_TOKEN"); refresh != "" {
		provider.token = &oauth2.Token{RefreshToken: refresh}
	}

	return provider
}

func (g *googleProvider) Credentials(ctx context.Context) (*oauth2.Token, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.token != nil && g.token.AccessToken != "" && time.Until(g.token.Expiry) > refreshSkew {
		snapshot := *g.token
		return &snapshot, nil
	}

	g.log.Debug("Refreshing Google action credentials")

	token, err := g.config.TokenSource(ctx, g.token).Token()
	if err != nil {
		return nil, err
	}

	g.token = token
	snapshot := *token
	return &snapshot, nil
}

func (g *googleProvider) TokenSource(ctx context.Context) oauth2.TokenSource {
	return &providerTokenSource{provider: g, ctx: ctx}
}

func (g *googleProvider) GetConfig() *oauth2.Config {
	return g.config
}

type providerTokenSource struct {
	provider *googleProvider
	ctx      context.Context
}

func (s *providerTokenSource) Token() (*oauth2.Token, error) {
	return s.provider.Credentials(s.ctx)
}
