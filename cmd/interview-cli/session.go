package main

import (
	"errors"
	"flag"
	"fmt"

	"github.com/target/interview-ui/internal/adapters/filestore"
	"github.com/target/interview-ui/internal/backend"
	"github.com/target/interview-ui/internal/bootstrap"
	domainauth "github.com/target/interview-ui/internal/domain/auth"
	"github.com/target/interview-ui/internal/service"
)

var errNotSignedIn = errors.New("not signed in; run `interview-cli login` first")

// commonOptions are accepted by every command.
type commonOptions struct {
	TokenFile string
	Query     string
}

func newFlagSet(name string, opts *commonOptions) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.StringVar(&opts.TokenFile, "token-file", "", "token file (default <user config dir>/interview-ui/token)")
	fs.StringVar(&opts.Query, "query", "", "JMESPath expression applied to the JSON output")
	return fs
}

// cliSession is a restored session plus the clients bound to it.
type cliSession struct {
	manager *service.SessionManager
	store   *filestore.Store
	client  *backend.Client
	guard   service.RouteGuard
}

// openSession restores the session persisted in the token file.
func openSession(cmdCtx *commandContext, opts commonOptions) (*cliSession, error) {
	path := opts.TokenFile
	if path == "" {
		p, err := filestore.DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	store := filestore.New(path)

	decoder, err := bootstrap.BuildDecoder(cmdCtx.Ctx, cmdCtx.Config.Auth)
	if err != nil {
		return nil, err
	}
	client, err := backend.NewClient(backend.Options{
		BaseURL:   cmdCtx.Config.Backend.BaseURL,
		UserAgent: cmdCtx.Config.Backend.UserAgent,
		Timeout:   cmdCtx.Config.Backend.Timeout,
		Logger:    cmdCtx.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("backend client: %w", err)
	}

	manager := service.NewSessionManager(service.SessionManagerOptions{
		Store:   store,
		Decoder: decoder,
		Clock:   cmdCtx.Clock,
		Logger:  cmdCtx.Logger,
	})
	manager.Restore(cmdCtx.Ctx)

	return &cliSession{
		manager: manager,
		store:   store,
		client:  client,
		guard:   service.NewRouteGuard(cmdCtx.Config.Auth.SignInPath, cmdCtx.Config.Auth.RedirectParam),
	}, nil
}

// require gates a protected command the way the route guard gates a page.
func (s *cliSession) require() (domainauth.Session, error) {
	if d := s.guard.Decide(s.manager.State(), nil); !d.Allow {
		return domainauth.Session{}, errNotSignedIn
	}
	sess, _ := s.manager.Current()
	return sess, nil
}

// api is the backend bound to the session's bearer token.
func (s *cliSession) api() *backend.API {
	return s.client.For(s.manager)
}
