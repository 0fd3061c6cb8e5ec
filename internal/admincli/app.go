// Package admincli implements the authadmin maintenance commands: creating an
// administrator, hashing a password, issuing email links, purging expired
// tokens and probing a running server.
package admincli

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/medmind-auth/internal/client"
	"github.com/dmitrijs2005/medmind-auth/internal/logging"
	"github.com/dmitrijs2005/medmind-auth/internal/server"
	"github.com/dmitrijs2005/medmind-auth/internal/server/auth"
	"github.com/dmitrijs2005/medmind-auth/internal/server/config"
	"github.com/dmitrijs2005/medmind-auth/internal/server/mailer"
	"github.com/dmitrijs2005/medmind-auth/internal/server/models"
	"github.com/dmitrijs2005/medmind-auth/internal/server/services"
)

const usage = `usage: authadmin <command> [flags]

commands:
  create-admin   -email E [-name N] [-username U]   create a verified admin (password prompted)
  hash-password                                     print a bcrypt digest of a prompted password
  issue-link     -email E -purpose verification|reset
                                                    mint an email token and print its link
  purge-tokens                                      delete expired email tokens
  ping           [-addr host:port]                  check that a server answers
  whoami         -user U [-addr host:port]          log in and print the session (password prompted)
`

var errUsage = errors.New("invalid usage")

type App struct {
	config *config.Config
	logger logging.Logger
	in     *bufio.Reader
	out    io.Writer

	openStorage func(ctx context.Context, dsn string) (*server.Storage, error)
	dial        func(addr string) (*client.GRPCClient, error)
}

func NewApp(c *config.Config, in io.Reader, out io.Writer) *App {
	return &App{
		config:      c,
		logger:      logging.New(os.Stderr, c.LogLevel, "text"),
		in:          bufio.NewReader(in),
		out:         out,
		openStorage: server.OpenStorage,
		dial: func(addr string) (*client.GRPCClient, error) {
			return client.New(addr)
		},
	}
}

// Run executes the command named by args[0] and returns the process exit code.
func (a *App) Run(ctx context.Context, args []string) int {
	if len(args) == 0 {
		fmt.Fprint(a.out, usage)
		return 2
	}

	var err error
	switch args[0] {
	case "create-admin":
		err = a.createAdmin(ctx, args[1:])
	case "hash-password":
		err = a.hashPassword()
	case "issue-link":
		err = a.issueLink(ctx, args[1:])
	case "purge-tokens":
		err = a.purgeTokens(ctx)
	case "ping":
		err = a.ping(ctx, args[1:])
	case "whoami":
		err = a.whoami(ctx, args[1:])
	case "help", "-h", "--help":
		fmt.Fprint(a.out, usage)
		return 0
	default:
		fmt.Fprintf(a.out, "unknown command %q\n\n%s", args[0], usage)
		return 2
	}

	if err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(a.out, usage)
			return 2
		}
		fmt.Fprintf(a.out, "error: %v\n", err)
		return 1
	}
	return 0
}

func (a *App) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.out)
	return fs
}

// withStorage opens the configured store, runs fn and closes the store.
func (a *App) withStorage(ctx context.Context, fn func(*server.Storage) error) error {
	st, err := a.openStorage(ctx, a.config.DatabaseDSN)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(st)
}

func (a *App) createAdmin(ctx context.Context, args []string) error {
	fs := a.flagSet("create-admin")
	email := fs.String("email", "", "admin email")
	name := fs.String("name", "Administrador", "display name")
	username := fs.String("username", "", "optional username")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if strings.TrimSpace(*email) == "" {
		return errUsage
	}

	password, err := GetPassword(a.in, "Password for "+*email, a.out)
	if err != nil {
		return err
	}
	if len(password) < a.config.MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", a.config.MinPasswordLength)
	}

	return a.withStorage(ctx, func(st *server.Storage) error {
		created, err := services.EnsureBootstrapAdmin(ctx, st.Tx, st.Repos, auth.NewPasswordHasher(a.config.BcryptCost),
			config.BootstrapAdmin{Name: *name, Username: *username, Email: *email, Password: password}, a.logger)
		if err != nil {
			return err
		}
		if !created {
			return fmt.Errorf("an account with email %s already exists", *email)
		}
		fmt.Fprintf(a.out, "admin %s created\n", *email)
		return nil
	})
}

func (a *App) hashPassword() error {
	password, err := GetPassword(a.in, "Password", a.out)
	if err != nil {
		return err
	}
	digest, err := auth.NewPasswordHasher(a.config.BcryptCost).Hash(password)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, digest)
	return nil
}

func (a *App) issueLink(ctx context.Context, args []string) error {
	fs := a.flagSet("issue-link")
	email := fs.String("email", "", "account email")
	purpose := fs.String("purpose", "verification", "verification, reset or a full purpose name")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if strings.TrimSpace(*email) == "" {
		return errUsage
	}

	name := *purpose
	switch name {
	case "verification":
		name = models.PurposeEmailVerification.String()
	case "reset":
		name = models.PurposePasswordReset.String()
	}
	p, err := models.ParsePurpose(name)
	if err != nil {
		return errUsage
	}
	ttl := a.config.ResetTokenTTL
	if p == models.PurposeEmailVerification {
		ttl = a.config.VerificationTokenTTL
	}

	return a.withStorage(ctx, func(st *server.Storage) error {
		account, err := st.Repos.Accounts(st.Tx.DB()).GetByEmail(ctx, *email)
		if err != nil {
			return fmt.Errorf("lookup %s: %w", *email, err)
		}

		tokens := services.NewEmailTokenStore(st.Tx, st.Repos, nil, a.logger)
		token, err := tokens.Issue(ctx, account.ID, p, ttl)
		if err != nil {
			return err
		}

		composer := mailer.NewComposer("MedMind", a.config.BaseURL, a.config.VerificationTokenTTL, a.config.ResetTokenTTL)
		link := composer.VerificationLink(token)
		if p == models.PurposePasswordReset {
			link = composer.RecoveryLink(token)
		}
		fmt.Fprintln(a.out, link)
		return nil
	})
}

func (a *App) purgeTokens(ctx context.Context) error {
	return a.withStorage(ctx, func(st *server.Storage) error {
		n, err := services.NewEmailTokenStore(st.Tx, st.Repos, nil, a.logger).PurgeExpired(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "%d expired tokens removed\n", n)
		return nil
	})
}

func (a *App) remote(addr string) (*client.GRPCClient, error) {
	if addr == "" {
		addr = a.config.EndpointAddrGRPC
		if strings.HasPrefix(addr, ":") {
			addr = "localhost" + addr
		}
	}
	return a.dial(addr)
}

func (a *App) ping(ctx context.Context, args []string) error {
	fs := a.flagSet("ping")
	addr := fs.String("addr", "", "server address")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	c, err := a.remote(*addr)
	if err != nil {
		return err
	}
	defer c.Close()

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := c.Ping(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "OK")
	return nil
}

func (a *App) whoami(ctx context.Context, args []string) error {
	fs := a.flagSet("whoami")
	addr := fs.String("addr", "", "server address")
	user := fs.String("user", "", "username or email")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if *user == "" {
		return errUsage
	}

	password, err := GetPassword(a.in, "Password", a.out)
	if err != nil {
		return err
	}

	c, err := a.remote(*addr)
	if err != nil {
		return err
	}
	defer c.Close()

	if _, err := c.Login(ctx, *user, password); err != nil {
		return err
	}
	me, err := c.Me(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "id=%d email=%s role=%s expires=%s\n", me.AccountID, me.Email, me.Role, me.ExpiresAt.Format(time.RFC3339))
	return nil
}
