// Package cli implements the gophauth command-line client.
package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/api"
	"github.com/dmitrijs2005/gophauth/internal/client/client"
)

const (
	EnvAccessToken  = "GOPHAUTH_ACCESS_TOKEN"
	EnvRefreshToken = "GOPHAUTH_REFRESH_TOKEN"
)

var ErrUsage = errors.New("usage")

const usage = `usage: gophauth-cli [-a addr] [-T seconds] [-c file] <command> [args]

commands:
  signup <email> [user|admin]   create an account
  signin <email>                print an access/refresh token pair
  refresh [refresh_token]       rotate the token pair
  whoami                        show the signed-in account
  account <account_id|email>    show another account (admin)
  email <new_email> [account_id]  change the signed-in account's email, or another's (admin)
  passwd                        change the signed-in account's password
  accounts                      list accounts (admin)
  role <account_id> <user|admin>  change an account's role (admin)

Every command except signin and refresh reads tokens from ` + EnvAccessToken + ` and
` + EnvRefreshToken + `; signup sends them when set, which admin signups require.
`

type App struct {
	client  client.Client
	reader  *bufio.Reader
	out     io.Writer
	getenv  func(string) string
	timeout time.Duration
}

func NewApp(c client.Client, in io.Reader, out io.Writer, getenv func(string) string, timeout time.Duration) *App {
	return &App{client: c, reader: bufio.NewReader(in), out: out, getenv: getenv, timeout: timeout}
}

// Run executes one command. args are the positional arguments left after
// global flags.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(a.out, usage)
		return ErrUsage
	}

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	a.client.SetTokens(api.TokenPair{
		AccessToken:  a.getenv(EnvAccessToken),
		RefreshToken: a.getenv(EnvRefreshToken),
	})

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "signup":
		return a.signup(ctx, rest)
	case "signin":
		return a.signin(ctx, rest)
	case "refresh":
		return a.refresh(ctx, rest)
	case "whoami":
		return a.whoami(ctx)
	case "account":
		return a.account(ctx, rest)
	case "email":
		return a.email(ctx, rest)
	case "passwd":
		return a.passwd(ctx)
	case "accounts":
		return a.accounts(ctx)
	case "role":
		return a.role(ctx, rest)
	default:
		fmt.Fprint(a.out, usage)
		return fmt.Errorf("%w: unknown command %q", ErrUsage, cmd)
	}
}

func (a *App) print(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseRole(s string) (int32, error) {
	switch strings.ToLower(s) {
	case "", "user":
		return 1, nil
	case "admin":
		return 2, nil
	default:
		return 0, fmt.Errorf("%w: role must be user or admin", ErrUsage)
	}
}

// CommandArgs drops global flags (and their values) from args.
func CommandArgs(args []string) []string {
	withValue := map[string]bool{"-a": true, "-T": true, "-c": true, "-config": true}

	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if len(out) == 0 && strings.HasPrefix(arg, "-") {
			if _, _, eq := strings.Cut(arg, "="); !eq && withValue[arg] {
				i++
			}
			continue
		}
		out = append(out, arg)
	}
	return out
}
