package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/pribylovaa/go-shop-client/internal/models"
	"github.com/pribylovaa/go-shop-client/internal/render"
)

// errUsage - некорректные аргументы команды, обнаруженные после разбора.
var errUsage = errors.New("invalid arguments")

// CLI - корневая структура аргументов kong.
type CLI struct {
	Config string `help:"Path to YAML configuration file" optional:"true" type:"path"`
	Debug  bool   `help:"Debug logging" short:"d"`

	Login    LoginCmd    `cmd:"true" help:"Obtain a token pair and store it"`
	Logout   LogoutCmd   `cmd:"true" help:"Forget the stored token pair"`
	Whoami   WhoamiCmd   `cmd:"true" help:"Print the stored session status"`
	Verify   VerifyCmd   `cmd:"true" help:"Verify an access token (the stored one by default)"`
	Refresh  RefreshCmd  `cmd:"true" help:"Exchange the stored refresh token for a new access token"`
	Search   SearchCmd   `cmd:"true" help:"Search the shop"`
	Products ProductsCmd `cmd:"true" help:"Print the product list"`
	Serve    ServeCmd    `cmd:"true" help:"Run the local JSON gateway"`
}

type LoginCmd struct {
	Username string `help:"Account username" required:"true" short:"u"`
	Password string `help:"Account password" env:"SHOP_PASSWORD" short:"p"`
}

func (c *LoginCmd) Run(a *app) error {
	if c.Password == "" {
		return fmt.Errorf("%w: empty password, use --password or SHOP_PASSWORD", errUsage)
	}

	ctx := a.context()

	if _, err := a.client.Login(ctx, models.LoginRequest{Username: c.Username, Password: c.Password}); err != nil {
		return err
	}

	_, err := fmt.Fprintf(a.stdout, "Logged in as %s\n", c.Username)
	return err
}

type LogoutCmd struct{}

func (c *LogoutCmd) Run(a *app) error {
	return a.client.Logout(a.context())
}

type WhoamiCmd struct{}

func (c *WhoamiCmd) Run(a *app) error {
	st, err := a.session.Status(a.context())
	if err != nil {
		return err
	}

	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("whoami: %w", err)
	}

	return render.JSON(a.stdout, raw)
}

type VerifyCmd struct {
	Token string `arg:"true" optional:"true" help:"Token to verify; the stored access token if omitted"`
}

func (c *VerifyCmd) Run(a *app) error {
	ok, err := a.client.Verify(a.context(), c.Token)
	if err != nil {
		return err
	}

	verdict := "invalid"
	if ok {
		verdict = "valid"
	}

	_, err = fmt.Fprintln(a.stdout, verdict)
	return err
}

type RefreshCmd struct{}

func (c *RefreshCmd) Run(a *app) error {
	if _, err := a.client.Refresh(a.context()); err != nil {
		return err
	}

	_, err := fmt.Fprintln(a.stdout, "Access token refreshed")
	return err
}

type ProductsCmd struct{}

func (c *ProductsCmd) Run(a *app) error {
	p, err := a.client.Products(a.context())
	if err != nil {
		return err
	}

	return render.JSON(a.stdout, p.Body)
}

type SearchCmd struct {
	Query  []string `arg:"true" optional:"true" help:"Search terms"`
	Tag    string   `help:"Filter by tag"`
	Public string   `help:"Visibility filter" enum:"any,yes,no" default:"any"`
	Param  []string `help:"Extra query parameter as key=value" name:"param"`
}

func (c *SearchCmd) Run(a *app) error {
	params, err := c.values()
	if err != nil {
		return err
	}

	res, err := a.client.Search(a.context(), params)
	if err != nil {
		return err
	}

	return render.Hits(a.stdout, res)
}

// values собирает query string: q/tag/public и произвольные --param key=value.
func (c *SearchCmd) values() (url.Values, error) {
	q := models.SearchQuery{Query: strings.Join(c.Query, " "), Tag: c.Tag}

	switch c.Public {
	case "yes":
		v := true
		q.Public = &v
	case "no":
		v := false
		q.Public = &v
	}

	params := q.Values()
	for _, kv := range c.Param {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: --param %q, want key=value", errUsage, kv)
		}
		params.Add(key, value)
	}

	return params, nil
}

// context - корневой контекст команды с логгером внутри.
func (a *app) context() context.Context { return a.ctx }
