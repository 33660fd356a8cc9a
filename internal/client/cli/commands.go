package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/tunekeeper/internal/client/client"
)

func (a *App) Register(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return a.fail(err)
	}
	username, err := GetSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return a.fail(err)
	}
	password, err := GetPassword(a.out)
	if err != nil {
		return a.fail(err)
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	acc, err := a.session.Register(ctx, email, username, password)
	if err != nil {
		return a.fail(err)
	}

	a.account = &acc
	fmt.Fprintf(a.out, "Registered as %s\n", acc.Username)
	return nil
}

func (a *App) Login(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return a.fail(err)
	}
	password, err := GetPassword(a.out)
	if err != nil {
		return a.fail(err)
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	acc, err := a.session.Login(ctx, email, password)
	if err != nil {
		return a.fail(err)
	}

	a.account = &acc
	fmt.Fprintf(a.out, "Logged in as %s\n", acc.Username)
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	acc, err := a.session.WhoAmI(ctx)
	if err != nil {
		return a.fail(err)
	}

	a.account = &acc
	fmt.Fprintf(a.out, "id:         %s\nemail:      %s\nusername:   %s\nactive:     %t\ncreated:    %s\n",
		acc.ID, acc.Email, acc.Username, acc.Active, acc.CreatedAt.Format(time.RFC3339))
	if acc.LastLoginAt != nil {
		fmt.Fprintf(a.out, "last login: %s\n", acc.LastLoginAt.Format(time.RFC3339))
	}
	return nil
}

func (a *App) Refresh(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	if err := a.session.Refresh(ctx); err != nil {
		return a.fail(err)
	}
	fmt.Fprintln(a.out, "Session refreshed")
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	a.account = nil
	if err := a.session.Logout(ctx); err != nil {
		return a.fail(err)
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

// fail reports err and, when the session is no longer usable, drops the
// local login state.
func (a *App) fail(err error) error {
	fmt.Fprintf(a.out, "Error: %v\n", err)
	if errors.Is(err, client.ErrAccountDisabled) || errors.Is(err, client.ErrNotLoggedIn) {
		a.account = nil
	}
	return err
}
