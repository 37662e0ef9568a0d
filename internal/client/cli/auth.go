package cli

import (
	"context"
	"fmt"

	"github.com/Skandeerkefi/luckywData/internal/common"
)

func (a *App) Register(ctx context.Context) error {
	kick, err := GetSimpleText(a.reader, "Enter Kick username", a.out)
	if err != nil {
		return err
	}
	rainbet, err := GetSimpleText(a.reader, "Enter Rainbet username", a.out)
	if err != nil {
		return err
	}

	password, err := GetPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	confirm, err := GetPassword("Confirm password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	user, err := a.client.Register(ctx, kick, rainbet, password, confirm)
	if err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}

	fmt.Fprintf(a.out, "User registered. id=%s\n", user.ID)
	return nil
}

func (a *App) Login(ctx context.Context) error {
	kick, err := GetSimpleText(a.reader, "Enter Kick username", a.out)
	if err != nil {
		return err
	}

	password, err := GetPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	session, err := a.client.Login(ctx, kick, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	fmt.Fprintf(a.out, "Logged in as %s (%s)\n%s\n", session.User.KickUsername, session.User.Role, session.Token)
	return nil
}

func (a *App) Health(ctx context.Context) error {
	h, err := a.client.Health(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s: %s\n", h.Status, h.Message)
	return nil
}
