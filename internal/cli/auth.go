package cli

import (
	ucli "github.com/urfave/cli/v2"
)

func (a *App) registerCommand() *ucli.Command {
	return &ucli.Command{
		Name:  "register",
		Usage: "create an account and sign in",
		Flags: []ucli.Flag{
			&ucli.StringFlag{Name: "name"},
			&ucli.StringFlag{Name: "email"},
		},
		Action: func(c *ucli.Context) error {
			name, err := a.flagOrPrompt(c, "name", "Name")
			if err != nil {
				return err
			}
			email, err := a.flagOrPrompt(c, "email", "Email")
			if err != nil {
				return err
			}
			pw, err := promptPassword(a.Out)
			if err != nil {
				return err
			}
			if err := a.session.Register(c.Context, name, email, pw); err != nil {
				return err
			}
			a.printf("Registered and signed in as %s\n", a.session.State().User.Email)
			return nil
		},
	}
}

func (a *App) loginCommand() *ucli.Command {
	return &ucli.Command{
		Name:  "login",
		Usage: "sign in",
		Flags: []ucli.Flag{&ucli.StringFlag{Name: "email"}},
		Action: func(c *ucli.Context) error {
			email, err := a.flagOrPrompt(c, "email", "Email")
			if err != nil {
				return err
			}
			pw, err := promptPassword(a.Out)
			if err != nil {
				return err
			}
			if err := a.session.Login(c.Context, email, pw); err != nil {
				return err
			}
			u := a.session.State().User
			a.printf("Signed in as %s (%s)\n", u.Email, u.Role)
			return nil
		},
	}
}

func (a *App) logoutCommand() *ucli.Command {
	return &ucli.Command{
		Name:  "logout",
		Usage: "forget the saved token",
		Action: func(c *ucli.Context) error {
			if err := a.session.Logout(); err != nil {
				return err
			}
			a.printf("Signed out\n")
			return nil
		},
	}
}

func (a *App) whoamiCommand() *ucli.Command {
	return &ucli.Command{
		Name:  "whoami",
		Usage: "show the signed in user",
		Action: func(c *ucli.Context) error {
			st := a.session.State()
			if !st.LoggedIn() {
				a.printf("Not signed in\n")
				return nil
			}
			a.printf("%s <%s> role=%s id=%s\n", st.User.Name, st.User.Email, st.User.Role, st.User.ID)
			return nil
		},
	}
}

func (a *App) flagOrPrompt(c *ucli.Context, flag, label string) (string, error) {
	if v := c.String(flag); v != "" {
		return v, nil
	}
	return prompt(a.In, a.Out, label)
}
