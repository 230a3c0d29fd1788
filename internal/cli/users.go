package cli

import (
	"errors"

	ucli "github.com/urfave/cli/v2"

	"github.com/oksasatya/library-catalog/internal/domain/entity"
)

func (a *App) usersCommand() *ucli.Command {
	return &ucli.Command{
		Name:  "users",
		Usage: "manage accounts (admin)",
		Subcommands: []*ucli.Command{
			{
				Name:      "promote",
				Usage:     "set the role of a user",
				ArgsUsage: "<user id>",
				Flags: []ucli.Flag{
					&ucli.StringFlag{Name: "role", Value: string(entity.RoleAdmin)},
				},
				Action: func(c *ucli.Context) error {
					id := c.Args().First()
					if id == "" {
						return errors.New("user id is required")
					}
					u, err := a.session.AssignRole(c.Context, id, entity.Role(c.String("role")))
					if err != nil {
						return err
					}
					a.printf("%s is now %s\n", u.Email, u.Role)
					return nil
				},
			},
		},
	}
}
