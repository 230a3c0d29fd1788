package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"

	ucli "github.com/urfave/cli/v2"

	"github.com/oksasatya/library-catalog/internal/domain/entity"
	"github.com/oksasatya/library-catalog/internal/client"
)

var errMissingID = errors.New("book id is required")

func (a *App) booksCommand() *ucli.Command {
	return &ucli.Command{
		Name:  "books",
		Usage: "browse and manage the catalog",
		Subcommands: []*ucli.Command{
			{
				Name:  "list",
				Usage: "list every book, newest first",
				Action: func(c *ucli.Context) error {
					if err := a.session.FetchBooks(c.Context); err != nil {
						return err
					}
					a.printBooks(a.session.State().Books)
					return nil
				},
			},
			{
				Name:      "get",
				Usage:     "show one book",
				ArgsUsage: "<id>",
				Action: func(c *ucli.Context) error {
					id := c.Args().First()
					if id == "" {
						return errMissingID
					}
					b, err := a.session.Book(c.Context, id)
					if err != nil {
						return err
					}
					a.printBook(b)
					return nil
				},
			},
			{
				Name:      "search",
				Usage:     "full-text search",
				ArgsUsage: "<query>",
				Action: func(c *ucli.Context) error {
					if err := a.session.SearchBooks(c.Context, c.Args().First()); err != nil {
						return err
					}
					a.printBooks(a.session.State().Books)
					return nil
				},
			},
			{
				Name:  "add",
				Usage: "add a book (admin)",
				Flags: []ucli.Flag{
					&ucli.StringFlag{Name: "title", Required: true},
					&ucli.StringFlag{Name: "author"},
					&ucli.StringFlag{Name: "description"},
				},
				Action: func(c *ucli.Context) error {
					b, err := a.session.SubmitBook(c.Context, client.BookInput{
						Title:       c.String("title"),
						Author:      c.String("author"),
						Description: c.String("description"),
					})
					if err != nil {
						return err
					}
					a.printf("Book added: %s\n", b.ID)
					return nil
				},
			},
			{
				Name:      "update",
				Usage:     "change fields of a book (admin)",
				ArgsUsage: "<id>",
				Flags: []ucli.Flag{
					&ucli.StringFlag{Name: "title"},
					&ucli.StringFlag{Name: "author"},
					&ucli.StringFlag{Name: "description"},
				},
				Action: func(c *ucli.Context) error {
					id := c.Args().First()
					if id == "" {
						return errMissingID
					}
					var in client.BookUpdate
					in.Title = optional(c, "title")
					in.Author = optional(c, "author")
					in.Description = optional(c, "description")
					b, err := a.session.UpdateBook(c.Context, id, in)
					if err != nil {
						return err
					}
					a.printBook(b)
					return nil
				},
			},
			{
				Name:      "delete",
				Usage:     "remove a book (admin)",
				ArgsUsage: "<id>",
				Action: func(c *ucli.Context) error {
					id := c.Args().First()
					if id == "" {
						return errMissingID
					}
					if err := a.session.DeleteBook(c.Context, id); err != nil {
						return err
					}
					a.printf("Book deleted: %s\n", id)
					return nil
				},
			},
		},
	}
}

// optional returns nil for flags the user did not pass.
func optional(c *ucli.Context, name string) *string {
	if !c.IsSet(name) {
		return nil
	}
	v := c.String(name)
	return &v
}

func (a *App) printBooks(books []entity.Book) {
	if len(books) == 0 {
		a.printf("No books\n")
		return
	}
	tw := tabwriter.NewWriter(a.Out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tTITLE\tAUTHOR\tADDED")
	for _, b := range books {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", b.ID, b.Title, b.Author, b.CreatedAt.Format("2006-01-02"))
	}
	_ = tw.Flush()
}

func (a *App) printBook(b *entity.Book) {
	a.printf("ID:          %s\n", b.ID)
	a.printf("Title:       %s\n", b.Title)
	a.printf("Author:      %s\n", b.Author)
	if b.Description != "" {
		a.printf("Description: %s\n", b.Description)
	}
	if b.CoverURL != "" {
		a.printf("Cover:       %s\n", b.CoverURL)
	}
}
