package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"blogicum/internal/auth"
	"blogicum/internal/models"
	"blogicum/internal/store"
)

// withStore runs fn against the configured database.
func withStore(cmd *cobra.Command, g *globalFlags, fn func(ctx context.Context, st *store.Store) error) error {
	cfg, _, err := setup(g)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	conn, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer conn.Close()
	return fn(ctx, store.New(conn))
}

func migrateCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, g, func(ctx context.Context, st *store.Store) error {
				cmd.Println("Database is up to date")
				return nil
			})
		},
	}
}

func categoryCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "category",
		Short: "Manage post categories",
	}

	var description string
	var unpublished bool
	create := &cobra.Command{
		Use:   "create <slug> <title>",
		Short: "Create a category",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, g, func(ctx context.Context, st *store.Store) error {
				c := &models.Category{
					Publishable: models.Publishable{IsPublished: !unpublished},
					Slug:        args[0],
					Title:       args[1],
					Description: description,
				}
				id, err := st.CreateCategory(ctx, c)
				if err != nil {
					return err
				}
				cmd.Printf("Created category %q (id %d)\n", c.Slug, id)
				return nil
			})
		},
	}
	create.Flags().StringVarP(&description, "description", "d", "", "Category description")
	create.Flags().BoolVar(&unpublished, "unpublished", false, "Create the category hidden")

	setPublished := func(use, short string, published bool) *cobra.Command {
		return &cobra.Command{
			Use:   use + " <slug>",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withStore(cmd, g, func(ctx context.Context, st *store.Store) error {
					return st.SetCategoryPublished(ctx, args[0], published)
				})
			},
		}
	}

	del := &cobra.Command{
		Use:   "delete <slug>",
		Short: "Delete a category; its posts become uncategorized",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, g, func(ctx context.Context, st *store.Store) error {
				return st.DeleteCategory(ctx, args[0])
			})
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, g, func(ctx context.Context, st *store.Store) error {
				categories, err := st.ListCategories(ctx, false)
				if err != nil {
					return err
				}
				for _, c := range categories {
					cmd.Printf("%d\t%s\t%s\tpublished=%t\n", c.ID, c.Slug, c.Title, c.IsPublished)
				}
				return nil
			})
		},
	}

	cmd.AddCommand(create, setPublished("publish", "Show a category and its posts", true),
		setPublished("unpublish", "Hide a category and its posts", false), del, list)
	return cmd
}

func locationCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "location",
		Short: "Manage post locations",
	}

	var unpublished bool
	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a location",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, g, func(ctx context.Context, st *store.Store) error {
				l := &models.Location{Publishable: models.Publishable{IsPublished: !unpublished}, Name: args[0]}
				id, err := st.CreateLocation(ctx, l)
				if err != nil {
					return err
				}
				cmd.Printf("Created location %q (id %d)\n", l.Name, id)
				return nil
			})
		},
	}
	create.Flags().BoolVar(&unpublished, "unpublished", false, "Create the location hidden")

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a location; posts keep existing without it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid location id %q", args[0])
			}
			return withStore(cmd, g, func(ctx context.Context, st *store.Store) error {
				return st.DeleteLocation(ctx, id)
			})
		},
	}

	cmd.AddCommand(create, del)
	return cmd
}

func userCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}

	var u models.User
	var password string
	create := &cobra.Command{
		Use:   "create <username>",
		Short: "Create a user account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(password) < 8 {
				return fmt.Errorf("password must be at least 8 characters")
			}
			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}
			u.Username = args[0]
			u.PasswordHash = hash
			return withStore(cmd, g, func(ctx context.Context, st *store.Store) error {
				id, err := st.CreateUser(ctx, &u)
				if err != nil {
					return err
				}
				cmd.Printf("Created user %q (id %d)\n", u.Username, id)
				return nil
			})
		},
	}
	create.Flags().StringVarP(&password, "password", "p", "", "Password (min 8 characters)")
	create.Flags().StringVar(&u.Email, "email", "", "Email address")
	create.Flags().StringVar(&u.FirstName, "first-name", "", "First name")
	create.Flags().StringVar(&u.LastName, "last-name", "", "Last name")
	_ = create.MarkFlagRequired("password")

	cmd.AddCommand(create)
	return cmd
}
