package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/goliatone/go-crudform/internal/config"
	"github.com/goliatone/go-crudform/internal/example"
	"github.com/goliatone/go-crudform/internal/server"
	"github.com/goliatone/go-crudform/pkg/model"
	"github.com/goliatone/go-crudform/pkg/page"
	"github.com/goliatone/go-crudform/pkg/surface/tui"
	"github.com/goliatone/go-crudform/pkg/surface/web"
)

func main() {
	args := os.Args
	if len(args) == 1 {
		args = append(args, "--help")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand(os.Stdout).Run(ctx, args); err != nil {
		log.Fatal(err)
	}
}

func newRootCommand(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:   appName,
		Usage:  "Create, list, update and delete records from a web page or a terminal",
		Writer: out,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Value: config.DefaultPath, Usage: "YAML configuration file"},
		},
		Commands: []*cli.Command{
			serveCommand(),
			tuiCommand(),
			itemsCommand(out),
			schemaCommand(out),
		},
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the web application",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Usage: "HTTP listen address (overrides the configuration)"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			a, err := openApp(ctx, c.String("config"))
			if err != nil {
				return err
			}
			defer a.Close()

			shell, err := a.shell()
			if err != nil {
				return err
			}
			doc, err := a.document(ctx)
			if err != nil {
				return err
			}
			engine, err := web.NewEngine(web.WithGlobalData(map[string]any{"app_name": appName}))
			if err != nil {
				return err
			}
			srv, err := server.New(shell,
				server.WithLogger(a.logger),
				server.WithMetrics(a.metrics),
				server.WithEngine(engine),
				server.WithDocument(doc),
			)
			if err != nil {
				return err
			}

			addr := a.cfg.Server.Addr
			if v := strings.TrimSpace(c.String("addr")); v != "" {
				addr = v
			}
			return srv.ListenAndServe(ctx, addr)
		},
	}
}

func tuiCommand() *cli.Command {
	return &cli.Command{
		Name:  "tui",
		Usage: "Run the application in the terminal",
		Action: func(ctx context.Context, c *cli.Command) error {
			a, err := openApp(ctx, c.String("config"))
			if err != nil {
				return err
			}
			defer a.Close()

			shell, err := a.shell()
			if err != nil {
				return err
			}
			return tui.Run(ctx, tui.New(), shell, a.logger)
		},
	}
}

func itemsCommand(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "items",
		Usage: "Manage " + example.CRUDSection + " records",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List records",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "skip", Value: 0},
					&cli.IntFlag{Name: "limit", Value: 10},
					&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
				},
				Action: withApp(func(ctx context.Context, c *cli.Command, a *app) error {
					items, err := a.crud.Service.GetItems(ctx, c.Int("skip"), c.Int("limit"))
					if err != nil {
						return describe(err)
					}
					if c.Bool("json") {
						return printJSON(out, items)
					}
					for i := range items {
						if err := printItem(out, a, &items[i]); err != nil {
							return err
						}
					}
					return nil
				}),
			},
			{
				Name:  "get",
				Usage: "Show one record",
				Flags: []cli.Flag{
					&cli.UintFlag{Name: "id", Required: true},
					&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
				},
				Action: withApp(func(ctx context.Context, c *cli.Command, a *app) error {
					item, err := a.crud.Service.GetItem(ctx, c.Uint("id"))
					if err != nil {
						return describe(err)
					}
					if item == nil {
						return notFound(c.Uint("id"))
					}
					if c.Bool("json") {
						return printJSON(out, item)
					}
					return printItem(out, a, item)
				}),
			},
			{
				Name:  "create",
				Usage: "Create a record from field=value pairs",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{Name: "set", Usage: "field=value, repeatable"},
				},
				Action: withApp(func(ctx context.Context, c *cli.Command, a *app) error {
					values, err := parseAssignments(c.StringSlice("set"))
					if err != nil {
						return err
					}
					item, err := model.Decode[example.ExampleModel](values)
					if err != nil {
						return describe(err)
					}
					created, err := a.crud.Service.CreateItem(ctx, item)
					if err != nil {
						return describe(err)
					}
					return printItem(out, a, created)
				}),
			},
			{
				Name:  "update",
				Usage: "Update fields of a record",
				Flags: []cli.Flag{
					&cli.UintFlag{Name: "id", Required: true},
					&cli.StringSliceFlag{Name: "set", Required: true, Usage: "field=value, repeatable"},
				},
				Action: withApp(func(ctx context.Context, c *cli.Command, a *app) error {
					values, err := parseAssignments(c.StringSlice("set"))
					if err != nil {
						return err
					}
					updated, err := a.crud.Service.UpdateItem(ctx, c.Uint("id"), model.Patch(values))
					if err != nil {
						return describe(err)
					}
					if updated == nil {
						return notFound(c.Uint("id"))
					}
					return printItem(out, a, updated)
				}),
			},
			{
				Name:  "delete",
				Usage: "Delete a record",
				Flags: []cli.Flag{
					&cli.UintFlag{Name: "id", Required: true},
				},
				Action: withApp(func(ctx context.Context, c *cli.Command, a *app) error {
					deleted, err := a.crud.Service.DeleteItem(ctx, c.Uint("id"))
					if err != nil {
						return describe(err)
					}
					if deleted == nil {
						return notFound(c.Uint("id"))
					}
					_, err = fmt.Fprintf(out, "deleted %d\n", deleted.ID)
					return err
				}),
			},
		},
	}
}

func schemaCommand(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "schema",
		Usage: "Print the OpenAPI document of the records",
		Action: withApp(func(ctx context.Context, _ *cli.Command, a *app) error {
			doc, err := a.document(ctx)
			if err != nil {
				return err
			}
			return printJSON(out, doc)
		}),
	}
}

func withApp(fn func(ctx context.Context, c *cli.Command, a *app) error) cli.ActionFunc {
	return func(ctx context.Context, c *cli.Command) error {
		a, err := openApp(ctx, c.String("config"))
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(ctx, c, a)
	}
}

func parseAssignments(pairs []string) (map[string]any, error) {
	values := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid assignment %q, want field=value", pair)
		}
		values[name] = value
	}
	return values, nil
}

func printItem(out io.Writer, a *app, item *example.ExampleModel) error {
	values, err := a.crud.Schema.Values(item)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "%d\t%s\n", item.ID, page.DefaultLineFormatter(a.crud.Schema, values))
	return err
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func notFound(id uint) error {
	return fmt.Errorf("no record with id %d", id)
}

// describe keeps err in the chain but leads with the text a user can act on.
func describe(err error) error {
	return fmt.Errorf("%s: %w", page.Describe(err), err)
}
