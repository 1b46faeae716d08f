package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/hermitcli/hermit/pkg/domain/model"
	"github.com/hermitcli/hermit/pkg/usecase"
)

func newPluginManager() (*usecase.PluginManager, error) {
	dir, err := usecase.DefaultPluginDir()
	if err != nil {
		return nil, err
	}
	return usecase.NewPluginManager(dir), nil
}

func cmdAdd() *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Add a new script as a plugin",
		ArgsUsage: "<path>",
		Action: func(ctx context.Context, c *cli.Command) error {
			path := c.Args().First()
			if path == "" {
				return goerr.New("plugin script path is required")
			}

			mgr, err := newPluginManager()
			if err != nil {
				return err
			}
			manifest, err := mgr.Add(ctx, path)
			if err != nil {
				return err
			}

			fmt.Printf("Added plugin %s v%s\n", manifest.Name, manifest.Version)
			return nil
		},
	}
}

func cmdRemove() *cli.Command {
	return &cli.Command{
		Name:      "remove",
		Usage:     "Remove an installed plugin",
		ArgsUsage: "<name>",
		Action: func(ctx context.Context, c *cli.Command) error {
			name := c.Args().First()
			if name == "" {
				return goerr.New("plugin name is required")
			}

			mgr, err := newPluginManager()
			if err != nil {
				return err
			}
			if err := mgr.Remove(name); err != nil {
				return err
			}

			fmt.Printf("Removed plugin %s\n", name)
			return nil
		},
	}
}

func cmdList() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List installed plugins",
		Action: func(ctx context.Context, c *cli.Command) error {
			mgr, err := newPluginManager()
			if err != nil {
				return err
			}
			manifests, err := mgr.List()
			if err != nil {
				return err
			}

			if len(manifests) == 0 {
				fmt.Println("No plugins installed")
				return nil
			}

			bold := color.New(color.Bold).SprintFunc()
			faint := color.New(color.Faint).SprintFunc()
			for _, m := range manifests {
				fmt.Printf("- %s %s  %s\n", bold(m.Name), faint("v"+m.Version), m.Description)
			}
			return nil
		},
	}
}

func cmdCreate() *cli.Command {
	return &cli.Command{
		Name:      "create",
		Usage:     "Write a plugin scaffold into the current directory",
		ArgsUsage: "<name>",
		Action: func(ctx context.Context, c *cli.Command) error {
			name := c.Args().First()
			if name == "" {
				return goerr.New("plugin name is required")
			}

			mgr, err := newPluginManager()
			if err != nil {
				return err
			}
			cwd, err := os.Getwd()
			if err != nil {
				return goerr.Wrap(err, "failed to resolve working directory")
			}
			path, err := mgr.CreateTemplate(name, cwd)
			if err != nil {
				return err
			}

			fmt.Printf("Created template at %s\n", path)
			fmt.Printf("->  edit and test the script\n")
			fmt.Printf("->  hermit add %s   # register once ready\n", path)
			return nil
		},
	}
}

// pluginCommands assembles CLI commands from installed plugin manifests, so
// plugins show up in help alongside the built-ins. Manifest subcommands
// become nested commands; everything after the command name is forwarded to
// the plugin process untouched.
func pluginCommands() []*cli.Command {
	mgr, err := newPluginManager()
	if err != nil {
		return nil
	}
	manifests, err := mgr.List()
	if err != nil {
		return nil
	}

	var cmds []*cli.Command
	for _, manifest := range manifests {
		cmds = append(cmds, pluginCommand(mgr, manifest))
	}
	return cmds
}

func pluginCommand(mgr *usecase.PluginManager, manifest *model.Manifest) *cli.Command {
	cmd := &cli.Command{
		Name:            manifest.Name,
		Usage:           manifest.Description,
		SkipFlagParsing: true,
		Action: func(ctx context.Context, c *cli.Command) error {
			return execPlugin(ctx, mgr, manifest.Name, c.Args().Slice())
		},
	}

	for _, sc := range manifest.Commands {
		sub := sc
		cmd.Commands = append(cmd.Commands, &cli.Command{
			Name:            sub.Name,
			Usage:           sub.Description,
			SkipFlagParsing: true,
			Action: func(ctx context.Context, c *cli.Command) error {
				args := append([]string{sub.Name}, c.Args().Slice()...)
				return execPlugin(ctx, mgr, manifest.Name, args)
			},
		})
	}
	return cmd
}

func execPlugin(ctx context.Context, mgr *usecase.PluginManager, name string, args []string) error {
	code, err := mgr.Exec(ctx, name, args)
	if err != nil {
		return err
	}
	if code != 0 {
		return cli.Exit("", code)
	}
	return nil
}
