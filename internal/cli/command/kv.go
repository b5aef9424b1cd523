package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/rudis/internal/cli/output"
)

// GetCommand returns the get command.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Print the value stored at KEY",
		ArgsUsage: "KEY",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("usage: %s get KEY", c.App.Name)
			}
			return execAction(c, []string{"GET", c.Args().First()})
		},
	}
}

// SetCommand returns the set command.
func SetCommand() *cli.Command {
	return &cli.Command{
		Name:      "set",
		Usage:     "Store VALUE at KEY",
		ArgsUsage: "KEY VALUE",
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return fmt.Errorf("usage: %s set KEY VALUE", c.App.Name)
			}
			return execAction(c, []string{"SET", c.Args().Get(0), c.Args().Get(1)})
		},
	}
}

// DelCommand returns the del command.
func DelCommand() *cli.Command {
	return &cli.Command{
		Name:      "del",
		Aliases:   []string{"delete"},
		Usage:     "Remove KEY",
		ArgsUsage: "KEY",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("usage: %s del KEY", c.App.Name)
			}
			return execAction(c, []string{"DEL", c.Args().First()})
		},
	}
}

// ExecCommand returns the exec command, which sends its arguments verbatim
// as one request.
func ExecCommand() *cli.Command {
	return &cli.Command{
		Name:            "exec",
		Usage:           "Send an arbitrary request",
		ArgsUsage:       "COMMAND [ARG...]",
		SkipFlagParsing: true,
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return fmt.Errorf("usage: %s exec COMMAND [ARG...]", c.App.Name)
			}
			return execAction(c, c.Args().Slice())
		},
	}
}

// execAction sends one request and prints the reply. Error replies are
// printed like any other reply; only transport failures are returned.
func execAction(c *cli.Context, args []string) error {
	client, g, err := dial(c)
	if err != nil {
		return err
	}
	defer client.Close()

	reply, err := client.Do(c.Context, args...)
	if err != nil {
		return err
	}
	return printResult(c, g, output.NewReply(reply))
}
