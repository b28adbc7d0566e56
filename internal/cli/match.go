package cli

import (
	"github.com/spf13/cobra"
)

func newMatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match",
		Short: "Match management commands",
	}

	cmd.AddCommand(newMatchNewCmd())
	cmd.AddCommand(newMatchStatusCmd())
	cmd.AddCommand(newMatchJoinCmd())
	cmd.AddCommand(newMatchCancelCmd())

	return cmd
}

func newMatchNewCmd() *cobra.Command {
	var key string

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create a new match",
		Long: `Create a new match. With --key, the match is created under that key;
without it, the server generates a room code.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{}
			if key != "" {
				req["key"] = key
			}

			var result Match
			if err := client.Post("/api/v1/matches", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&key, "key", "", "Match key (optional, generated if omitted)")

	return cmd
}

func newMatchStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <key>",
		Short: "Show the status of a match",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Match
			if err := client.Get("/api/v1/matches/"+args[0], &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newMatchJoinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "join <key>",
		Short: "Join a match",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Match
			if err := client.Post("/api/v1/matches/"+args[0]+"/join", nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newMatchCancelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <key>",
		Short: "Cancel a match",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Delete("/api/v1/matches/" + args[0]); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage("Match " + args[0] + " cancelled")
			return nil
		},
	}
}
