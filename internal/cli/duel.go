package cli

import (
	"github.com/spf13/cobra"
)

func newSecretCmd() *cobra.Command {
	var match string

	cmd := &cobra.Command{
		Use:   "secret <code>",
		Short: "Commit your secret code",
		Long: `Commit your secret 4-digit code (distinct digits 1-9).

With --match, the secret goes to that match. Without it, the server routes
the secret to whichever of your matches is waiting on one.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"code": args[0]}

			path := "/api/v1/secret"
			if match != "" {
				path = "/api/v1/matches/" + match + "/secret"
			}

			var result SecretResult
			if err := client.Post(path, req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&match, "match", "", "Match key (optional)")

	return cmd
}

func newGuessCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "guess <key> <code>",
		Short: "Guess the opponent's secret code",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"code": args[1]}

			var result GuessResult
			if err := client.Post("/api/v1/matches/"+args[0]+"/guess", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
