package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"mealmaker-backend/client"
	"mealmaker-backend/models"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type rootOptions struct {
	apiURL  string
	token   string
	userID  string
	asJSON  bool
	verbose bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "mealctl",
		Short:         "mealctl talks to the Meal Maker API",
		Long:          "mealctl logs cooked meals, shows impact and badges, and manages fridge-share listings and recipes.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.apiURL, "api", envOr("MEALMAKER_API", "http://localhost:8000/api/v1"), "API base URL")
	cmd.PersistentFlags().StringVar(&opts.token, "token", os.Getenv("MEALMAKER_TOKEN"), "Bearer token")
	cmd.PersistentFlags().StringVar(&opts.userID, "user", os.Getenv("MEALMAKER_USER"), "User id")
	cmd.PersistentFlags().BoolVar(&opts.asJSON, "json", false, "Print raw JSON responses")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log fallbacks to stderr")

	cmd.AddCommand(
		newImpactCmd(opts),
		newListingsCmd(opts),
		newRecipesCmd(opts),
	)
	return cmd
}

func (o *rootOptions) client() *client.Client {
	clientOpts := []client.Option{client.WithBearerToken(o.token)}
	if o.verbose {
		if logger, err := zap.NewDevelopment(); err == nil {
			clientOpts = append(clientOpts, client.WithLogger(logger))
		}
	}
	return client.New(o.apiURL, clientOpts...)
}

func (o *rootOptions) requireUser() (string, error) {
	if o.userID == "" {
		return "", fmt.Errorf("--user (or MEALMAKER_USER) is required")
	}
	return o.userID, nil
}

// render prints v as JSON when --json is set, otherwise calls text.
func (o *rootOptions) render(w io.Writer, v interface{}, text func(io.Writer)) error {
	if o.asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text(w)
	return nil
}

// parseIngredient reads "name", "name:qty" or "name:qty:unit".
func parseIngredient(arg string) (models.IngredientInput, error) {
	parts := strings.Split(arg, ":")
	in := models.IngredientInput{Name: strings.TrimSpace(parts[0])}
	if in.Name == "" {
		return in, fmt.Errorf("ingredient %q has no name", arg)
	}
	if len(parts) > 3 {
		return in, fmt.Errorf("ingredient %q: expected name[:quantity[:unit]]", arg)
	}
	if len(parts) >= 2 && parts[1] != "" {
		q, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return in, fmt.Errorf("ingredient %q: invalid quantity: %w", arg, err)
		}
		in.Quantity = &q
	}
	if len(parts) == 3 {
		in.Unit = strings.TrimSpace(parts[2])
	}
	return in, nil
}

func parseIngredients(args []string) ([]models.IngredientInput, error) {
	items := make([]models.IngredientInput, 0, len(args))
	for _, arg := range args {
		in, err := parseIngredient(arg)
		if err != nil {
			return nil, err
		}
		items = append(items, in)
	}
	return items, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
