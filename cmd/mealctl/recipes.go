package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"mealmaker-backend/models"

	"github.com/spf13/cobra"
)

func newRecipesCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recipes",
		Short: "Find recipes for what is in your fridge",
	}
	cmd.AddCommand(
		newRecipesPhotoCmd(opts),
		newRecipesSearchCmd(opts),
		newRecipesSaveCmd(opts),
		newRecipesFavoritesCmd(opts),
	)
	return cmd
}

func newRecipesPhotoCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "photo FILE",
		Short: "Suggest recipes from a fridge photo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			recipes, err := opts.client().GenerateRecipes(cmd.Context(), filepath.Base(args[0]), f)
			if err != nil {
				return err
			}
			return opts.render(cmd.OutOrStdout(), recipes, func(w io.Writer) {
				printRecipes(w, recipes)
			})
		},
	}
}

func newRecipesSearchCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "search INGREDIENT...",
		Short: "Search saved recipes containing every ingredient",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			recipes, err := opts.client().SearchRecipes(cmd.Context(), args)
			if err != nil {
				return err
			}
			return opts.render(cmd.OutOrStdout(), recipes, func(w io.Writer) {
				printRecipes(w, recipes)
			})
		},
	}
}

func newRecipesSaveCmd(opts *rootOptions) *cobra.Command {
	var (
		name        string
		ingredients []string
		steps       []string
		minutes     int
		favorite    bool
	)
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Save a recipe, optionally as a favorite",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			recipe := &models.Recipe{Name: name, Ingredients: ingredients, Steps: steps}
			if minutes > 0 {
				recipe.Time = &minutes
			}
			c := opts.client()

			saved, err := c.SaveRecipe(cmd.Context(), recipe)
			if err != nil {
				return err
			}
			if !favorite {
				return opts.render(cmd.OutOrStdout(), saved, func(w io.Writer) {
					fmt.Fprintf(w, "Saved %q\n", saved.Name)
				})
			}

			userID, err := opts.requireUser()
			if err != nil {
				return err
			}
			fav, err := c.FavoriteRecipe(cmd.Context(), userID, saved)
			if err != nil {
				return err
			}
			return opts.render(cmd.OutOrStdout(), fav, func(w io.Writer) {
				fmt.Fprintf(w, "Saved %q and added it to favorites\n", fav.Name)
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Recipe name")
	cmd.Flags().StringArrayVar(&ingredients, "ingredient", nil, "Ingredient line (repeatable)")
	cmd.Flags().StringArrayVar(&steps, "step", nil, "Step (repeatable, in order)")
	cmd.Flags().IntVar(&minutes, "time", 0, "Total time in minutes")
	cmd.Flags().BoolVar(&favorite, "favorite", false, "Also mark as a favorite for --user")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newRecipesFavoritesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "favorites",
		Short: "List your favorite recipes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := opts.requireUser()
			if err != nil {
				return err
			}
			favorites, err := opts.client().ListFavorites(cmd.Context(), userID)
			if err != nil {
				return err
			}
			return opts.render(cmd.OutOrStdout(), favorites, func(w io.Writer) {
				recipes := make([]models.Recipe, len(favorites))
				for i, f := range favorites {
					recipes[i] = f.Recipe
				}
				printRecipes(w, recipes)
			})
		},
	}
}

func printRecipes(w io.Writer, recipes []models.Recipe) {
	if len(recipes) == 0 {
		fmt.Fprintln(w, "No recipes")
		return
	}
	for i, r := range recipes {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprint(w, r.Name)
		if r.Time != nil {
			fmt.Fprintf(w, " (%d min)", *r.Time)
		}
		fmt.Fprintln(w)
		fmt.Fprintf(w, "  Ingredients: %s\n", strings.Join(r.Ingredients, ", "))
		for n, step := range r.Steps {
			fmt.Fprintf(w, "  %d. %s\n", n+1, step)
		}
	}
}
