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

func newListingsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "listings",
		Aliases: []string{"fridge"},
		Short:   "Share and claim leftover food",
	}
	cmd.AddCommand(
		newListingsListCmd(opts),
		newListingsMineCmd(opts),
		newListingsShowCmd(opts),
		newListingsCreateCmd(opts),
		newListingsClaimCmd(opts),
		newListingsDeleteCmd(opts),
	)
	return cmd
}

func newListingsListCmd(opts *rootOptions) *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List listings by status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			listings, err := opts.client().ListListings(cmd.Context(), models.ListingStatus(status))
			if err != nil {
				return err
			}
			return opts.render(cmd.OutOrStdout(), listings, func(w io.Writer) {
				printListings(w, listings)
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", string(models.ListingStatusAvailable), "available or claimed")
	return cmd
}

func newListingsMineCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mine",
		Short: "List your own listings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := opts.requireUser()
			if err != nil {
				return err
			}
			listings, err := opts.client().ListMyListings(cmd.Context(), userID)
			if err != nil {
				return err
			}
			return opts.render(cmd.OutOrStdout(), listings, func(w io.Writer) {
				printListings(w, listings)
			})
		},
	}
}

func newListingsShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show one listing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := opts.client().GetListing(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return opts.render(cmd.OutOrStdout(), l, func(w io.Writer) {
				fmt.Fprintf(w, "%s (%s)\nBy: %s\nItems: %s\n", l.Title, l.Status, l.UserDisplayName, strings.Join(l.Items, ", "))
				printOptional(w, "Description", l.Description)
				printOptional(w, "Quantity", l.Quantity)
				printOptional(w, "Expiry", l.ExpiryHint)
				printOptional(w, "Pickup", l.PickupInstructions)
				printOptional(w, "Image", l.ImageURL)
				printOptional(w, "Claimed by", l.ClaimedByName)
			})
		},
	}
}

func newListingsCreateCmd(opts *rootOptions) *cobra.Command {
	var (
		name, title, description, quantity, expiry, pickup, image string
		items                                                     []string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Offer food to your neighbours",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := opts.requireUser()
			if err != nil {
				return err
			}
			c := opts.client()

			req := &models.CreateListingRequest{
				UserID:             userID,
				UserDisplayName:    name,
				Title:              title,
				Items:              items,
				Description:        optional(description),
				Quantity:           optional(quantity),
				ExpiryHint:         optional(expiry),
				PickupInstructions: optional(pickup),
			}
			if image != "" {
				f, err := os.Open(image)
				if err != nil {
					return err
				}
				defer f.Close()
				url, err := c.UploadListingImage(cmd.Context(), filepath.Base(image), f)
				if err != nil {
					return fmt.Errorf("uploading image: %w", err)
				}
				req.ImageURL = &url
			}

			listing, err := c.CreateListing(cmd.Context(), req)
			if err != nil {
				return err
			}
			return opts.render(cmd.OutOrStdout(), listing, func(w io.Writer) {
				fmt.Fprintf(w, "Created listing %s\n", listing.ID)
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Display name shown on the listing")
	cmd.Flags().StringVar(&title, "title", "", "Listing title")
	cmd.Flags().StringSliceVar(&items, "item", nil, "Item offered (repeatable)")
	cmd.Flags().StringVar(&description, "description", "", "Free text description")
	cmd.Flags().StringVar(&quantity, "quantity", "", "Quantity, e.g. \"2 bags\"")
	cmd.Flags().StringVar(&expiry, "expiry", "", "Expiry hint")
	cmd.Flags().StringVar(&pickup, "pickup", "", "Pickup instructions")
	cmd.Flags().StringVar(&image, "image", "", "Path to a photo to upload")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newListingsClaimCmd(opts *rootOptions) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "claim ID",
		Short: "Claim an available listing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := opts.requireUser()
			if err != nil {
				return err
			}
			listing, err := opts.client().ClaimListing(cmd.Context(), args[0], &models.ClaimListingRequest{
				ClaimedBy:     userID,
				ClaimedByName: name,
			})
			if err != nil {
				return err
			}
			return opts.render(cmd.OutOrStdout(), listing, func(w io.Writer) {
				fmt.Fprintf(w, "Claimed %q from %s\n", listing.Title, listing.UserDisplayName)
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Your display name")
	return cmd
}

func newListingsDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Remove one of your listings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := opts.requireUser()
			if err != nil {
				return err
			}
			if err := opts.client().DeleteListing(cmd.Context(), args[0], userID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted listing %s\n", args[0])
			return nil
		},
	}
}

func printListings(w io.Writer, listings []models.FridgeListing) {
	if len(listings) == 0 {
		fmt.Fprintln(w, "No listings")
		return
	}
	fmt.Fprintln(w, "ID\tTITLE\tBY\tSTATUS\tITEMS")
	for _, l := range listings {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", l.ID, l.Title, l.UserDisplayName, l.Status, strings.Join(l.Items, ", "))
	}
}

func printOptional(w io.Writer, label string, v *string) {
	if v != nil && *v != "" {
		fmt.Fprintf(w, "%s: %s\n", label, *v)
	}
}

func optional(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
