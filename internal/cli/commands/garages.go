package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/wheelx-dev/wheelx/internal/api"
	"github.com/wheelx-dev/wheelx/internal/country"
)

// garageFlags map onto api.GarageInput.
type garageFlags struct {
	name        string
	description string
	address     string
	latitude    float64
	longitude   float64
	phone       string
	email       string
	website     string
	services    []string
	country     string
}

func addGarageFlags(cmd *cobra.Command, f *garageFlags) {
	cmd.Flags().StringVar(&f.name, "name", "", "Garage name")
	cmd.Flags().StringVar(&f.description, "description", "", "Short description")
	cmd.Flags().StringVar(&f.address, "address", "", "Street address")
	cmd.Flags().Float64Var(&f.latitude, "lat", 0, "Latitude")
	cmd.Flags().Float64Var(&f.longitude, "lng", 0, "Longitude")
	cmd.Flags().StringVar(&f.phone, "phone", "", "Contact phone")
	cmd.Flags().StringVar(&f.email, "email", "", "Contact email")
	cmd.Flags().StringVar(&f.website, "website", "", "Website URL")
	cmd.Flags().StringSliceVar(&f.services, "service", nil, "Offered service (repeatable)")
	cmd.Flags().StringVar(&f.country, "country", "", "Country code")
}

// input builds the request body. Coordinates are only sent when their flag was set.
func (f garageFlags) input(cmd *cobra.Command) api.GarageInput {
	in := api.GarageInput{
		Name:        f.name,
		Description: f.description,
		Address:     f.address,
		Phone:       f.phone,
		Email:       f.email,
		Website:     f.website,
		Services:    f.services,
		Country:     country.Normalize(f.country),
	}
	if cmd.Flags().Changed("lat") {
		lat := f.latitude
		in.Latitude = &lat
	}
	if cmd.Flags().Changed("lng") {
		lng := f.longitude
		in.Longitude = &lng
	}
	return in
}

// NewGaragesCmd creates the garages command group
func NewGaragesCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "garages", Short: "Manage partner garages"}

	var createFlags garageFlags
	create := &cobra.Command{
		Use:   "create",
		Short: "Add a garage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := createFlags.input(cmd)
			if err := api.Validate(in); err != nil {
				return err
			}
			a, err := newApp(cmd, "/private/garages")
			if err != nil {
				return err
			}
			return a.perform(cmd.Context(), "garages.create", in.Name, fmt.Sprintf("Created garage %s", in.Name), func(ctx context.Context) bool {
				return a.client.CreateGarage(ctx, in)
			})
		},
	}
	addGarageFlags(create, &createFlags)

	var updateFlags garageFlags
	update := &cobra.Command{
		Use:   "update <garage-id>",
		Short: "Replace a garage's details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := updateFlags.input(cmd)
			if err := api.Validate(in); err != nil {
				return err
			}
			a, err := newApp(cmd, "/private/garages")
			if err != nil {
				return err
			}
			id := args[0]
			return a.perform(cmd.Context(), "garages.update", id, fmt.Sprintf("Updated garage %s", id), func(ctx context.Context) bool {
				return a.client.UpdateGarage(ctx, id, in)
			})
		},
	}
	addGarageFlags(update, &updateFlags)

	cmd.AddCommand(
		listCmd("List garages", "/private/garages", true, runGaragesList),
		create,
		update,
		deleteCmd("garage", "/private/garages", "garages.delete", (*api.Client).DeleteGarage),
	)
	return cmd
}

func runGaragesList(ctx context.Context, a *app, f listFlags) error {
	params := a.listParams(ctx, f)
	page := a.client.Garages(ctx, params)

	return render(a.out, f.output, page, func(w *tabwriter.Writer) {
		if len(page.Data) == 0 {
			fmt.Fprintln(w, "No garages found.")
			return
		}
		header(w, "ID", "NAME", "ADDRESS", "RATING", "VERIFIED", "COUNTRY")
		for _, g := range page.Data {
			fmt.Fprintf(w, "%s\t%s\t%s\t%.1f (%d)\t%s\t%s\n",
				g.Key(), g.Name, orDash(g.Address), g.Rating, g.ReviewsCount, yesNo(g.IsVerified), orDash(g.Country))
		}
		footer(w, page.Meta, len(page.Data), params.Country)
	})
}
