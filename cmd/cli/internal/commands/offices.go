package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/wolfeidau/offices/internal/models"
)

type ListCmd struct {
	ClientFlags `embed:""`
	Cursor      string `help:"Start from this cursor instead of the first page" default:""`
	All         bool   `help:"Follow cursors until the last page" default:"false"`
}

func (l *ListCmd) Run(ctx context.Context, globals *Globals) error {
	c := l.client(globals)

	if l.All {
		var offices []*models.Office
		err := c.WalkOffices(ctx, func(o *models.Office) error {
			offices = append(offices, o)
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to list offices: %w", err)
		}

		printOffices(offices)
		return nil
	}

	page, err := c.ListOffices(ctx, l.Cursor)
	if err != nil {
		return fmt.Errorf("failed to list offices: %w", err)
	}

	printOffices(page.Offices)
	if page.Cursor != "" {
		fmt.Printf("Use --cursor=%s to see next page\n", page.Cursor)
	}
	return nil
}

type GetCmd struct {
	ClientFlags `embed:""`
	ID          string `arg:"" help:"Office ID"`
}

func (g *GetCmd) Run(ctx context.Context, globals *Globals) error {
	o, err := g.client(globals).GetOffice(ctx, g.ID)
	if err != nil {
		return fmt.Errorf("failed to get office: %w", err)
	}
	return printJSON(o)
}

type CreateCmd struct {
	ClientFlags    `embed:""`
	Company        string `help:"Company name" required:""`
	City           string `help:"City" required:""`
	State          string `help:"Two letter US state abbreviation" required:""`
	GeneralManager string `help:"General manager" required:""`
	PhoneNumber    string `help:"Phone number" required:""`
}

func (c *CreateCmd) Run(ctx context.Context, globals *Globals) error {
	o, err := c.client(globals).CreateOffice(ctx, map[string]any{
		"company":         c.Company,
		"city":            c.City,
		"state":           c.State,
		"general_manager": c.GeneralManager,
		"phone_number":    c.PhoneNumber,
	})
	if err != nil {
		return fmt.Errorf("failed to create office: %w", err)
	}
	return printJSON(o)
}

type DeleteCmd struct {
	ClientFlags `embed:""`
	ID          string `arg:"" help:"Office ID"`
}

func (d *DeleteCmd) Run(ctx context.Context, globals *Globals) error {
	if err := d.client(globals).DeleteOffice(ctx, d.ID); err != nil {
		return fmt.Errorf("failed to delete office: %w", err)
	}
	fmt.Printf("Deleted office %s\n", d.ID)
	return nil
}

type AssignCmd struct {
	ClientFlags `embed:""`
	OfficeID    string `arg:"" help:"Office ID"`
	EmployeeID  string `arg:"" help:"Employee ID"`
}

func (a *AssignCmd) Run(ctx context.Context, globals *Globals) error {
	if err := a.client(globals).Assign(ctx, a.OfficeID, a.EmployeeID); err != nil {
		return fmt.Errorf("failed to assign employee: %w", err)
	}
	fmt.Printf("Assigned employee %s to office %s\n", a.EmployeeID, a.OfficeID)
	return nil
}

type UnassignCmd struct {
	ClientFlags `embed:""`
	OfficeID    string `arg:"" help:"Office ID"`
	EmployeeID  string `arg:"" help:"Employee ID"`
}

func (u *UnassignCmd) Run(ctx context.Context, globals *Globals) error {
	if err := u.client(globals).Unassign(ctx, u.OfficeID, u.EmployeeID); err != nil {
		return fmt.Errorf("failed to unassign employee: %w", err)
	}
	fmt.Printf("Removed employee %s from office %s\n", u.EmployeeID, u.OfficeID)
	return nil
}

func printOffices(offices []*models.Office) {
	if len(offices) == 0 {
		fmt.Println("No offices found.")
		return
	}

	fmt.Printf("%-36s %-25s %-20s %-5s %-10s\n", "Office ID", "Company", "City", "State", "Employees")
	fmt.Println(strings.Repeat("─", 100))

	for _, o := range offices {
		company := o.Company
		if len(company) > 25 {
			company = company[:22] + "..."
		}
		fmt.Printf("%-36s %-25s %-20s %-5s %-10d\n", o.ID, company, o.City, o.State, len(o.Employees))
	}

	fmt.Printf("\nTotal offices: %d\n", len(offices))
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
