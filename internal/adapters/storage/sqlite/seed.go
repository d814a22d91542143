package sqlite

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/hylla/statusboard/internal/app"
	"github.com/hylla/statusboard/internal/domain"
)

// DemoViewID identifies the view installed by Seed.
const DemoViewID = "open-opportunities"

// SeedOptions holds configuration for demo data.
type SeedOptions struct {
	IDGen func() string
}

// Seed installs a demo opportunity view when it does not exist yet. It reports
// whether anything was written.
func Seed(ctx context.Context, repo *Repository, opts SeedOptions) (bool, error) {
	if opts.IDGen == nil {
		opts.IDGen = uuid.NewString
	}
	if _, err := repo.GetView(ctx, DemoViewID); err == nil {
		return false, nil
	} else if !errors.Is(err, app.ErrNotFound) {
		return false, err
	}

	for _, set := range demoOptionSets() {
		if err := repo.UpsertOptionSet(ctx, "opportunity", set); err != nil {
			return false, err
		}
	}
	view := View{
		ID:         DemoViewID,
		EntityType: "opportunity",
		Name:       "Open Opportunities",
		Columns: []domain.ViewColumn{
			{Name: "name", DisplayName: "Topic", DataType: "SingleLine.Text", Order: 0},
			{Name: "customer", DisplayName: "Potential Customer", DataType: "SingleLine.Text", Order: 1},
			{Name: "statuscode", DisplayName: "Status Reason", DataType: domain.DataTypeOptionSet, Order: 2},
			{Name: "prioritycode", DisplayName: "Priority", DataType: domain.DataTypeOptionSet, Order: 3},
			{Name: "estimatedvalue", DisplayName: "Est. Revenue", DataType: "Currency", Order: 4},
			{Name: "statecode", DisplayName: "Status", DataType: "State", Order: -1},
		},
	}
	if err := repo.UpsertView(ctx, view); err != nil {
		return false, err
	}

	demo := []struct {
		name     string
		customer string
		state    int
		status   int
		priority int
		value    float64
	}{
		{"Fabrikam rollout", "Fabrikam", 0, 1, 1, 125000},
		{"Contoso renewal", "Contoso", 0, 1, 2, 48000},
		{"Tailspin pilot", "Tailspin Toys", 0, 2, 3, 9500},
		{"Litware expansion", "Litware", 1, 3, 2, 210000},
		{"Adventure Works upgrade", "Adventure Works", 2, 4, 2, 18000},
		{"Northwind hardware", "Northwind Traders", 2, 5, 3, 32000},
		{"Wingtip support plan", "Wingtip Toys", 0, 1, 1, 15000},
	}
	for _, item := range demo {
		rec := domain.Record{
			ID:         opts.IDGen(),
			EntityType: "opportunity",
			Values: map[string]any{
				"name":           item.name,
				"customer":       item.customer,
				"statecode":      item.state,
				"statuscode":     item.status,
				"prioritycode":   item.priority,
				"estimatedvalue": item.value,
			},
		}
		if err := repo.PutRecord(ctx, rec); err != nil {
			return false, fmt.Errorf("seed record %q: %w", item.name, err)
		}
	}
	return true, nil
}

func demoOptionSets() []app.OptionSetMetadata {
	labels := func(en, pt string) []app.LocalizedLabel {
		return []app.LocalizedLabel{{Label: en, LanguageCode: 1033}, {Label: pt, LanguageCode: 1046}}
	}
	return []app.OptionSetMetadata{
		{
			LogicalName:   domain.StatusCodeField,
			DisplayLabels: labels("Status Reason", "Razão do Status"),
			Options: []app.OptionMetadata{
				{Value: 1, State: domain.IntPtr(0), Color: "#0078D4", Labels: labels("In Progress", "Em Andamento")},
				{Value: 2, State: domain.IntPtr(0), Color: "#CA5010", Labels: labels("On Hold", "Em Espera")},
				{Value: 3, State: domain.IntPtr(1), Color: "#107C10", Labels: labels("Won", "Ganha")},
				{Value: 4, State: domain.IntPtr(2), Color: "#A80000", Labels: labels("Canceled", "Cancelada")},
				{Value: 5, State: domain.IntPtr(2), Color: "#750B1C", Labels: labels("Out-Sold", "Vendida pela Concorrência")},
			},
		},
		{
			LogicalName:   "prioritycode",
			DisplayLabels: labels("Priority", "Prioridade"),
			Options: []app.OptionMetadata{
				{Value: 1, Color: "#D13438", Labels: labels("High", "Alta")},
				{Value: 2, Labels: labels("Normal", "Normal")},
				{Value: 3, Color: "#8A8886", Labels: labels("Low", "Baixa")},
			},
		},
	}
}
