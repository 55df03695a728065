package builtin

import "github.com/rileyhilliard/lsview/internal/registry"

func options() []*registry.OptionSpec {
	return []*registry.OptionSpec{
		{
			ID:      "ts_format",
			Title:   "Time stamp format",
			Default: TSMixed,
			Choices: []registry.Choice{
				{Value: TSMixed, Title: "Mixed"},
				{Value: TSAbs, Title: "Absolute"},
				{Value: TSRel, Title: "Relative"},
				{Value: TSBoth, Title: "Both"},
				{Value: TSEpoch, Title: "Unix Timestamp (Epoch)"},
			},
		},
		{
			ID:      "ts_date",
			Title:   "Date format",
			Default: DefaultDateFormat,
			Choices: []registry.Choice{
				{Value: "%Y-%m-%d", Title: "1970-12-18"},
				{Value: "%d.%m.%Y", Title: "18.12.1970"},
				{Value: "%m/%d/%Y", Title: "12/18/1970"},
				{Value: "%d.%m.", Title: "18.12."},
				{Value: "%m/%d", Title: "12/18"},
			},
		},
	}
}

func layouts() []*registry.Layout {
	return []*registry.Layout{
		{ID: "table", Title: "Table"},
		{ID: "boxed", Title: "Balanced boxes"},
		{ID: "csv", Title: "CSV data export", CSVExport: true},
	}
}
