// Package export writes lead lists to spreadsheet files for handoff to
// sales tooling.
package export

import (
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/prospect-cli/internal/model"
)

var leadHeaders = []string{
	"Name", "Category", "Location", "Address", "Phone",
	"Website", "Web Presence", "Rating", "Reviews",
	"Lead Score", "Qualified", "Maps URL", "Last Seen",
}

// WriteLeads writes the leads to an xlsx workbook at path. Unknown rating or
// review count renders as an empty cell, not a zero.
func WriteLeads(path string, leads []model.Business) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Leads")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, h := range leadHeaders {
		header.AddCell().Value = h
	}

	for _, b := range leads {
		row := sheet.AddRow()
		row.AddCell().Value = b.Name
		row.AddCell().Value = b.Category
		row.AddCell().Value = b.Location
		row.AddCell().Value = b.Address
		row.AddCell().Value = b.Phone
		row.AddCell().Value = b.Website
		row.AddCell().Value = string(b.WebPresence)

		if b.HasRating() {
			row.AddCell().SetFloatWithFormat(b.RatingValue(), "0.0")
		} else {
			row.AddCell()
		}
		if b.HasReviewCount() {
			row.AddCell().SetInt(b.ReviewCountValue())
		} else {
			row.AddCell()
		}

		row.AddCell().SetInt(b.LeadScore)
		row.AddCell().Value = strconv.FormatBool(b.Qualified)
		row.AddCell().Value = b.MapsURL
		row.AddCell().Value = b.LastSeenAt.UTC().Format("2006-01-02 15:04:05")
	}

	if err := file.Save(path); err != nil {
		return eris.Wrapf(err, "export: save %s", path)
	}
	return nil
}
