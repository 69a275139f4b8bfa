package reports

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"

	"staffhub/internal/domain/access"
)

// MatrixRow is one permission with the effective decision for every role.
type MatrixRow struct {
	Permission  access.Permission `json:"permission"`
	Description string            `json:"description"`
	Grants      []bool            `json:"grants"`
}

// Matrix is the effective role by permission grid. Grants include the super
// admin override, so the super admin column is always true.
type Matrix struct {
	Roles []access.Role `json:"roles"`
	Rows  []MatrixRow   `json:"rows"`
}

func BuildMatrix(table *access.Table) Matrix {
	roles := access.AllRoles()
	out := Matrix{Roles: roles, Rows: make([]MatrixRow, 0, len(table.Permissions()))}
	for _, entry := range table.Entries() {
		row := MatrixRow{Permission: entry.Permission, Description: entry.Description, Grants: make([]bool, len(roles))}
		for i, role := range roles {
			row.Grants[i] = table.Can(role, entry.Permission)
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}

func (m Matrix) WriteCSV(w io.Writer) error {
	writer := csv.NewWriter(w)
	header := []string{"permission", "description"}
	for _, role := range m.Roles {
		header = append(header, string(role))
	}
	if err := writer.Write(header); err != nil {
		return err
	}
	for _, row := range m.Rows {
		record := []string{string(row.Permission), row.Description}
		for _, granted := range row.Grants {
			record = append(record, yesNo(granted))
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func (m Matrix) WritePDF(w io.Writer, generatedAt time.Time) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Access matrix")
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Generated %s. Super Admin is granted every permission.", generatedAt.UTC().Format("2006-01-02 15:04 MST")))
	pdf.Ln(10)

	const permWidth, roleWidth, rowHeight = 70.0, 38.0, 7.0
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(permWidth, rowHeight, "Permission", "1", 0, "L", false, 0, "")
	for _, role := range m.Roles {
		pdf.CellFormat(roleWidth, rowHeight, role.Label(), "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, row := range m.Rows {
		pdf.CellFormat(permWidth, rowHeight, row.Description, "1", 0, "L", false, 0, "")
		for _, granted := range row.Grants {
			pdf.CellFormat(roleWidth, rowHeight, yesNo(granted), "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
	}
	return pdf.Output(w)
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
