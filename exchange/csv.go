package exchange

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/soprimec/rental-engine/rental"
)

// TenantsCSVFilename is the download name of the tenant export.
const TenantsCSVFilename = "soprimec_locataires.csv"

var tenantsHeader = []string{
	"Code", "Nom", "Téléphone", "Bien", "Immeuble", "Appartement", "Adresse", "Loyer", "Arriérés", "Statut",
}

// WriteTenantsCSV writes one line per tenant with its property details and
// arrears as of today. Amounts are plain integers so spreadsheets read
// them as numbers. Tenants whose arrears cannot be computed show 0.
func WriteTenantsCSV(w io.Writer, data rental.DataSet, today time.Time) error {
	properties := make(map[string]rental.Property, len(data.Properties))
	for _, p := range data.Properties {
		properties[p.Code] = p
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(tenantsHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, t := range data.Tenants {
		var owed rental.Amount
		if arr, err := rental.ComputeArrears(t, data.Payments, today); err == nil {
			owed = arr.TotalOwed
		}
		p := properties[t.PropertyCode]
		record := []string{
			t.Code,
			t.Name,
			t.Phone,
			t.PropertyCode,
			p.Building,
			p.Unit,
			p.Address,
			strconv.FormatInt(int64(t.Rent), 10),
			strconv.FormatInt(int64(owed), 10),
			string(t.Status),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write tenant %s: %w", t.Code, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
