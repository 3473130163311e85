package export

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

func newTestExporter() *Exporter {
	return New(WithClock(func() time.Time { return fixedNow }))
}

// sampleRecords decodes a JSON array the way API responses arrive.
func sampleRecords(t *testing.T) []any {
	t.Helper()
	var records []any
	require.NoError(t, json.Unmarshal([]byte(`[
		{
			"formattedAddress": "5500 Grand Lake Dr, San Antonio, TX 78244",
			"city": "San Antonio",
			"state": "TX",
			"zipCode": "78244",
			"county": "Bexar",
			"propertyType": "Single Family",
			"bedrooms": 3,
			"bathrooms": 2,
			"squareFootage": 1878,
			"lotSize": 8843,
			"yearBuilt": 1973,
			"assessorID": "05076-103-0500",
			"lastSaleDate": "2017-10-19T00:00:00.000Z",
			"lastSalePrice": 185000,
			"ownerOccupied": true,
			"zoning": "RH",
			"owner": {"names": ["Michael Smith"], "type": "Individual"},
			"features": {"architectureType": "Contemporary", "cooling": true, "garage": true, "garageSpaces": 2, "heating": true},
			"taxAssessments": {
				"2023": {"value": 225790, "land": 59380, "improvements": 166410},
				"2022": {"value": 204890, "land": 59380, "improvements": 145510}
			},
			"propertyTaxes": {"2023": {"total": 5302}}
		},
		{
			"formattedAddress": "1 Main St",
			"bedrooms": 2.5
		}
	]`), &records))
	return records
}
