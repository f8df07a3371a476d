package batch

import (
	"math"
	"strconv"
	"strings"

	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/cable"
	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/models"
)

// Column headers recognised in an inventory export. Matching is case-sensitive
// after trimming surrounding whitespace.
const (
	ColumnMSF        = "MSF"
	ColumnItemName   = "Item Name"
	ColumnItemGroup  = "Item Group"
	ColumnQuantity   = "OnHand Quantity"
	ColumnLocation   = "Current Location"
	ColumnDatacenter = "Datacenter"
)

// row is one raw export line. Every field stays a string so that a bad cell
// never fails decoding.
type row struct {
	MSF        string `csv:"MSF"`
	ItemName   string `csv:"Item Name"`
	ItemGroup  string `csv:"Item Group"`
	Quantity   string `csv:"OnHand Quantity"`
	Location   string `csv:"Current Location"`
	Datacenter string `csv:"Datacenter"`
}

// Record is one accepted row, enriched with extracted attributes and a category.
type Record struct {
	MSF        string
	ItemName   string
	ItemGroup  string
	Quantity   int
	Location   string
	Datacenter string
	Attributes cable.Attributes
	Category   string
}

// Stats counts rows seen and rows kept.
type Stats struct {
	RowsFound    int `json:"rows_found"`
	RowsAccepted int `json:"rows_accepted"`
}

// Result is the output of a parse.
type Result struct {
	Records []Record
	Stats   Stats
}

// toRecord validates and enriches a raw row. Rows without an MSF or an item
// name are rejected.
func (r *row) toRecord() (Record, bool) {
	msf := strings.TrimSpace(r.MSF)
	name := strings.TrimSpace(r.ItemName)
	if msf == "" || name == "" {
		return Record{}, false
	}

	group := strings.TrimSpace(r.ItemGroup)
	attrs := cable.Extract(r.ItemName)

	return Record{
		MSF:        msf,
		ItemName:   name,
		ItemGroup:  group,
		Quantity:   ParseQuantity(r.Quantity),
		Location:   strings.TrimSpace(r.Location),
		Datacenter: strings.TrimSpace(r.Datacenter),
		Attributes: attrs,
		Category:   cable.Classify(r.ItemName, group, attrs),
	}, true
}

// ParseQuantity reads the leading integer of s, after optional whitespace and sign.
// Anything unparsable, any negative value, and any value above the ledger's
// 32-bit quantity column yields 0.
func ParseQuantity(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil || n < 0 || n > math.MaxInt32 {
		return 0
	}
	return n
}

// CatalogEntry converts the record into the shape stored in the catalog.
func (r *Record) CatalogEntry() *models.CatalogEntry {
	return &models.CatalogEntry{
		MSF:              r.MSF,
		ItemName:         r.ItemName,
		ItemGroup:        models.StringPtr(r.ItemGroup),
		Category:         models.StringPtr(r.Category),
		CableType:        models.StringPtr(r.Attributes.CableType),
		CableLength:      models.StringPtr(r.Attributes.LengthDisplay()),
		CableLengthValue: r.Attributes.Length,
		CableLengthUnit:  models.StringPtr(r.Attributes.LengthUnit),
		Speed:            models.StringPtr(r.Attributes.Speed),
		ConnectorType:    models.StringPtr(r.Attributes.ConnectorType),
		Location:         models.StringPtr(r.Location),
		Datacenter:       models.StringPtr(r.Datacenter),
	}
}
