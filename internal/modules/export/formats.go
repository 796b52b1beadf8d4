package export

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aristath/reinsim/internal/domain"
)

// ErrUnknownFormat is returned for export formats other than csv, json and msgpack
var ErrUnknownFormat = errors.New("unknown export format")

// Format is an export encoding
type Format string

const (
	FormatCSV     Format = "csv"
	FormatJSON    Format = "json"
	FormatMsgpack Format = "msgpack"
)

// BaseFilename is the download name without extension
const BaseFilename = "simulation_results"

// ParseFormat parses a format name. An empty string selects CSV.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatMsgpack:
		return FormatMsgpack, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// ContentType returns the MIME type of the format
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatMsgpack:
		return "application/msgpack"
	default:
		return "text/csv"
	}
}

// Filename returns the download file name, e.g. simulation_results.csv
func (f Format) Filename() string {
	return BaseFilename + "." + string(f)
}

// Document is the structured export of a run (json and msgpack formats)
type Document struct {
	ID             string             `json:"id" msgpack:"id"`
	Portfolio      string             `json:"portfolio" msgpack:"portfolio"`
	PolicyCount    int                `json:"policy_count" msgpack:"policy_count"`
	MeanLoss       float64            `json:"mean_loss" msgpack:"mean_loss"`
	StdDev         float64            `json:"std_dev" msgpack:"std_dev"`
	SimulatedYears int                `json:"simulated_years" msgpack:"simulated_years"`
	Seed           *uint64            `json:"seed,omitempty" msgpack:"seed,omitempty"`
	AnnualLoss     []float64          `json:"annual_loss" msgpack:"annual_loss"`
	Summary        domain.RiskSummary `json:"summary" msgpack:"summary"`
	CreatedAt      time.Time          `json:"created_at" msgpack:"created_at"`
}

// NewDocument builds the export document of run
func NewDocument(run *domain.Run) Document {
	return Document{
		ID:             run.ID,
		Portfolio:      run.Config.Kind.String(),
		PolicyCount:    run.Config.PolicyCount,
		MeanLoss:       run.Config.MeanLoss,
		StdDev:         run.Config.StdDev,
		SimulatedYears: run.Config.SimulatedYears,
		Seed:           run.Seed,
		AnnualLoss:     run.Series.Values(),
		Summary:        run.Summary,
		CreatedAt:      run.CreatedAt.UTC(),
	}
}
