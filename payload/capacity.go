// ABOUTME: Advisory capacity estimator for QR payloads
// ABOUTME: Compares payload sizes against per-level QR byte ceilings
package payload

import (
	"bytes"
	"math"

	"github.com/klauspost/compress/flate"

	"github.com/mycrew/mycrew/models"
)

// CompressionRatio approximates typical text compression for this payload
// shape. It is a heuristic, not a measurement.
const CompressionRatio = 0.65

// Level is a QR error-correction level.
type Level string

const (
	LevelLow      Level = "L"
	LevelMedium   Level = "M"
	LevelQuartile Level = "Q"
	LevelHigh     Level = "H"
)

// Ceiling is the approximate byte capacity of the largest symbol at a level.
type Ceiling struct {
	Level Level
	Bytes int
}

// Ceilings are ordered from most to least capacity.
var Ceilings = []Ceiling{
	{LevelLow, 2953},
	{LevelMedium, 2331},
	{LevelQuartile, 1663},
	{LevelHigh, 1273},
}

type LevelFit struct {
	Level   Level `json:"level"`
	Ceiling int   `json:"ceiling"`
	Fits    bool  `json:"fits"`
}

type Estimate struct {
	Count               int        `json:"count"`
	RawBytes            int        `json:"raw_bytes"`
	EstimatedCompressed int        `json:"estimated_compressed"`
	MeasuredCompressed  int        `json:"measured_compressed"`
	Levels              []LevelFit `json:"levels"`
	Feasible            bool       `json:"feasible"`
	RecommendedLevel    Level      `json:"recommended_level,omitempty"`
	// RenderLevel is the most robust level whose ceiling holds RawBytes.
	// The renderer encodes the raw text, so this is the level to draw with.
	RenderLevel Level `json:"render_level"`
	MaxBatchSize        int        `json:"max_batch_size"`
}

type Comparison struct {
	FullBytes        int     `json:"full_bytes"`
	ShortBytes       int     `json:"short_bytes"`
	ReductionPercent float64 `json:"reduction_percent"`
}

// EstimateContact sizes the single-contact payload.
func EstimateContact(c models.Contact) Estimate {
	text, _ := marshal(singlePayload(c))
	est := estimate(text, 1)
	est.MaxBatchSize = 1
	return est
}

// EstimateContacts sizes the multi-contact payload and works out how many
// contacts of this average size fit under the most permissive ceiling.
func EstimateContacts(cs []models.Contact) Estimate {
	if len(cs) == 0 {
		return Estimate{Levels: levelFits(0), Feasible: true, RecommendedLevel: LevelHigh, RenderLevel: LevelHigh}
	}
	if len(cs) == 1 {
		return EstimateContact(cs[0])
	}

	text, _ := marshal(listPayload(cs))
	est := estimate(text, len(cs))

	average := float64(est.RawBytes) / float64(len(cs))
	if average > 0 {
		est.MaxBatchSize = int(math.Floor(float64(Ceilings[0].Bytes) / average))
	}
	return est
}

func estimate(text string, count int) Estimate {
	raw := len(text)
	compressed := int(math.Ceil(float64(raw) * CompressionRatio))

	est := Estimate{
		Count:               count,
		RawBytes:            raw,
		EstimatedCompressed: compressed,
		MeasuredCompressed:  deflateSize(text),
		Levels:              levelFits(compressed),
	}
	est.Feasible = compressed <= Ceilings[0].Bytes
	for i := len(est.Levels) - 1; i >= 0; i-- {
		if est.Levels[i].Fits {
			est.RecommendedLevel = est.Levels[i].Level
			break
		}
	}
	est.RenderLevel = renderLevel(raw)
	return est
}

// renderLevel falls back to LevelLow when nothing fits; the renderer then
// reports the payload as too long.
func renderLevel(raw int) Level {
	for i := len(Ceilings) - 1; i >= 0; i-- {
		if raw <= Ceilings[i].Bytes {
			return Ceilings[i].Level
		}
	}
	return LevelLow
}

func levelFits(size int) []LevelFit {
	fits := make([]LevelFit, len(Ceilings))
	for i, c := range Ceilings {
		fits[i] = LevelFit{Level: c.Level, Ceiling: c.Bytes, Fits: size <= c.Bytes}
	}
	return fits
}

// deflateSize is informative only; the renderer does not compress.
func deflateSize(text string) int {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.BestCompression)
	if err != nil {
		return 0
	}
	if _, err := w.Write([]byte(text)); err != nil {
		return 0
	}
	if err := w.Close(); err != nil {
		return 0
	}
	return buf.Len()
}

type shortLocation struct {
	Country         string `json:"c"`
	Region          string `json:"r,omitempty"`
	IsLocalResident bool   `json:"lr,omitempty"`
	HasVehicle      bool   `json:"v,omitempty"`
	IsHoused        bool   `json:"h,omitempty"`
	IsPrimary       bool   `json:"pr,omitempty"`
}

type shortContact struct {
	FirstName string          `json:"f"`
	LastName  string          `json:"l"`
	JobTitle  string          `json:"j"`
	Phone     string          `json:"p"`
	Email     string          `json:"e"`
	Locations []shortLocation `json:"lc,omitempty"`
}

type shortEnvelope struct {
	Type    string `json:"t"`
	Version string `json:"v"`
	Data    any    `json:"d"`
}

func shorten(c models.Contact) shortContact {
	w := reduce(c, true)
	sc := shortContact{
		FirstName: w.FirstName,
		LastName:  w.LastName,
		JobTitle:  w.JobTitle,
		Phone:     w.Phone,
		Email:     w.Email,
	}
	for _, l := range w.Locations {
		sc.Locations = append(sc.Locations, shortLocation(l))
	}
	return sc
}

// Compare sizes the regular encoding against a key-shortened one that also
// drops secondary locations. The shortened form is for comparison only and
// is never decoded.
func Compare(cs []models.Contact) Comparison {
	if len(cs) == 0 {
		return Comparison{}
	}

	var full string
	short := shortEnvelope{Version: Version}
	if len(cs) == 1 {
		full, _ = marshal(singlePayload(cs[0]))
		short.Type = TypeContact
		short.Data = shorten(cs[0])
	} else {
		full, _ = marshal(listPayload(cs))
		short.Type = TypeContactList
		data := make([]shortContact, len(cs))
		for i, c := range cs {
			data[i] = shorten(c)
		}
		short.Data = data
	}
	shortText, _ := marshal(short)

	cmp := Comparison{FullBytes: len(full), ShortBytes: len(shortText)}
	if cmp.FullBytes > 0 {
		pct := float64(cmp.FullBytes-cmp.ShortBytes) / float64(cmp.FullBytes) * 100
		cmp.ReductionPercent = math.Round(pct*10) / 10
	}
	return cmp
}
