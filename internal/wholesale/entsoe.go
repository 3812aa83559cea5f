package wholesale

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"PowerPrice/internal/httputil"
	"PowerPrice/internal/model"
)

// EIC area codes for the bidding zones we know by name.
var EICCodes = map[model.PriceZone]string{
	"NO_1":  "10YNO-1--------2",
	"NO_2":  "10YNO-2--------T",
	"NO_3":  "10YNO-3--------J",
	"NO_4":  "10YNO-4--------9",
	"NO_5":  "10Y1001A1001A48H",
	"SE_1":  "10Y1001A1001A44P",
	"SE_2":  "10Y1001A1001A45N",
	"SE_3":  "10Y1001A1001A46L",
	"SE_4":  "10Y1001A1001A47J",
	"DK_1":  "10YDK-1--------W",
	"DK_2":  "10YDK-2--------M",
	"FI":    "10YFI-1--------U",
	"DE_LU": "10Y1001A1001A82H",
	"NL":    "10YNL----------L",
}

const (
	entsoeTimeLayout  = "200601021504"
	entsoeStampLayout = "2006-01-02T15:04Z07:00"
)

// ENTSOEFetcher implements Fetcher using the ENTSO-E Transparency Platform REST API.
type ENTSOEFetcher struct {
	BaseURL  string
	Token    string
	Client   *http.Client
	Retry    httputil.RetryConfig
	Location *time.Location
	log      *slog.Logger
}

// NewENTSOEFetcher creates a fetcher whose timestamps are reported in loc.
func NewENTSOEFetcher(baseURL, token string, client *http.Client, loc *time.Location, log *slog.Logger) *ENTSOEFetcher {
	return &ENTSOEFetcher{
		BaseURL:  baseURL,
		Token:    token,
		Client:   client,
		Retry:    httputil.DefaultRetry,
		Location: loc,
		log:      log,
	}
}

func (f *ENTSOEFetcher) Name() string { return "entsoe" }

// areaCode maps a zone name to its EIC; raw EICs pass through.
func areaCode(zone model.PriceZone) (string, error) {
	if code, ok := EICCodes[zone]; ok {
		return code, nil
	}
	if len(zone) == 16 && strings.HasPrefix(string(zone), "10Y") {
		return string(zone), nil
	}
	return "", fmt.Errorf("unknown price zone %q", zone)
}

// marketDocument covers both Publication_MarketDocument and
// Acknowledgement_MarketDocument; namespaces are ignored.
type marketDocument struct {
	XMLName    xml.Name
	TimeSeries []timeSeries `xml:"TimeSeries"`
	Reasons    []reason     `xml:"Reason"`
}

type reason struct {
	Code string `xml:"code"`
	Text string `xml:"text"`
}

type timeSeries struct {
	Currency  string   `xml:"currency_Unit.name"`
	Unit      string   `xml:"price_Measure_Unit.name"`
	CurveType string   `xml:"curveType"`
	Periods   []period `xml:"Period"`
}

type period struct {
	Interval struct {
		Start string `xml:"start"`
		End   string `xml:"end"`
	} `xml:"timeInterval"`
	Resolution string  `xml:"resolution"`
	Points     []point `xml:"Point"`
}

type point struct {
	Position int    `xml:"position"`
	Price    string `xml:"price.amount"`
}

func (d *marketDocument) reasonText() string {
	texts := make([]string, 0, len(d.Reasons))
	for _, r := range d.Reasons {
		texts = append(texts, fmt.Sprintf("%s %s", r.Code, r.Text))
	}
	return strings.Join(texts, "; ")
}

// FetchDayAhead queries the A44 day-ahead document for zone over [start, end).
func (f *ENTSOEFetcher) FetchDayAhead(ctx context.Context, zone model.PriceZone, start, end time.Time) ([]model.RawPoint, error) {
	code, err := areaCode(zone)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("securityToken", f.Token)
	params.Set("documentType", "A44")
	params.Set("in_Domain", code)
	params.Set("out_Domain", code)
	params.Set("periodStart", start.UTC().Format(entsoeTimeLayout))
	params.Set("periodEnd", end.UTC().Format(entsoeTimeLayout))
	endpoint := fmt.Sprintf("%s?%s", f.BaseURL, params.Encode())

	resp, err := httputil.Do(ctx, f.Client, f.Retry, f.log, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	})
	if err != nil {
		return nil, fmt.Errorf("entsoe fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("entsoe read body: %w", err)
	}

	var doc marketDocument
	decodeErr := xml.Unmarshal(body, &doc)

	if resp.StatusCode != http.StatusOK {
		if decodeErr == nil && len(doc.Reasons) > 0 {
			return nil, fmt.Errorf("entsoe: status %d: %s", resp.StatusCode, doc.reasonText())
		}
		return nil, fmt.Errorf("entsoe: status %d", resp.StatusCode)
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("entsoe decode: %w", decodeErr)
	}
	if doc.XMLName.Local == "Acknowledgement_MarketDocument" {
		return nil, fmt.Errorf("entsoe: %s", doc.reasonText())
	}

	points, err := doc.hourly()
	if err != nil {
		return nil, err
	}
	points = clip(points, start, end)
	if len(points) == 0 {
		return nil, fmt.Errorf("entsoe: no data returned for %s", zone)
	}

	loc := f.Location
	if loc == nil {
		loc = time.UTC
	}
	for i := range points {
		points[i].Time = points[i].Time.In(loc)
	}

	f.log.Debug("day-ahead prices fetched", "zone", zone, "points", len(points),
		"currency", doc.TimeSeries[0].Currency)
	return points, nil
}

// parseResolution understands PTnM and PTnH.
func parseResolution(s string) (time.Duration, error) {
	if !strings.HasPrefix(s, "PT") || len(s) < 4 {
		return 0, fmt.Errorf("unsupported resolution %q", s)
	}
	n, err := strconv.Atoi(s[2 : len(s)-1])
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("unsupported resolution %q", s)
	}
	switch s[len(s)-1] {
	case 'M':
		return time.Duration(n) * time.Minute, nil
	case 'H':
		return time.Duration(n) * time.Hour, nil
	}
	return 0, fmt.Errorf("unsupported resolution %q", s)
}

// expand turns a period into one point per slot. Positions missing from the
// document (curve type A03) repeat the previous price.
func (p period) expand() ([]model.RawPoint, time.Duration, error) {
	res, err := parseResolution(p.Resolution)
	if err != nil {
		return nil, 0, err
	}
	start, err := time.Parse(entsoeStampLayout, p.Interval.Start)
	if err != nil {
		return nil, 0, fmt.Errorf("period start: %w", err)
	}
	end, err := time.Parse(entsoeStampLayout, p.Interval.End)
	if err != nil {
		return nil, 0, fmt.Errorf("period end: %w", err)
	}

	byPos := make(map[int]decimal.Decimal, len(p.Points))
	for _, pt := range p.Points {
		price, err := decimal.NewFromString(strings.TrimSpace(pt.Price))
		if err != nil {
			return nil, 0, fmt.Errorf("price at position %d: %w", pt.Position, err)
		}
		byPos[pt.Position] = price
	}

	slots := int(end.Sub(start) / res)
	out := make([]model.RawPoint, 0, slots)
	var (
		last decimal.Decimal
		have bool
	)
	for pos := 1; pos <= slots; pos++ {
		if price, ok := byPos[pos]; ok {
			last, have = price, true
		}
		if !have {
			continue
		}
		out = append(out, model.RawPoint{Time: start.Add(time.Duration(pos-1) * res), Price: last})
	}
	return out, res, nil
}

// hourly flattens the document into ascending hourly points. Hourly periods are
// preferred; finer periods are averaged per hour only when no hourly data exists.
func (d *marketDocument) hourly() ([]model.RawPoint, error) {
	var hourlyPts, finePts []model.RawPoint
	for _, ts := range d.TimeSeries {
		for _, p := range ts.Periods {
			pts, res, err := p.expand()
			if err != nil {
				return nil, fmt.Errorf("entsoe: %w", err)
			}
			switch {
			case res == time.Hour:
				hourlyPts = append(hourlyPts, pts...)
			case res < time.Hour:
				finePts = append(finePts, pts...)
			}
		}
	}

	points := hourlyPts
	if len(points) == 0 {
		points = averageHourly(finePts)
	}

	sort.SliceStable(points, func(i, j int) bool { return points[i].Time.Before(points[j].Time) })
	out := points[:0]
	for _, p := range points {
		if len(out) > 0 && out[len(out)-1].Time.Equal(p.Time) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func averageHourly(points []model.RawPoint) []model.RawPoint {
	type bucket struct {
		sum   decimal.Decimal
		count int64
	}
	buckets := make(map[int64]*bucket)
	var order []int64
	for _, p := range points {
		key := p.Time.Truncate(time.Hour).Unix()
		b, ok := buckets[key]
		if !ok {
			b = &bucket{}
			buckets[key] = b
			order = append(order, key)
		}
		b.sum = b.sum.Add(p.Price)
		b.count++
	}
	out := make([]model.RawPoint, 0, len(order))
	for _, key := range order {
		b := buckets[key]
		out = append(out, model.RawPoint{
			Time:  time.Unix(key, 0).UTC(),
			Price: b.sum.Div(decimal.NewFromInt(b.count)),
		})
	}
	return out
}

func clip(points []model.RawPoint, start, end time.Time) []model.RawPoint {
	out := points[:0]
	for _, p := range points {
		if p.Time.Before(start) || !p.Time.Before(end) {
			continue
		}
		out = append(out, p)
	}
	return out
}
