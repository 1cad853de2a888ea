package currency

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"github.com/tripsplit/tripsplit-backend/logger"
	"github.com/tripsplit/tripsplit-backend/types"
)

// FeedSource is the rate source recorded in the history for feed rates.
const FeedSource = "ecb"

// maxFeedBytes bounds how much of the feed response is read.
const maxFeedBytes = 1 << 20

// FeedClient downloads the daily euro foreign exchange reference rates and
// re-expresses them against the reference currency.
type FeedClient struct {
	url       string
	reference string
	client    *http.Client
}

func NewFeedClient(url, reference string, timeout time.Duration) *FeedClient {
	return &FeedClient{
		url:       url,
		reference: reference,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// FetchRates returns one quote per currency in the feed, each giving the
// number of reference units per unit of that currency.
func (c *FeedClient) FetchRates(ctx context.Context) ([]types.RateQuote, error) {
	body, err := c.fetch(ctx)
	if err != nil {
		return nil, err
	}
	perEUR, err := parseEuroRates(body)
	if err != nil {
		return nil, err
	}
	return crossRates(perEUR, c.reference)
}

func (c *FeedClient) fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/xml")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rate feed request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected rate feed status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read rate feed: %w", err)
	}
	logger.GetLogger().Debugw("Rate feed downloaded", "bytes", len(body))
	return body, nil
}

// parseEuroRates reads <Cube currency="USD" rate="1.0746"/> entries. The
// result maps a code to its units per one euro and always contains EUR.
func parseEuroRates(raw []byte) (map[string]decimal.Decimal, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(raw); err != nil {
		return nil, fmt.Errorf("failed to parse rate feed XML: %w", err)
	}

	cubes := doc.FindElements("//Cube[@currency]")
	if len(cubes) == 0 {
		return nil, fmt.Errorf("no rates found in rate feed")
	}

	log := logger.GetLogger()
	perEUR := map[string]decimal.Decimal{"EUR": decimal.NewFromInt(1)}
	for _, cube := range cubes {
		code := cube.SelectAttrValue("currency", "")
		rate, err := decimal.NewFromString(cube.SelectAttrValue("rate", ""))
		if err != nil || !rate.IsPositive() || len(code) != 3 {
			log.Warnw("Skipping malformed rate feed entry", "currency", code, "rate", cube.SelectAttrValue("rate", ""))
			continue
		}
		perEUR[code] = rate
	}
	return perEUR, nil
}

// rateScale matches the NUMERIC(24, 12) rate columns.
const rateScale = 12

// crossRates turns units-per-euro into reference units per unit of each
// currency: refPerEUR / codePerEUR.
func crossRates(perEUR map[string]decimal.Decimal, reference string) ([]types.RateQuote, error) {
	refPerEUR, ok := perEUR[reference]
	if !ok {
		return nil, fmt.Errorf("rate feed has no rate for reference currency %s", reference)
	}

	quotes := make([]types.RateQuote, 0, len(perEUR)-1)
	for code, codePerEUR := range perEUR {
		if code == reference {
			continue
		}
		quotes = append(quotes, types.RateQuote{
			Code: code,
			Rate: refPerEUR.DivRound(codePerEUR, rateScale),
		})
	}
	sort.Slice(quotes, func(i, j int) bool { return quotes[i].Code < quotes[j].Code })
	return quotes, nil
}
