package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"optionquotes-service/internal/application"
	"optionquotes-service/internal/domain"
	"optionquotes-service/internal/infrastructure/httpx"
	"optionquotes-service/internal/infrastructure/logx"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const chainPath = "/v1/options/chain/"

// ChainFetcher pulls one option chain per (symbol, expiration) from the vendor API.
type ChainFetcher struct {
	BaseURL string
	Client  *httpx.Client
}

var _ application.QuoteFetcher = (*ChainFetcher)(nil)

type chainResp struct {
	Status  string        `json:"status"`
	Updated int64         `json:"updated"`
	Message string        `json:"message,omitempty"`
	Options []chainOption `json:"options"`
}

type chainOption struct {
	Symbol         string          `json:"symbol"`
	Underlying     string          `json:"underlying"`
	Expiration     string          `json:"expiration"`
	ExpirationType string          `json:"expiration_type"`
	Side           string          `json:"side"`
	Strike         json.Number     `json:"strike"`
	Ask            json.RawMessage `json:"ask"`
	Bid            json.RawMessage `json:"bid"`
	Mid            json.RawMessage `json:"mid"`
	Close          json.RawMessage `json:"close"`
	High           json.RawMessage `json:"high"`
	Last           json.RawMessage `json:"last"`
	Low            json.RawMessage `json:"low"`
	Open           json.RawMessage `json:"open"`
	PreviousClose  json.RawMessage `json:"previous_close"`
	Updated        int64           `json:"updated"`
}

func (f *ChainFetcher) FetchQuoteRecords(ctx context.Context, token domain.Token, symbol string, expiration time.Time) ([]domain.QuoteRecord, error) {
	if f.BaseURL == "" {
		return nil, errors.New("chain fetcher: missing base url")
	}
	if token.Value == "" {
		return nil, fmt.Errorf("chain fetcher: %w: empty token", application.ErrAuth)
	}

	u, err := url.Parse(f.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("chain fetcher: invalid base url: %w", err)
	}
	u.Path = strings.TrimRight(u.Path, "/") + chainPath + url.PathEscape(symbol)
	q := u.Query()
	q.Set("expiration", expiration.Format(domain.DateLayout))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("chain fetcher: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token.Value)

	client := f.Client
	if client == nil {
		client = &httpx.Client{}
	}
	var body chainResp
	if err := client.DoJSON(ctx, req, &body); err != nil {
		var se *httpx.StatusError
		if errors.As(err, &se) && (se.Code == http.StatusUnauthorized || se.Code == http.StatusForbidden) {
			return nil, fmt.Errorf("chain fetcher %s: %w: %v", symbol, application.ErrAuth, err)
		}
		return nil, fmt.Errorf("chain fetcher %s: %w", symbol, err)
	}
	switch body.Status {
	case "ok":
	case "no_data":
		return []domain.QuoteRecord{}, nil
	default:
		return nil, fmt.Errorf("chain fetcher %s: status %q %s", symbol, body.Status, body.Message)
	}

	fallback := time.Now().UTC()
	if body.Updated > 0 {
		fallback = time.Unix(body.Updated, 0).UTC()
	}

	out := make([]domain.QuoteRecord, 0, len(body.Options))
	for _, o := range body.Options {
		rec, err := o.record(fallback)
		if err != nil {
			logx.L().Warn("provider.skip_option",
				zap.String("symbol", symbol),
				zap.String("option_symbol", o.Symbol),
				zap.Error(err))
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (o chainOption) record(fallback time.Time) (domain.QuoteRecord, error) {
	exp, err := domain.ParseDate(o.Expiration)
	if err != nil {
		return domain.QuoteRecord{}, err
	}
	et, err := expirationType(o.ExpirationType)
	if err != nil {
		return domain.QuoteRecord{}, err
	}
	ot, err := optionType(o.Side)
	if err != nil {
		return domain.QuoteRecord{}, err
	}
	strike, err := decimal.NewFromString(o.Strike.String())
	if err != nil {
		return domain.QuoteRecord{}, fmt.Errorf("strike %q: %w", o.Strike, err)
	}
	observed := fallback
	if o.Updated > 0 {
		observed = time.Unix(o.Updated, 0).UTC()
	}
	return domain.QuoteRecord{
		UnderlyingSymbol: o.Underlying,
		OptionSymbol:     o.Symbol,
		ExpirationDate:   exp,
		ExpirationType:   et,
		Strike:           strike,
		OptionType:       ot,
		Ask:              optionalDecimal(o.Ask),
		Bid:              optionalDecimal(o.Bid),
		Mid:              optionalDecimal(o.Mid),
		Close:            optionalDecimal(o.Close),
		High:             optionalDecimal(o.High),
		Last:             optionalDecimal(o.Last),
		Low:              optionalDecimal(o.Low),
		Open:             optionalDecimal(o.Open),
		PreviousClose:    optionalDecimal(o.PreviousClose),
		ObservedAt:       observed,
	}, nil
}

func expirationType(s string) (domain.ExpirationType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "W", "WEEKLY":
		return domain.ExpirationWeekly, nil
	case "M", "MONTHLY":
		return domain.ExpirationMonthly, nil
	}
	return "", fmt.Errorf("unknown expiration type %q", s)
}

func optionType(s string) (domain.OptionType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "C", "CALL":
		return domain.OptionCall, nil
	case "P", "PUT":
		return domain.OptionPut, nil
	}
	return "", fmt.Errorf("unknown option side %q", s)
}

// optionalDecimal accepts a JSON number or numeric string. Anything else,
// including null and placeholders like "-" or "N/A", is absent.
func optionalDecimal(raw json.RawMessage) decimal.NullDecimal {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return decimal.NullDecimal{}
	}
	if strings.HasPrefix(s, `"`) {
		unq, err := strconv.Unquote(s)
		if err != nil {
			return decimal.NullDecimal{}
		}
		s = strings.TrimSpace(unq)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}
}
