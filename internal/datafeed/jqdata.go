package datafeed

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"barfeed/internal/model"
	"barfeed/internal/vendors/jqdata"
)

// JQSource tags bars fetched from JQData.
const JQSource = "JQ"

// JQDatafeed serves history from JQData.
type JQDatafeed struct {
	client        *jqdata.JQDataAPIClient
	username      string
	password      string
	securityTypes []string
	now           clock

	inited  bool
	symbols map[string]struct{}
}

// NewJQDatafeed wraps client. username is the account's mobile number.
func NewJQDatafeed(client *jqdata.JQDataAPIClient, username, password string, securityTypes []string) *JQDatafeed {
	if len(securityTypes) == 0 {
		securityTypes = jqdata.DefaultSecurityTypes
	}
	return &JQDatafeed{
		client:        client,
		username:      username,
		password:      password,
		securityTypes: securityTypes,
		now:           time.Now,
	}
}

func (d *JQDatafeed) Name() string { return JQSource }

// Inited reports whether Init has succeeded.
func (d *JQDatafeed) Inited() bool { return d.inited }

// Init logs in and loads today's security list. A second call after success
// is a no-op.
func (d *JQDatafeed) Init(ctx context.Context, username, password string) bool {
	if d.inited {
		return true
	}
	if username != "" && password != "" {
		d.username = username
		d.password = password
	}
	if d.username == "" || d.password == "" {
		return false
	}

	if !d.client.IsAuth() {
		if _, err := d.client.GetToken(ctx, d.username, d.password); err != nil {
			log.WithError(err).WithField("vendor", JQSource).Warn("authentication failed")
			return false
		}
	}

	today := d.now()
	symbols := make(map[string]struct{})
	for _, typ := range d.securityTypes {
		securities, err := d.client.GetAllSecurities(ctx, typ, today)
		if err != nil {
			log.WithError(err).WithFields(log.Fields{"vendor": JQSource, "type": typ}).Warn("loading securities failed")
			return false
		}
		for _, s := range securities {
			symbols[s.Code] = struct{}{}
		}
	}

	d.symbols = symbols
	d.inited = true
	log.WithFields(log.Fields{"vendor": JQSource, "instruments": len(symbols)}).Info("datafeed initialized")
	return true
}

// QueryHistory fetches bars for req. An end in the future, or on today's
// date, is clamped to now.
func (d *JQDatafeed) QueryHistory(ctx context.Context, req model.HistoryRequest) ([]model.Bar, bool) {
	if !d.inited {
		return nil, false
	}

	code := ToJQSymbol(req.Symbol, req.Exchange)
	if _, ok := d.symbols[code]; !ok {
		log.WithFields(log.Fields{"vendor": JQSource, "symbol": req.VtSymbol(), "vendor_symbol": code}).Debug("symbol not in universe")
		return nil, false
	}

	unit, ok := VendorInterval(req.Interval)
	if !ok {
		return nil, false
	}
	adjustment := Adjustment(req.Interval)

	end := req.End
	if now := d.now(); !end.Before(now) || sameDay(end, now) {
		end = now
	}

	rows, err := d.client.GetPricePeriod(ctx, jqdata.PricePeriodQuery{
		Code:  code,
		Unit:  unit,
		Start: req.Start,
		End:   end,
	})
	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"vendor":        JQSource,
			"symbol":        req.VtSymbol(),
			"vendor_symbol": code,
			"interval":      req.Interval,
		}).Warn("query history failed")
		return nil, false
	}

	withOI := !isDigits(req.Symbol)
	bars := make([]model.Bar, 0, len(rows))
	for _, r := range rows {
		bar := model.Bar{
			Symbol:     req.Symbol,
			Exchange:   req.Exchange,
			Interval:   req.Interval,
			Datetime:   r.Datetime.Add(-adjustment),
			OpenPrice:  r.Open,
			HighPrice:  r.High,
			LowPrice:   r.Low,
			ClosePrice: r.Close,
			Volume:     r.Volume,
			Source:     JQSource,
		}
		if withOI {
			bar.OpenInterest = r.OpenInterest
		}
		bars = append(bars, bar)
	}
	return bars, true
}

// sameDay compares calendar dates in t's location.
func sameDay(t, now time.Time) bool {
	now = now.In(t.Location())
	y1, m1, d1 := t.Date()
	y2, m2, d2 := now.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

var _ Datafeed = (*JQDatafeed)(nil)
