package datafeed

import (
	"context"

	log "github.com/sirupsen/logrus"

	"barfeed/internal/model"
	"barfeed/internal/vendors/rqdata"
)

// RQSource tags bars fetched from RQData.
const RQSource = "RQ"

var rqBaseFields = []string{"open", "high", "low", "close", "volume"}

// RQDatafeed serves history from RQData.
type RQDatafeed struct {
	client          *rqdata.RQDataAPIClient
	username        string
	password        string
	instrumentTypes []string

	inited  bool
	symbols map[string]struct{}
}

// NewRQDatafeed wraps client. username and password are the stored
// credentials used when Init is called without explicit ones.
func NewRQDatafeed(client *rqdata.RQDataAPIClient, username, password string, instrumentTypes []string) *RQDatafeed {
	if len(instrumentTypes) == 0 {
		instrumentTypes = rqdata.DefaultInstrumentTypes
	}
	return &RQDatafeed{
		client:          client,
		username:        username,
		password:        password,
		instrumentTypes: instrumentTypes,
	}
}

func (d *RQDatafeed) Name() string { return RQSource }

// Inited reports whether Init has succeeded.
func (d *RQDatafeed) Inited() bool { return d.inited }

// Init authenticates and loads the instrument universe. A second call after
// success is a no-op.
func (d *RQDatafeed) Init(ctx context.Context, username, password string) bool {
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
		if _, err := d.client.Authenticate(ctx, d.username, d.password); err != nil {
			log.WithError(err).WithField("vendor", RQSource).Warn("authentication failed")
			return false
		}
	}

	instruments, err := d.client.AllInstruments(ctx, d.instrumentTypes...)
	if err != nil {
		log.WithError(err).WithField("vendor", RQSource).Warn("loading instruments failed")
		return false
	}
	symbols := make(map[string]struct{}, len(instruments))
	for _, inst := range instruments {
		symbols[inst.OrderBookID] = struct{}{}
	}

	d.symbols = symbols
	d.inited = true
	log.WithFields(log.Fields{"vendor": RQSource, "instruments": len(symbols)}).Info("datafeed initialized")
	return true
}

// QueryHistory fetches bars for req. The vendor end date is exclusive of the
// final day's session, so one day is added to it.
func (d *RQDatafeed) QueryHistory(ctx context.Context, req model.HistoryRequest) ([]model.Bar, bool) {
	if !d.inited {
		return nil, false
	}

	orderBookID := ToRQSymbol(req.Symbol, req.Exchange)
	if _, ok := d.symbols[orderBookID]; !ok {
		log.WithFields(log.Fields{"vendor": RQSource, "symbol": req.VtSymbol(), "vendor_symbol": orderBookID}).Debug("symbol not in universe")
		return nil, false
	}

	frequency, ok := VendorInterval(req.Interval)
	if !ok {
		return nil, false
	}
	adjustment := Adjustment(req.Interval)

	fields := rqBaseFields
	withOI := !isDigits(req.Symbol)
	if withOI {
		fields = append(append([]string(nil), rqBaseFields...), "open_interest")
	}

	rows, err := d.client.GetPrice(ctx, rqdata.PriceQuery{
		OrderBookID: orderBookID,
		Start:       req.Start,
		End:         req.End.AddDate(0, 0, 1),
		Frequency:   frequency,
		Fields:      fields,
		AdjustType:  "none",
	})
	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"vendor":        RQSource,
			"symbol":        req.VtSymbol(),
			"vendor_symbol": orderBookID,
			"interval":      req.Interval,
		}).Warn("query history failed")
		return nil, false
	}

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
			Source:     RQSource,
		}
		if withOI {
			bar.OpenInterest = r.OpenInterest
		}
		bars = append(bars, bar)
	}
	return bars, true
}

var _ Datafeed = (*RQDatafeed)(nil)
