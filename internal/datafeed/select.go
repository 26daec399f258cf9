package datafeed

import (
	"barfeed/internal/config"
	"barfeed/internal/vendors/jqdata"
	"barfeed/internal/vendors/rqdata"
)

// HTTPClient is satisfied by both vendor clients' transport.
type HTTPClient interface {
	rqdata.HTTPClient
	jqdata.HTTPClient
}

// New picks the vendor from cfg: RQData when both its username and password
// are set, JQData otherwise. The returned datafeed is not yet initialized.
func New(cfg config.Config, httpClient HTTPClient) (Datafeed, error) {
	if cfg.RQData.Username != "" && cfg.RQData.Password != "" {
		client, err := rqdata.NewRQDataAPIClient(
			rqdata.WithHTTPClient(httpClient),
			rqdata.WithAuthURL(cfg.RQData.AuthURL),
			rqdata.WithAPIURL(cfg.RQData.APIURL),
		)
		if err != nil {
			return nil, err
		}
		return NewRQDatafeed(client, cfg.RQData.Username, cfg.RQData.Password, cfg.RQData.InstrumentTypes), nil
	}

	client, err := jqdata.NewJQDataAPIClient(
		jqdata.WithHTTPClient(httpClient),
		jqdata.WithURL(cfg.JQData.URL),
	)
	if err != nil {
		return nil, err
	}
	return NewJQDatafeed(client, cfg.JQData.Username, cfg.JQData.Password, cfg.JQData.SecurityTypes), nil
}
