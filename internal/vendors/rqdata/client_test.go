package rqdata_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"barfeed/internal/vendors/rqdata"
)

func textResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func decodePayload(t *testing.T, req *http.Request) map[string]any {
	t.Helper()
	var payload map[string]any
	require.NoError(t, json.NewDecoder(req.Body).Decode(&payload))
	return payload
}

// authenticated returns a client that already holds token "tok".
func authenticated(t *testing.T, httpClient *MockHTTPClient, opts ...rqdata.RQDataAPIClientOption) *rqdata.RQDataAPIClient {
	t.Helper()

	httpClient.EXPECT().
		Do(gomock.Any()).
		Return(textResponse(http.StatusOK, "tok\n"), nil).
		Times(1)

	client, err := rqdata.NewRQDataAPIClient(append([]rqdata.RQDataAPIClientOption{rqdata.WithHTTPClient(httpClient)}, opts...)...)
	require.NoError(t, err)
	_, err = client.Authenticate(context.Background(), "user", "pass")
	require.NoError(t, err)
	return client
}

func TestNewRQDataAPIClient(t *testing.T) {
	t.Parallel()

	// Assert: construction never fails and starts without a token.
	client, err := rqdata.NewRQDataAPIClient()
	require.NoError(t, err)
	require.NotNil(t, client)
	require.False(t, client.IsAuth())
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()

	// Arrange: create a mock controller
	ctrl := gomock.NewController(t)

	// Arrange: create a mock http client
	httpClient := NewMockHTTPClient(ctrl)

	// Assert: credentials are posted to the auth endpoint
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Equal(t, http.MethodPost, req.Method)
			require.Equal(t, "http://auth.local/auth", req.URL.String())
			require.Equal(t, "application/json", req.Header.Get("Content-Type"))

			payload := decodePayload(t, req)
			require.Equal(t, "user", payload["user_name"])
			require.Equal(t, "pass", payload["password"])

			return textResponse(http.StatusOK, "  session-token \n"), nil
		}).
		Times(1)

	client, err := rqdata.NewRQDataAPIClient(rqdata.WithHTTPClient(httpClient), rqdata.WithAuthURL("http://auth.local/auth"))
	require.NoError(t, err)

	// Act
	token, err := client.Authenticate(context.Background(), "user", "pass")

	// Assert: the token is trimmed and retained
	require.NoError(t, err)
	require.Equal(t, "session-token", token)
	require.True(t, client.IsAuth())
}

func TestAuthenticate_Unauthorized(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	httpClient.EXPECT().
		Do(gomock.Any()).
		Return(textResponse(http.StatusUnauthorized, "bad credentials"), nil).
		Times(1)

	client, err := rqdata.NewRQDataAPIClient(rqdata.WithHTTPClient(httpClient))
	require.NoError(t, err)

	_, err = client.Authenticate(context.Background(), "user", "wrong")
	require.ErrorIs(t, err, rqdata.ErrUnauthorized)
	require.False(t, client.IsAuth())
}

func TestAuthenticate_EmptyToken(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	httpClient.EXPECT().
		Do(gomock.Any()).
		Return(textResponse(http.StatusOK, "   "), nil).
		Times(1)

	client, err := rqdata.NewRQDataAPIClient(rqdata.WithHTTPClient(httpClient))
	require.NoError(t, err)

	_, err = client.Authenticate(context.Background(), "user", "pass")
	require.ErrorIs(t, err, rqdata.ErrUnauthorized)
}

func TestAllInstruments_RequiresToken(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)

	// Assert: no request leaves without a token
	httpClient.EXPECT().Do(gomock.Any()).Times(0)

	client, err := rqdata.NewRQDataAPIClient(rqdata.WithHTTPClient(httpClient))
	require.NoError(t, err)

	_, err = client.AllInstruments(context.Background(), "CS")
	require.ErrorIs(t, err, rqdata.ErrNotAuthenticated)
}

func TestAllInstruments(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	client := authenticated(t, httpClient, rqdata.WithAPIURL("http://api.local/api"))

	// Assert: one call per type, token header attached
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Equal(t, "http://api.local/api", req.URL.String())
			require.Equal(t, "tok", req.Header.Get("token"))

			payload := decodePayload(t, req)
			require.Equal(t, "all_instruments", payload["method"])

			switch payload["type"] {
			case "Future":
				return textResponse(http.StatusOK, "order_book_id,symbol,type,exchange\nTA1905,PTA1905,Future,CZCE\nRB88,RB主力连续,Future,SHFE\n"), nil
			case "CS":
				return textResponse(http.StatusOK, "order_book_id,symbol,type,exchange\n600036.XSHG,招商银行,CS,XSHG\n"), nil
			default:
				return textResponse(http.StatusOK, ""), nil
			}
		}).
		Times(3)

	// Act
	instruments, err := client.AllInstruments(context.Background(), "Future", "CS", "ETF")

	// Assert
	require.NoError(t, err)
	require.Len(t, instruments, 3)
	require.Equal(t, "TA1905", instruments[0].OrderBookID)
	require.Equal(t, "RB88", instruments[1].OrderBookID)
	require.Equal(t, "600036.XSHG", instruments[2].OrderBookID)
	require.Equal(t, "CS", instruments[2].Type)
}

func TestGetPrice_Minute(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	client := authenticated(t, httpClient)

	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			payload := decodePayload(t, req)
			require.Equal(t, "get_price", payload["method"])
			require.Equal(t, []any{"TA1905"}, payload["order_book_ids"])
			require.Equal(t, "2019-01-02", payload["start_date"])
			require.Equal(t, "2019-01-04", payload["end_date"])
			require.Equal(t, "1m", payload["frequency"])
			require.Equal(t, "none", payload["adjust_type"])
			require.Equal(t, []any{"open", "high", "low", "close", "volume", "open_interest"}, payload["fields"])

			return textResponse(http.StatusOK,
				"order_book_id,datetime,open,high,low,close,volume,open_interest\n"+
					"TA1905,2019-01-02 09:01:00,5800,5812,5796,5810,1200,450000\n"+
					"TA1905,2019-01-02 09:02:00,5810,5820,5808,5818,900,450200\n"), nil
		}).
		Times(1)

	rows, err := client.GetPrice(context.Background(), rqdata.PriceQuery{
		OrderBookID: "TA1905",
		Start:       time.Date(2019, 1, 2, 0, 0, 0, 0, time.UTC),
		End:         time.Date(2019, 1, 4, 0, 0, 0, 0, time.UTC),
		Frequency:   "1m",
		Fields:      []string{"open", "high", "low", "close", "volume", "open_interest"},
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// 09:01 China time is 01:01 UTC
	require.True(t, rows[0].Datetime.Equal(time.Date(2019, 1, 2, 1, 1, 0, 0, time.UTC)), rows[0].Datetime)
	require.InEpsilon(t, 5800.0, rows[0].Open, 1e-9)
	require.InEpsilon(t, 5818.0, rows[1].Close, 1e-9)
	require.InEpsilon(t, 450200.0, rows[1].OpenInterest, 1e-9)
}

func TestGetPrice_DatesInChinaTime(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	client := authenticated(t, httpClient)

	// Assert: 20:00 UTC is already the next day in China
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			payload := decodePayload(t, req)
			require.Equal(t, "2021-03-02", payload["start_date"])
			require.Equal(t, "2021-03-05", payload["end_date"])
			return textResponse(http.StatusOK, ""), nil
		}).
		Times(1)

	_, err := client.GetPrice(context.Background(), rqdata.PriceQuery{
		OrderBookID: "TA2105",
		Start:       time.Date(2021, 3, 1, 20, 0, 0, 0, time.UTC),
		End:         time.Date(2021, 3, 4, 16, 30, 0, 0, time.UTC),
		Frequency:   "1d",
	})
	require.NoError(t, err)
}

func TestGetPrice_DailyDateColumn(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	client := authenticated(t, httpClient)

	httpClient.EXPECT().
		Do(gomock.Any()).
		Return(textResponse(http.StatusOK,
			"order_book_id,date,open,high,low,close,volume\n"+
				"600036.XSHG,2019-01-02,25.1,25.5,24.9,25.3,1.5e+07\n"), nil).
		Times(1)

	rows, err := client.GetPrice(context.Background(), rqdata.PriceQuery{OrderBookID: "600036.XSHG", Frequency: "1d"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, 2019, rows[0].Datetime.Year())
	require.Equal(t, 2, rows[0].Datetime.Day())
	require.InEpsilon(t, 1.5e7, rows[0].Volume, 1e-9)
	require.Zero(t, rows[0].OpenInterest)
}

func TestGetPrice_EmptyBody(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	client := authenticated(t, httpClient)

	httpClient.EXPECT().
		Do(gomock.Any()).
		Return(textResponse(http.StatusOK, "\n"), nil).
		Times(1)

	rows, err := client.GetPrice(context.Background(), rqdata.PriceQuery{OrderBookID: "TA1905", Frequency: "1m"})
	require.NoError(t, err)
	require.Empty(t, rows)
}

func TestGetPrice_RateLimited(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	client := authenticated(t, httpClient)

	httpClient.EXPECT().
		Do(gomock.Any()).
		Return(textResponse(http.StatusTooManyRequests, "quota exceeded"), nil).
		Times(1)

	_, err := client.GetPrice(context.Background(), rqdata.PriceQuery{OrderBookID: "TA1905", Frequency: "1m"})
	require.ErrorIs(t, err, rqdata.ErrRateLimited)
}

func TestWithHeader(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)

	// Assert: custom headers travel with every request
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Equal(t, "bar", req.Header.Get("foo"))
			return textResponse(http.StatusOK, "tok"), nil
		}).
		Times(1)

	client, err := rqdata.NewRQDataAPIClient(rqdata.WithHTTPClient(httpClient), rqdata.WithHeader(http.Header{
		"foo": []string{"bar"},
	}))
	require.NoError(t, err)

	_, err = client.Authenticate(context.Background(), "user", "pass")
	require.NoError(t, err)
}
