package aggregate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"barfeed/internal/model"
)

func TestDedup_LaterInputWins(t *testing.T) {
	t.Parallel()

	t1 := time.Date(2021, 3, 1, 1, 0, 0, 0, time.UTC)
	// same instant expressed in China time
	t1CST := t1.In(time.FixedZone("CST", 8*60*60))
	t2 := t1.Add(time.Minute)

	in := []model.Bar{
		{Symbol: "TA105", Exchange: model.CZCE, Interval: model.Minute, Datetime: t2, ClosePrice: 2},
		{Symbol: "TA105", Exchange: model.CZCE, Interval: model.Minute, Datetime: t1, ClosePrice: 1},
		{Symbol: "TA105", Exchange: model.CZCE, Interval: model.Minute, Datetime: t1CST, ClosePrice: 1.5},
	}

	out := Dedup(in)

	require.Len(t, out, 2)
	require.True(t, out[0].Datetime.Equal(t1))
	require.InEpsilon(t, 1.5, out[0].ClosePrice, 1e-9)
	require.True(t, out[1].Datetime.Equal(t2))
}

func TestDedup_KeepsDistinctInstruments(t *testing.T) {
	t.Parallel()

	t1 := time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC)
	in := []model.Bar{
		{Symbol: "rb2105", Exchange: model.SHFE, Interval: model.Daily, Datetime: t1},
		{Symbol: "TA105", Exchange: model.CZCE, Interval: model.Daily, Datetime: t1},
		{Symbol: "TA105", Exchange: model.CZCE, Interval: model.Minute, Datetime: t1},
	}

	out := Dedup(in)

	require.Len(t, out, 3)
	require.Equal(t, "TA105", out[0].Symbol)
	require.Equal(t, model.Minute, out[0].Interval)
	require.Equal(t, model.Daily, out[1].Interval)
	require.Equal(t, "rb2105", out[2].Symbol)
}

func TestDedup_Empty(t *testing.T) {
	t.Parallel()

	out := Dedup(nil)
	require.NotNil(t, out)
	require.Empty(t, out)
}

func TestSpan(t *testing.T) {
	t.Parallel()

	first, last := Span(nil)
	require.True(t, first.IsZero())
	require.True(t, last.IsZero())

	t1 := time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC)
	first, last = Span([]model.Bar{{Datetime: t1.Add(time.Hour)}, {Datetime: t1}, {Datetime: t1.Add(2 * time.Hour)}})
	require.Equal(t, t1, first)
	require.Equal(t, t1.Add(2*time.Hour), last)
}
