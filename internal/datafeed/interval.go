package datafeed

import (
	"time"

	"barfeed/internal/model"
)

// Both vendors share the same frequency codes.
var vendorIntervals = map[model.Interval]string{
	model.Minute: "1m",
	model.Hour:   "60m",
	model.Daily:  "1d",
	model.Weekly: "1w",
}

// Vendors stamp a bar with its close; the platform stamps it with its open.
var intervalAdjustments = map[model.Interval]time.Duration{
	model.Minute: time.Minute,
	model.Hour:   time.Hour,
	model.Daily:  0,
	model.Weekly: 0,
}

// VendorInterval returns the vendor frequency code for iv.
func VendorInterval(iv model.Interval) (string, bool) {
	code, ok := vendorIntervals[iv]
	return code, ok
}

// Adjustment is subtracted from a vendor timestamp to get the bar open.
func Adjustment(iv model.Interval) time.Duration {
	return intervalAdjustments[iv]
}
