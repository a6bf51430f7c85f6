package keys

import (
	"strings"
)

const (
	delimiter = ":"

	PfxHealthCheck    = "healthcheck"
	PfxActiveAuctions = "activeAuctions"
	PfxBidChannel     = "bids"
	PfxHttpResponse   = "http"
)

// RedisKey joins components into one colon separated key
func RedisKey(components ...string) string {
	return strings.Join(components, delimiter)
}

// BidChannel is the pubsub channel carrying bid updates of one auction
func BidChannel(auctionId string) string {
	return RedisKey(PfxBidChannel, auctionId)
}

func HealthCheckProbe() string {
	return RedisKey(PfxHealthCheck, "probe")
}

func ActiveListing() string {
	return PfxActiveAuctions
}

func HttpResponse(method, digest string) string {
	return RedisKey(PfxHttpResponse, strings.ToLower(method), digest)
}

// Family returns at most the first two components of key. It keeps metric
// tags bounded when keys carry ids.
func Family(key string) string {
	parts := strings.SplitN(key, delimiter, 3)
	if len(parts) > 2 {
		parts = parts[:2]
	}
	return strings.Join(parts, delimiter)
}
