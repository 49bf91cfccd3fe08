package httputil_test

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/schloss/pkg/httputil"
	"github.com/wonny/schloss/pkg/logger"
)

// Example_basic demonstrates basic HTTP client usage
func Example_basic() {
	// Create HTTP client (SSOT)
	client := httputil.New(logger.Nop())

	ctx := context.Background()
	body, err := client.GetBody(ctx, "https://en.wikipedia.org/wiki/Dow_Jones_Industrial_Average", nil)
	if err != nil {
		fmt.Printf("Request failed: %v\n", err)
		return
	}

	fmt.Printf("Fetched %d bytes\n", len(body))
}

// Example_disableRetry demonstrates a client whose caller owns the retry policy
func Example_disableRetry() {
	client := httputil.NewWithTimeout(logger.Nop(), 10*time.Second).
		DisableRetry().
		WithCookieJar()

	_, err := client.GetBody(context.Background(), "https://query2.finance.yahoo.com/v1/test/getcrumb", nil)
	if httputil.StatusCode(err) == 429 {
		fmt.Println("Rate limited; caller decides when to retry")
	}
}
